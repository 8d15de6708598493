package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/evalregistry/internal/registry"
)

const (
	linksFile   = "links.json"
	recordsFile = "records.json"
)

// Storage handles persistence of scrape checkpoints
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{dataDir: dataDir}, nil
}

// SaveLinks writes the collected detail-page paths to the links checkpoint
func (s *Storage) SaveLinks(links []string) error {
	return s.writeJSON(linksFile, links)
}

// LoadLinks reads the links checkpoint
func (s *Storage) LoadLinks() ([]string, error) {
	var links []string
	if err := s.readJSON(linksFile, &links); err != nil {
		return nil, err
	}
	return links, nil
}

// SaveRecords writes the raw records to the records checkpoint
func (s *Storage) SaveRecords(records []*registry.Record) error {
	return s.writeJSON(recordsFile, records)
}

// LoadRecords reads the records checkpoint
func (s *Storage) LoadRecords() ([]*registry.Record, error) {
	var records []*registry.Record
	if err := s.readJSON(recordsFile, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Storage) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	path := filepath.Join(s.dataDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

func (s *Storage) readJSON(name string, v interface{}) error {
	data, err := os.ReadFile(filepath.Join(s.dataDir, name))
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}
