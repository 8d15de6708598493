package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/evalregistry/internal/config"
	"github.com/pfrederiksen/evalregistry/internal/logger"
	"github.com/pfrederiksen/evalregistry/internal/registry"
	"github.com/pfrederiksen/evalregistry/internal/scraper"
	"github.com/pfrederiksen/evalregistry/internal/storage"
	"github.com/pfrederiksen/evalregistry/internal/table"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig     string
	flagBaseURL    string
	flagUserAgent  string
	flagDataDir    string
	flagCSVPath    string
	flagSQLitePath string
	flagVerbose    bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evalregistry",
		Short: "Scrape the Evaluation Registry into a normalized dataset",
		Long: `Scrapes the UK Evaluation Registry: crawls the paginated search listing
for detail-page links, extracts each evaluation's labelled fields, and
normalizes the result into an analysis-ready table (CSV and SQLite).`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file")
	cmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "Registry base URL (overrides config)")
	cmd.PersistentFlags().StringVar(&flagUserAgent, "user-agent", "", "User-Agent header (overrides config)")
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Checkpoint directory (overrides config)")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(newCrawlCmd(), newScrapeCmd(), newNormalizeCmd())
	return cmd
}

func newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Collect detail-page links and save them as a checkpoint",
		RunE:  runCrawl,
	}
}

func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run the full pipeline: crawl, extract, normalize, export",
		RunE:  runScrape,
	}
	cmd.Flags().StringVar(&flagCSVPath, "csv", "", "CSV output path (overrides config)")
	cmd.Flags().StringVar(&flagSQLitePath, "sqlite", "", "SQLite output path (overrides config)")
	return cmd
}

func newNormalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Rebuild the normalized table from the records checkpoint",
		RunE:  runNormalize,
	}
	cmd.Flags().StringVar(&flagCSVPath, "csv", "", "CSV output path (overrides config)")
	cmd.Flags().StringVar(&flagSQLitePath, "sqlite", "", "SQLite output path (overrides config)")
	return cmd
}

// loadConfig merges the config file with flag overrides and configures the
// default logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}
	if flagUserAgent != "" {
		cfg.UserAgent = flagUserAgent
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if flagCSVPath != "" {
		cfg.Output.CSVPath = flagCSVPath
	}
	if flagSQLitePath != "" {
		cfg.Output.SQLitePath = flagSQLitePath
	}

	level := logger.LevelInfo
	if flagVerbose || cfg.Logging.Level == "debug" {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, os.Stderr))
	return cfg, nil
}

func newScraper(cfg *config.Config) *scraper.Scraper {
	return scraper.New(scraper.Options{
		BaseURL:        cfg.BaseURL,
		UserAgent:      cfg.UserAgent,
		MaxAttempts:    cfg.Retry.MaxAttempts,
		InitialBackoff: cfg.Retry.InitialDelay(),
	})
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	links, err := crawl(newScraper(cfg))
	if err != nil {
		return err
	}
	if err := store.SaveLinks(links); err != nil {
		return fmt.Errorf("saving links: %w", err)
	}

	logger.Info("run complete", logger.MetricsSnapshot())
	return nil
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	sc := newScraper(cfg)

	links, err := crawl(sc)
	if err != nil {
		return err
	}
	if err := store.SaveLinks(links); err != nil {
		return fmt.Errorf("saving links: %w", err)
	}

	records, err := extract(sc, links)
	if err != nil {
		return err
	}
	if err := store.SaveRecords(records); err != nil {
		return fmt.Errorf("saving records: %w", err)
	}

	if err := normalize(cfg, records); err != nil {
		return err
	}

	logger.Info("run complete", logger.MetricsSnapshot())
	return nil
}

func runNormalize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	records, err := store.LoadRecords()
	if err != nil {
		return fmt.Errorf("loading records checkpoint: %w", err)
	}

	if err := normalize(cfg, records); err != nil {
		return err
	}

	logger.Info("run complete", logger.MetricsSnapshot())
	return nil
}

func crawl(sc *scraper.Scraper) ([]string, error) {
	start := time.Now()
	links, err := sc.CollectLinks()
	logger.RecordTiming("crawl", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("collecting links: %w", err)
	}
	logger.Info("crawl finished", logger.Fields{"links": len(links)})
	return links, nil
}

func extract(sc *scraper.Scraper, links []string) ([]*registry.Record, error) {
	start := time.Now()
	records, err := sc.FetchRecords(links)
	logger.RecordTiming("extract", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("extracting records: %w", err)
	}

	notFound := 0
	for _, rec := range records {
		if rec.NotFound() {
			notFound++
		}
	}
	logger.Info("extract finished", logger.Fields{
		"records":   len(records),
		"not_found": notFound,
	})
	return records, nil
}

func normalize(cfg *config.Config, records []*registry.Record) error {
	start := time.Now()
	tbl, err := table.Normalize(records)
	logger.RecordTiming("normalize", time.Since(start))
	if err != nil {
		return fmt.Errorf("normalizing table: %w", err)
	}
	logger.Info("normalize finished", logger.Fields{
		"rows":    len(tbl.Rows),
		"columns": len(tbl.Columns),
		"dropped": len(records) - len(tbl.Rows),
	})

	if err := storage.WriteCSV(tbl, cfg.Output.CSVPath); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	if cfg.Output.SQLitePath != "" {
		if err := storage.WriteSQLite(tbl, cfg.Output.SQLitePath); err != nil {
			return fmt.Errorf("writing sqlite: %w", err)
		}
	}
	return nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
