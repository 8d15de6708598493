package table

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pfrederiksen/evalregistry/internal/registry"
)

// DuplicateFlagColumn marks rows whose raw event list named the same event
// more than once. Duplicate event names are a signal of anomalous source
// data, so the flag is kept even after the conflict is resolved.
const DuplicateFlagColumn = "Event Name duplicated"

// eventColumnPrefix distinguishes the pivoted date columns from the raw
// event fields.
const eventColumnPrefix = "Event - "

var (
	// ErrUnknownEventName means a detail page carried an event name outside
	// the closed vocabulary; the run aborts.
	ErrUnknownEventName = errors.New("unknown event name")

	// ErrEventFieldMismatch means a row's event names and event dates had
	// different cardinalities, so the positional pairing is broken.
	ErrEventFieldMismatch = errors.New("event name and event date counts differ")
)

// EventColumn names the pivoted date column for an event type.
func EventColumn(eventName string) string {
	return eventColumnPrefix + eventName
}

// eventEntry is one (event name, date) occurrence from a row's paired
// multi-valued fields.
type eventEntry struct {
	name   string
	date   time.Time
	parsed bool
}

// ReshapeEvents turns the paired "Event Name" / "Event date" fields into
// one "YYYY-MM" column per event type. Per row: split both fields, parse
// each date, validate each name, then keep a single date per event name.
// Entries are stable-sorted ascending by date with unparseable dates last,
// and the final entry wins, so a repeated event name resolves to its latest
// date. The duplicate flag records that the repetition existed at all.
//
// The pivoted columns sit after the flag column in vocabulary order; every
// vocabulary entry gets a column even when no row populated it.
func ReshapeEvents(t *Table) (*Table, error) {
	out := t.clone()

	eventCols := make([]string, 0, len(registry.EventNames)+1)
	eventCols = append(eventCols, DuplicateFlagColumn)
	for _, name := range registry.EventNames {
		eventCols = append(eventCols, EventColumn(name))
	}
	out.insertColumnsAfter(registry.FieldEventDate, eventCols...)

	for i := range out.Rows {
		row := &out.Rows[i]

		// A present-but-empty cell still splits to one (empty) entry; only
		// a null cell contributes nothing.
		var names, dates []string
		if raw, ok := row.Cells[registry.FieldEventName]; ok {
			names = strings.Split(raw, registry.Separator)
		}
		if raw, ok := row.Cells[registry.FieldEventDate]; ok {
			dates = strings.Split(raw, registry.Separator)
		}

		// A null event field contributes nothing: null pivot columns and a
		// vacuously false flag.
		for _, name := range registry.EventNames {
			delete(row.Cells, EventColumn(name))
		}
		row.Cells[DuplicateFlagColumn] = "false"
		if len(names) == 0 && len(dates) == 0 {
			continue
		}
		if len(names) != len(dates) {
			return nil, fmt.Errorf("row %d: %w: %d names, %d dates",
				row.ID, ErrEventFieldMismatch, len(names), len(dates))
		}

		entries := make([]eventEntry, len(names))
		unique := make(map[string]bool, len(names))
		for j, name := range names {
			if !registry.KnownEventName(name) {
				return nil, fmt.Errorf("row %d: %w: %q", row.ID, ErrUnknownEventName, name)
			}
			unique[name] = true
			date, parsed := registry.ParseMonthYear(dates[j])
			entries[j] = eventEntry{name: name, date: date, parsed: parsed}
		}
		if len(unique) != len(names) {
			row.Cells[DuplicateFlagColumn] = "true"
		}

		// Ascending by date, unparseable dates last, original order on
		// ties; the last entry per name survives.
		sort.SliceStable(entries, func(a, b int) bool {
			if entries[a].parsed != entries[b].parsed {
				return entries[a].parsed
			}
			if !entries[a].parsed {
				return false
			}
			return entries[a].date.Before(entries[b].date)
		})
		survivors := make(map[string]eventEntry, len(unique))
		for _, e := range entries {
			survivors[e.name] = e
		}

		for name, e := range survivors {
			if e.parsed {
				row.Cells[EventColumn(name)] = registry.FormatYearMonth(e.date)
			}
		}
	}

	return out, nil
}
