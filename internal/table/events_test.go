package table

import (
	"errors"
	"reflect"
	"testing"

	"github.com/pfrederiksen/evalregistry/internal/registry"
)

func reshape(t *testing.T, records ...*registry.Record) *Table {
	t.Helper()
	tbl, err := ReshapeEvents(FromRecords(records))
	if err != nil {
		t.Fatalf("ReshapeEvents failed: %v", err)
	}
	return tbl
}

func TestReshapeEventsPivot(t *testing.T) {
	tbl := reshape(t,
		sampleRecord("https://example.com/search/a/", "Evaluation A",
			[2]string{"Event Name", "Evaluation start"},
			[2]string{"Event date", "January 2024"},
			[2]string{"Event Name", "Publication of final results"},
			[2]string{"Event date", "June 2025"},
		),
	)

	row := tbl.Rows[0]
	if v, _ := row.Get("Event - Evaluation start"); v != "2024-01" {
		t.Errorf("Event - Evaluation start = %q, want 2024-01", v)
	}
	if v, _ := row.Get("Event - Publication of final results"); v != "2025-06" {
		t.Errorf("Event - Publication of final results = %q, want 2025-06", v)
	}
	if _, ok := row.Get("Event - Evaluation end"); ok {
		t.Error("unpopulated event type should be null")
	}
	if v, _ := row.Get(DuplicateFlagColumn); v != "false" {
		t.Errorf("duplicate flag = %q, want false", v)
	}
}

func TestReshapeEventsDuplicateKeepsLatest(t *testing.T) {
	tbl := reshape(t,
		sampleRecord("https://example.com/search/a/", "Evaluation A",
			[2]string{"Event Name", "Evaluation start"},
			[2]string{"Event date", "January 2024"},
			[2]string{"Event Name", "Evaluation start"},
			[2]string{"Event date", "March 2024"},
		),
	)

	row := tbl.Rows[0]
	if v, _ := row.Get(DuplicateFlagColumn); v != "true" {
		t.Errorf("duplicate flag = %q, want true", v)
	}
	if v, _ := row.Get("Event - Evaluation start"); v != "2024-03" {
		t.Errorf("Event - Evaluation start = %q, want latest date 2024-03", v)
	}
}

func TestReshapeEventsDuplicateOrderInsensitive(t *testing.T) {
	// The latest date wins regardless of the order the events appeared in
	tbl := reshape(t,
		sampleRecord("https://example.com/search/a/", "Evaluation A",
			[2]string{"Event Name", "Evaluation start"},
			[2]string{"Event date", "March 2024"},
			[2]string{"Event Name", "Evaluation start"},
			[2]string{"Event date", "January 2024"},
		),
	)

	if v, _ := tbl.Rows[0].Get("Event - Evaluation start"); v != "2024-03" {
		t.Errorf("Event - Evaluation start = %q, want 2024-03", v)
	}
}

func TestReshapeEventsUnparseableDate(t *testing.T) {
	tbl := reshape(t,
		sampleRecord("https://example.com/search/a/", "Evaluation A",
			[2]string{"Event Name", "Not Set"},
			[2]string{"Event date", ""},
			[2]string{"Event Name", "Evaluation start"},
			[2]string{"Event date", "January 2024"},
		),
	)

	row := tbl.Rows[0]
	// Unknown date is not an error; the column just stays null
	if _, ok := row.Get("Event - Not Set"); ok {
		t.Error("unparseable date should leave the event column null")
	}
	if v, _ := row.Get("Event - Evaluation start"); v != "2024-01" {
		t.Errorf("Event - Evaluation start = %q, want 2024-01", v)
	}
	if v, _ := row.Get(DuplicateFlagColumn); v != "false" {
		t.Errorf("duplicate flag = %q, want false", v)
	}
}

func TestReshapeEventsNullEventFields(t *testing.T) {
	tbl := reshape(t,
		sampleRecord("https://example.com/search/a/", "Evaluation A",
			[2]string{"Status", "Ongoing"},
		),
	)

	row := tbl.Rows[0]
	for _, name := range registry.EventNames {
		if _, ok := row.Get(EventColumn(name)); ok {
			t.Errorf("%s should be null for a row without events", EventColumn(name))
		}
	}
	if v, _ := row.Get(DuplicateFlagColumn); v != "false" {
		t.Errorf("duplicate flag = %q, want false", v)
	}
}

func TestReshapeEventsUnknownName(t *testing.T) {
	_, err := ReshapeEvents(FromRecords([]*registry.Record{
		sampleRecord("https://example.com/search/a/", "Evaluation A",
			[2]string{"Event Name", "Evaluation restart"},
			[2]string{"Event date", "January 2024"},
		),
	}))
	if !errors.Is(err, ErrUnknownEventName) {
		t.Errorf("expected ErrUnknownEventName, got %v", err)
	}
}

func TestReshapeEventsCardinalityMismatch(t *testing.T) {
	_, err := ReshapeEvents(FromRecords([]*registry.Record{
		sampleRecord("https://example.com/search/a/", "Evaluation A",
			[2]string{"Event Name", "Evaluation start"},
			[2]string{"Event date", "January 2024"},
			[2]string{"Event date", "March 2024"},
		),
	}))
	if !errors.Is(err, ErrEventFieldMismatch) {
		t.Errorf("expected ErrEventFieldMismatch, got %v", err)
	}
}

func TestReshapeEventsColumnOrder(t *testing.T) {
	tbl := reshape(t,
		sampleRecord("https://example.com/search/a/", "Evaluation A",
			[2]string{"Event Name", "Other"},
			[2]string{"Event date", "May 2024"},
			[2]string{"Status", "Ongoing"},
		),
	)

	// Flag follows the raw Event date column, then every vocabulary entry
	// in order, populated or not
	pos := tbl.columnIndex(registry.FieldEventDate)
	if pos < 0 {
		t.Fatal("Event date column missing")
	}
	want := []string{DuplicateFlagColumn}
	for _, name := range registry.EventNames {
		want = append(want, EventColumn(name))
	}
	got := tbl.Columns[pos+1 : pos+1+len(want)]
	if !reflect.DeepEqual(got, want) {
		t.Errorf("columns after Event date = %v, want %v", got, want)
	}
}

func TestReshapeEventsPopulatedColumnsBounded(t *testing.T) {
	tbl := reshape(t,
		sampleRecord("https://example.com/search/a/", "Evaluation A",
			[2]string{"Event Name", "Evaluation start"},
			[2]string{"Event date", "January 2024"},
			[2]string{"Event Name", "Evaluation start"},
			[2]string{"Event date", "March 2024"},
			[2]string{"Event Name", "Evaluation end"},
			[2]string{"Event date", "June 2024"},
		),
	)

	row := tbl.Rows[0]
	populated := 0
	for _, name := range registry.EventNames {
		if _, ok := row.Get(EventColumn(name)); ok {
			populated++
		}
	}
	// Never more populated date columns than distinct raw event names
	if populated > 2 {
		t.Errorf("populated event columns = %d, want at most 2", populated)
	}
}

func TestNormalizePipeline(t *testing.T) {
	records := []*registry.Record{
		sampleRecord("https://example.com/search/a/", "Evaluation A",
			[2]string{"Lead department", "Closed organisation: Department X"},
			[2]string{"Evaluation types", "Impact evaluation, Other"},
			[2]string{"Event Name", "Evaluation start"},
			[2]string{"Event date", "January 2024"},
		),
		{URL: "https://example.com/search/gone/", Title: registry.NotFoundTitle},
		sampleRecord("https://example.com/search/a/", "Evaluation A",
			[2]string{"Lead department", "Closed organisation: Department X"},
			[2]string{"Evaluation types", "Impact evaluation, Other"},
			[2]string{"Event Name", "Evaluation start"},
			[2]string{"Event date", "January 2024"},
		),
	}

	tbl, err := Normalize(records)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if len(tbl.Rows) != 1 {
		t.Fatalf("expected 1 row after not-found drop and dedupe, got %d", len(tbl.Rows))
	}

	row := tbl.Rows[0]
	if v, _ := row.Get("Lead department"); v != "Department X" {
		t.Errorf("Lead department = %q", v)
	}
	if v, _ := row.Get("Impact evaluation"); v != "true" {
		t.Errorf("Impact evaluation = %q, want true", v)
	}
	if v, _ := row.Get("Event - Evaluation start"); v != "2024-01" {
		t.Errorf("Event - Evaluation start = %q, want 2024-01", v)
	}
}

func TestNormalizeStepsIdempotent(t *testing.T) {
	records := []*registry.Record{
		sampleRecord("https://example.com/search/a/", "Evaluation A",
			[2]string{"Evaluation types", "Impact evaluation"},
			[2]string{"Event Name", "Evaluation start"},
			[2]string{"Event date", "January 2024"},
			[2]string{"Event Name", "Evaluation start"},
			[2]string{"Event date", "March 2024"},
		),
		sampleRecord("https://example.com/search/b/", "Evaluation B"),
	}

	once, err := Normalize(records)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	// Re-running every transformation over the finished table changes
	// nothing: no rows dropped, no columns re-pivoted
	again := DropNotFound(once)
	again = Dedupe(again)
	again = StripClosedOrganisation(again)
	again = NormalizeEvaluationTypes(again)
	if err := ValidateEvaluationTypes(again); err != nil {
		t.Fatalf("re-validation failed: %v", err)
	}
	again = ExpandEvaluationTypes(again)
	again, err = ReshapeEvents(again)
	if err != nil {
		t.Fatalf("re-reshape failed: %v", err)
	}

	if !reflect.DeepEqual(once, again) {
		t.Errorf("pipeline is not idempotent:\n first: %+v\nsecond: %+v", once, again)
	}
}
