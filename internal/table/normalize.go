package table

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pfrederiksen/evalregistry/internal/registry"
)

// ErrUnknownEvaluationType means a detail page carried an evaluation type
// outside the closed vocabulary. The scrape's assumptions about the site
// are stale, so the run aborts rather than producing a wrong table.
var ErrUnknownEvaluationType = errors.New("unknown evaluation type")

// evaluationTypesArtifact is the whitespace run the registry renders
// between multi-selected evaluation types. It is collapsed to the standard
// separator before the column is split.
const evaluationTypesArtifact = "\n                \n                  "

// DropNotFound removes rows scraped from dead detail pages.
func DropNotFound(t *Table) *Table {
	out := t.clone()
	kept := out.Rows[:0]
	for _, row := range out.Rows {
		if title, ok := row.Get(ColTitle); ok && title == registry.NotFoundTitle {
			continue
		}
		kept = append(kept, row)
	}
	out.Rows = kept
	return out
}

// Dedupe removes rows that match an earlier row in every column. The
// search index without a term returns the same evaluation on several
// listing pages, so genuine duplicates are expected.
func Dedupe(t *Table) *Table {
	out := t.clone()
	seen := make(map[string]bool, len(out.Rows))
	kept := out.Rows[:0]
	for _, row := range out.Rows {
		key := out.rowKey(row)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, row)
	}
	out.Rows = kept
	return out
}

// StripClosedOrganisation removes the "Closed organisation: " marker from
// the organisational columns, leaving values without the marker alone.
func StripClosedOrganisation(t *Table) *Table {
	out := t.clone()
	for _, col := range []string{registry.FieldLeadDepartment, registry.FieldOtherDepartments} {
		for i := range out.Rows {
			if v, ok := out.Rows[i].Cells[col]; ok {
				out.Rows[i].Cells[col] = strings.TrimPrefix(v, registry.ClosedOrganisationPrefix)
			}
		}
	}
	return out
}

// NormalizeEvaluationTypes collapses the rendering artifact between
// multi-selected evaluation types into the standard separator and turns
// empty values into nulls so only real values reach vocabulary checking.
func NormalizeEvaluationTypes(t *Table) *Table {
	out := t.clone()
	for i := range out.Rows {
		v, ok := out.Rows[i].Cells[registry.FieldEvaluationTypes]
		if !ok {
			continue
		}
		v = strings.ReplaceAll(v, evaluationTypesArtifact, registry.Separator)
		if strings.TrimSpace(v) == "" {
			delete(out.Rows[i].Cells, registry.FieldEvaluationTypes)
			continue
		}
		out.Rows[i].Cells[registry.FieldEvaluationTypes] = v
	}
	return out
}

// ValidateEvaluationTypes checks every non-null evaluation type value
// against the closed vocabulary.
func ValidateEvaluationTypes(t *Table) error {
	for _, row := range t.Rows {
		v, ok := row.Get(registry.FieldEvaluationTypes)
		if !ok {
			continue
		}
		for _, part := range registry.SplitValues(v) {
			if !registry.KnownEvaluationType(part) {
				return fmt.Errorf("row %d: %w: %q", row.ID, ErrUnknownEvaluationType, part)
			}
		}
	}
	return nil
}

// ExpandEvaluationTypes adds one boolean column per evaluation type,
// directly after the raw column and in vocabulary order. A row's flag is
// "true" when the type's label occurs in its evaluation types value; rows
// whose raw value is null get null flags.
func ExpandEvaluationTypes(t *Table) *Table {
	out := t.clone()
	out.insertColumnsAfter(registry.FieldEvaluationTypes, registry.EvaluationTypes...)
	for i := range out.Rows {
		raw, ok := out.Rows[i].Cells[registry.FieldEvaluationTypes]
		for _, evalType := range registry.EvaluationTypes {
			if !ok {
				delete(out.Rows[i].Cells, evalType)
				continue
			}
			out.Rows[i].Cells[evalType] = fmt.Sprintf("%t", strings.Contains(raw, evalType))
		}
	}
	return out
}

// Normalize runs the full pipeline over scraped records and returns the
// analysis-ready table: not-found rows dropped, duplicates removed, fields
// cleaned, evaluation types expanded, and the event timeline reshaped.
// The whole run fails on any vocabulary violation; there is no partial
// output.
func Normalize(records []*registry.Record) (*Table, error) {
	t := FromRecords(records)
	t = DropNotFound(t)
	t = Dedupe(t)
	t = StripClosedOrganisation(t)
	t = NormalizeEvaluationTypes(t)
	if err := ValidateEvaluationTypes(t); err != nil {
		return nil, err
	}
	t = ExpandEvaluationTypes(t)
	return ReshapeEvents(t)
}
