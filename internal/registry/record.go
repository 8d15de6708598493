package registry

import "strings"

// NotFoundTitle is the heading shown on dead or removed detail pages.
const NotFoundTitle = "Page not found"

// Separator joins the values of a multi-valued field into one string.
// Splitting on the same separator reverses the encoding.
const Separator = ", "

// Labels of the summary-list fields the transformations act on.
const (
	FieldLeadDepartment   = "Lead department"
	FieldOtherDepartments = "Other departments"
	FieldEvaluationTypes  = "Evaluation types"
	FieldEventName        = "Event Name"
	FieldEventDate        = "Event date"
)

// ClosedOrganisationPrefix marks departments that no longer exist. It is
// stripped from the organisational fields during normalization.
const ClosedOrganisationPrefix = "Closed organisation: "

// Field is one labelled field from a detail page. A label that appears on
// several summary rows accumulates one value per row, in page order.
type Field struct {
	Label  string   `json:"label"`
	Values []string `json:"values"`
}

// Record holds everything extracted from a single detail page.
type Record struct {
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
}

// NotFound reports whether the record came from a dead detail page.
func (r *Record) NotFound() bool {
	return r.Title == NotFoundTitle
}

// Add appends a value to the named field, creating the field on first use.
// Field order follows first encounter on the page.
func (r *Record) Add(label, value string) {
	for i := range r.Fields {
		if r.Fields[i].Label == label {
			r.Fields[i].Values = append(r.Fields[i].Values, value)
			return
		}
	}
	r.Fields = append(r.Fields, Field{Label: label, Values: []string{value}})
}

// Get returns the joined value of the named field and whether it exists.
func (r *Record) Get(label string) (string, bool) {
	for i := range r.Fields {
		if r.Fields[i].Label == label {
			return strings.Join(r.Fields[i].Values, Separator), true
		}
	}
	return "", false
}

// SplitValues splits a joined multi-valued field back into its parts.
// An empty input yields nil rather than a single empty part.
func SplitValues(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, Separator)
}
