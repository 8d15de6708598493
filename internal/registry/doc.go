// Package registry defines the domain model for Evaluation Registry records.
//
// A Record is the flat set of labelled fields scraped from one evaluation
// detail page. Labels that repeat on a page (the event rows) are kept as
// ordered multi-valued fields. The package also carries the closed
// vocabularies for event names and evaluation types, and the "Month YYYY"
// date handling used by the timeline reshaping.
package registry
