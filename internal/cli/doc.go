// Package cli implements the evalregistry command-line interface.
//
// The root command wires three Cobra subcommands around the pipeline:
// crawl collects the detail-page links, scrape runs the full
// crawl → extract → normalize → export run, and normalize rebuilds the
// output table from a saved records checkpoint without touching the
// network.
package cli
