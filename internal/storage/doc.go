// Package storage persists the scrape's artifacts: the collected link set
// and raw records as JSON checkpoints under a data directory, and the
// normalized table as CSV and as a SQLite database for downstream
// analysis. Checkpoints let the normalize stage re-run without touching
// the network.
package storage
