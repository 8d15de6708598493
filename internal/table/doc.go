// Package table assembles scraped records into the normalized evaluations
// table. The transformations are pure functions on an ordered-column Table
// so each step can be tested on its own: drop not-found rows, drop exact
// duplicates, strip the closed-organisation prefix, expand evaluation types
// into boolean columns, and reshape the event name/date pairs into one
// "Event - X" date column per event type with a latest-wins policy for
// repeated event names.
package table
