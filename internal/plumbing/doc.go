// Package plumbing turns the machine-readable output of git plumbing commands into plain
// records. Parsers are pure functions over captured bytes or lines; malformed input yields a
// RecordError describing the offending record.
package plumbing
