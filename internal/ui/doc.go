// Package ui provides helpers for formatting human-readable console output.
//
// The helpers translate git invocation events into concise messages so that execution feedback
// remains actionable for CLI users while detailed telemetry continues to flow through the
// structured debug log.
package ui
