// Package cli constructs the gitplumb command-line interface, wiring the Cobra command
// hierarchy, configuration loader, structured logging and git execution context detection.
// Every subcommand issues one typed git plumbing operation and renders its result as text or
// YAML.
package cli
