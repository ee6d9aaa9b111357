// Package gitcontext locates a git executable and produces the execshell.ExecutionContext used
// for every later invocation. Each constructor probes the chosen executable exactly once.
package gitcontext
