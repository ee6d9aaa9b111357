// Package gitapi provides typed git plumbing operations on top of execshell. Each operation builds
// its argument vector, invokes git once and decodes the output through the plumbing parsers.
// Conditions git reports with a silent exit status of one, such as an unset configuration key or
// a detached HEAD, are returned as empty results rather than errors.
package gitapi
