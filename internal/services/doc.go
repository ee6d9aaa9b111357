// Package services defines the host capabilities consumed by the git plumbing layer:
// filesystem existence checks, executable lookup, subprocess spawning, the environment
// snapshot and the platform identifier.
//
// OSServices binds them to the operating system; the servicestest subpackage provides
// scriptable in-memory fakes.
package services
