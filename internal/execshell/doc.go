// Package execshell runs the git executable as a child process and reports its outcome as a
// result.Result.
//
// Invoker.Invoke spawns through the services.Services carried by an ExecutionContext, writes
// standard input concurrently with draining standard output and standard error, and terminates
// the process when its context ends. Failures are classified as SpawnFailureError,
// NonZeroExitError, CancelledError, DecodeError or OutputLimitError. Lifecycle events are
// delivered to a CommandEventObserver and described by CommandMessageFormatter.
package execshell
