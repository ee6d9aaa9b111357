package services

import "io"

// Platform identifiers reported by Services.Platform.
const (
	PlatformLinux   = "linux"
	PlatformDarwin  = "darwin"
	PlatformWindows = "windows"
)

// Services is the capability set the plumbing layer needs from its host. Production code uses
// NewOSServices; tests substitute in-memory fakes.
type Services interface {
	// Exists reports whether the path refers to an existing filesystem entry.
	Exists(path string) bool
	// Which searches the supplied PATH for an executable and reports whether one was found.
	Which(command string, options WhichOptions) (string, bool)
	// Spawn starts a subprocess. The returned Process is owned by the caller.
	Spawn(request SpawnRequest) (Process, error)
	// Environment returns a snapshot of the process environment.
	Environment() map[string]string
	// Platform returns the operating system identifier, e.g. "linux" or "windows".
	Platform() string
}

// WhichOptions carries the search path and executable extensions used by Which.
type WhichOptions struct {
	Path    string
	PathExt string
}

// SpawnRequest describes a subprocess launch. Arguments are passed to the executable verbatim.
type SpawnRequest struct {
	ExecutablePath    string
	Arguments         []string
	WorkingDirectory  string
	Environment       map[string]string
	OpenStandardInput bool
}

// Process is a running subprocess handle with its standard streams.
type Process interface {
	// PID returns the operating system process identifier, or zero when unknown.
	PID() int
	// StandardInput is nil unless SpawnRequest.OpenStandardInput was set.
	StandardInput() io.WriteCloser
	StandardOutput() io.ReadCloser
	StandardError() io.ReadCloser
	// Wait blocks until the process exits and reports its exit code. It must be called exactly
	// once, after the output streams were read to completion.
	Wait() (int, error)
	// Kill terminates the process and closes the parent side of its output streams so pending
	// reads return promptly.
	Kill() error
}
