package execshell

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/temirov/gitplumb/internal/linestream"
)

// OutputMode selects how standard output is delivered.
type OutputMode int

const (
	// OutputModeBuffered captures standard output into Outcome.StandardOutput.
	OutputModeBuffered OutputMode = iota
	// OutputModeStreamLines hands a LineReader over standard output to Request.LineConsumer.
	OutputModeStreamLines
	// OutputModeStreamRaw copies standard output to Request.StandardOutputSink as it arrives.
	OutputModeStreamRaw
)

const (
	commandLabelTemplateConstant           = "%s %s"
	workingDirectorySuffixTemplateConstant = " (in %s)"
	commandArgumentsJoinSeparatorConstant  = " "
)

// LineConsumer pulls lines at its own pace. Returning early leaves the remainder to be drained;
// returning an error terminates the process.
type LineConsumer func(lines *linestream.LineReader) error

// Request describes one git invocation. Arguments are passed to the executable verbatim.
type Request struct {
	WorkingDirectory string
	Arguments        []string
	// StandardInput is written to the process when non-nil.
	StandardInput      []byte
	Environment        map[string]string
	Mode               OutputMode
	LineConsumer       LineConsumer
	StandardOutputSink io.Writer
	// MaxOutputBytes terminates the process once standard output exceeds it. Zero disables the limit.
	MaxOutputBytes int64
}

// Outcome is the result of a process that exited on its own.
type Outcome struct {
	InvocationID   string
	StandardOutput []byte
	StandardError  string
	ExitCode       int
	Duration       time.Duration
}

// Text returns the captured standard output as a string.
func (outcome Outcome) Text() string {
	return string(outcome.StandardOutput)
}

// CommandDescriptor identifies an invocation in errors and events.
type CommandDescriptor struct {
	ExecutablePath   string
	Arguments        []string
	WorkingDirectory string
}

// Subcommand returns the first argument, or empty when there are none.
func (descriptor CommandDescriptor) Subcommand() string {
	if len(descriptor.Arguments) == 0 {
		return ""
	}
	return strings.TrimSpace(descriptor.Arguments[0])
}

// String renders the descriptor as "git args (in dir)".
func (descriptor CommandDescriptor) String() string {
	executableName := filepath.Base(descriptor.ExecutablePath)
	if len(descriptor.ExecutablePath) == 0 {
		executableName = defaultExecutableLabelConstant
	}
	label := executableName
	if len(descriptor.Arguments) > 0 {
		label = fmt.Sprintf(commandLabelTemplateConstant, executableName, strings.Join(descriptor.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	trimmedWorkingDirectory := strings.TrimSpace(descriptor.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return label
	}
	return label + fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}
