package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies invocation failures.
type ErrorKind string

// Invocation failure kinds.
const (
	ErrorKindSpawnFailure  ErrorKind = "spawn_failure"
	ErrorKindNonZeroExit   ErrorKind = "nonzero_exit"
	ErrorKindCancelled     ErrorKind = "cancelled"
	ErrorKindDecodeFailure ErrorKind = "decode_failure"
	ErrorKindOutputLimit   ErrorKind = "output_limit"
	ErrorKindUnknown       ErrorKind = "unknown"
)

// CancellationReason distinguishes caller cancellation from an expired deadline.
type CancellationReason string

// Cancellation reasons.
const (
	CancellationReasonCaller   CancellationReason = "caller"
	CancellationReasonDeadline CancellationReason = "deadline"
)

const (
	defaultExecutableLabelConstant       = "git"
	spawnFailureTemplateConstant         = "%s: unable to start: %v"
	nonZeroExitTemplateConstant          = "%s: exit code %d%s"
	cancelledTemplateConstant            = "%s: cancelled (%s)"
	decodeFailureTemplateConstant        = "%s: unable to decode output: %v"
	outputLimitTemplateConstant          = "%s: standard output exceeded %d bytes"
	standardErrorSuffixTemplateConstant  = ": %s"
	emptyArgumentsMessageConstant        = "execshell: git arguments must not be empty"
	loggerNotConfiguredMessageConstant   = "execshell: logger not configured"
	servicesNotConfiguredMessageConstant = "execshell: execution context has no services"
	lineConsumerMissingMessageConstant   = "execshell: line streaming requires a line consumer"
	outputSinkMissingMessageConstant     = "execshell: raw streaming requires an output sink"
	outputLimitExceededMessageConstant   = "execshell: output limit exceeded"
)

var (
	// ErrEmptyArguments is returned when a request carries no arguments.
	ErrEmptyArguments = errors.New(emptyArgumentsMessageConstant)
	// ErrLoggerNotConfigured indicates that a nil logger was supplied to NewInvoker.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrServicesNotConfigured indicates an execution context without host services.
	ErrServicesNotConfigured = errors.New(servicesNotConfiguredMessageConstant)
	// ErrLineConsumerMissing indicates OutputModeStreamLines without a LineConsumer.
	ErrLineConsumerMissing = errors.New(lineConsumerMissingMessageConstant)
	// ErrOutputSinkMissing indicates OutputModeStreamRaw without a StandardOutputSink.
	ErrOutputSinkMissing = errors.New(outputSinkMissingMessageConstant)

	errOutputLimitExceeded = errors.New(outputLimitExceededMessageConstant)
)

// KindedError is implemented by every classified failure.
type KindedError interface {
	error
	Kind() ErrorKind
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) ErrorKind {
	var kinded KindedError
	if errors.As(err, &kinded) {
		return kinded.Kind()
	}
	return ErrorKindUnknown
}

// SpawnFailureError reports that the executable could not be started or reaped.
type SpawnFailureError struct {
	Command CommandDescriptor
	Cause   error
}

func (failure SpawnFailureError) Error() string {
	return fmt.Sprintf(spawnFailureTemplateConstant, failure.Command, failure.Cause)
}

// Unwrap exposes the underlying cause.
func (failure SpawnFailureError) Unwrap() error {
	return failure.Cause
}

// Kind returns ErrorKindSpawnFailure.
func (failure SpawnFailureError) Kind() ErrorKind {
	return ErrorKindSpawnFailure
}

// NonZeroExitError reports a natural exit with a non-zero status.
type NonZeroExitError struct {
	Command       CommandDescriptor
	ExitCode      int
	StandardError string
}

func (failure NonZeroExitError) Error() string {
	return fmt.Sprintf(nonZeroExitTemplateConstant, failure.Command, failure.ExitCode, formatStandardErrorSuffix(failure.StandardError))
}

// Kind returns ErrorKindNonZeroExit.
func (failure NonZeroExitError) Kind() ErrorKind {
	return ErrorKindNonZeroExit
}

// CancelledError reports that the process was terminated because its context ended.
type CancelledError struct {
	Command       CommandDescriptor
	Reason        CancellationReason
	StandardError string
	Cause         error
}

func (failure CancelledError) Error() string {
	return fmt.Sprintf(cancelledTemplateConstant, failure.Command, failure.Reason)
}

// Unwrap exposes context.Canceled or context.DeadlineExceeded.
func (failure CancelledError) Unwrap() error {
	return failure.Cause
}

// Kind returns ErrorKindCancelled.
func (failure CancelledError) Kind() ErrorKind {
	return ErrorKindCancelled
}

// DecodeError reports output that could not be consumed or parsed.
type DecodeError struct {
	Command       CommandDescriptor
	StandardError string
	Cause         error
}

func (failure DecodeError) Error() string {
	return fmt.Sprintf(decodeFailureTemplateConstant, failure.Command, failure.Cause)
}

// Unwrap exposes the underlying cause.
func (failure DecodeError) Unwrap() error {
	return failure.Cause
}

// Kind returns ErrorKindDecodeFailure.
func (failure DecodeError) Kind() ErrorKind {
	return ErrorKindDecodeFailure
}

// OutputLimitError reports that standard output exceeded Request.MaxOutputBytes.
type OutputLimitError struct {
	Command CommandDescriptor
	Limit   int64
}

func (failure OutputLimitError) Error() string {
	return fmt.Sprintf(outputLimitTemplateConstant, failure.Command, failure.Limit)
}

// Kind returns ErrorKindOutputLimit.
func (failure OutputLimitError) Kind() ErrorKind {
	return ErrorKindOutputLimit
}

// IsExitCode reports whether err is a NonZeroExitError with the given code.
func IsExitCode(err error, exitCode int) bool {
	var nonZeroExit NonZeroExitError
	return errors.As(err, &nonZeroExit) && nonZeroExit.ExitCode == exitCode
}

// IsQuietExit reports whether err is a NonZeroExitError with the given code and no diagnostics
// on standard error. git uses such exits to signal "not found" conditions.
func IsQuietExit(err error, exitCode int) bool {
	var nonZeroExit NonZeroExitError
	if !errors.As(err, &nonZeroExit) {
		return false
	}
	return nonZeroExit.ExitCode == exitCode && len(strings.TrimSpace(nonZeroExit.StandardError)) == 0
}

func cancellationReasonFor(cause error) CancellationReason {
	if errors.Is(cause, context.DeadlineExceeded) {
		return CancellationReasonDeadline
	}
	return CancellationReasonCaller
}

func formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return ""
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}
