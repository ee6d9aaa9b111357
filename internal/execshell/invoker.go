package execshell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/gitplumb/internal/linestream"
	"github.com/temirov/gitplumb/internal/result"
	"github.com/temirov/gitplumb/internal/services"
	"github.com/temirov/gitplumb/internal/utils"
)

const (
	gitPagerEnvironmentKeyConstant          = "GIT_PAGER"
	gitPagerEnvironmentValueConstant        = "cat"
	gitTerminalPromptEnvironmentKeyConstant = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledValueConstant  = "0"
	standardErrorCaptureLimitConstant       = 1024 * 1024

	logFieldInvocationIDConstant     = "invocation_id"
	logFieldExecutableConstant       = "executable"
	logFieldArgumentsConstant        = "arguments"
	logFieldWorkingDirectoryConstant = "working_directory"
	logFieldProcessIDConstant        = "pid"
	logFieldExitCodeConstant         = "exit_code"
	logFieldDurationConstant         = "duration"
	logFieldStandardOutputConstant   = "stdout_preview"
	logFieldStandardErrorConstant    = "stderr_preview"
	logFieldErrorKindConstant        = "error_kind"

	standardInputWriteFailedMessageConstant = "standard input was not fully delivered"
	processKillFailedMessageConstant        = "unable to terminate process"
)

// Invoker spawns git processes and converts their exit into Results. An Invoker holds no
// per-invocation state and may be shared by concurrent callers.
type Invoker struct {
	logger    *zap.Logger
	observer  CommandEventObserver
	formatter CommandMessageFormatter
}

// NewInvoker constructs an Invoker. A nil observer discards events.
func NewInvoker(logger *zap.Logger, observer CommandEventObserver) (*Invoker, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if observer == nil {
		observer = noopCommandEventObserver{}
	}
	return &Invoker{logger: logger, observer: observer, formatter: CommandMessageFormatter{}}, nil
}

// Invoke runs one git process described by request and waits for it to finish. The process is
// terminated when ctx ends, in which case the result is a CancelledError.
func (invoker *Invoker) Invoke(ctx context.Context, executionContext ExecutionContext, request Request) result.Result[Outcome, error] {
	descriptor := CommandDescriptor{
		ExecutablePath:   executionContext.ExecutablePath(),
		Arguments:        append([]string{}, request.Arguments...),
		WorkingDirectory: request.WorkingDirectory,
	}

	if validationError := validateRequest(executionContext, request); validationError != nil {
		return result.Failure[Outcome](validationError)
	}
	if contextError := ctx.Err(); contextError != nil {
		return result.Failure[Outcome](CancelledError{Command: descriptor, Reason: cancellationReasonFor(contextError), Cause: contextError})
	}

	invocationID := uuid.NewString()
	logger := invoker.logger.With(
		zap.String(logFieldInvocationIDConstant, invocationID),
		zap.String(logFieldExecutableConstant, descriptor.ExecutablePath),
		zap.Strings(logFieldArgumentsConstant, descriptor.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, descriptor.WorkingDirectory),
	)

	invoker.observer.CommandStarted(descriptor)
	startTime := time.Now()

	process, spawnError := executionContext.Services().Spawn(services.SpawnRequest{
		ExecutablePath:    descriptor.ExecutablePath,
		Arguments:         descriptor.Arguments,
		WorkingDirectory:  request.WorkingDirectory,
		Environment:       buildEnvironment(executionContext, request),
		OpenStandardInput: request.StandardInput != nil,
	})
	if spawnError != nil {
		failure := SpawnFailureError{Command: descriptor, Cause: spawnError}
		invoker.reportFailure(logger, descriptor, failure, time.Since(startTime))
		return result.Failure[Outcome](failure)
	}

	logger = logger.With(zap.Int(logFieldProcessIDConstant, process.PID()))
	logger.Debug(invoker.formatter.BuildStartedMessage(descriptor))

	execution := &processExecution{
		process:    process,
		request:    request,
		descriptor: descriptor,
		logger:     logger,
	}
	exitCode, failure := execution.run(ctx)
	duration := time.Since(startTime)

	if failure != nil {
		invoker.reportFailure(logger, descriptor, failure, duration)
		return result.Failure[Outcome](failure)
	}

	outcome := Outcome{
		InvocationID:  invocationID,
		StandardError: execution.standardError.String(),
		ExitCode:      exitCode,
		Duration:      duration,
	}
	if request.Mode == OutputModeBuffered {
		outcome.StandardOutput = execution.standardOutput.Bytes()
	}

	invoker.observer.CommandCompleted(descriptor, outcome)
	completionFields := []zap.Field{
		zap.Int(logFieldExitCodeConstant, exitCode),
		zap.Duration(logFieldDurationConstant, duration),
		zap.String(logFieldStandardOutputConstant, utils.Preview(outcome.Text())),
		zap.String(logFieldStandardErrorConstant, utils.Preview(outcome.StandardError)),
	}

	if exitCode != 0 {
		logger.Debug(invoker.formatter.BuildFailureMessage(descriptor, outcome), completionFields...)
		return result.Failure[Outcome](NonZeroExitError{Command: descriptor, ExitCode: exitCode, StandardError: outcome.StandardError})
	}

	logger.Debug(invoker.formatter.BuildSuccessMessage(descriptor, outcome), completionFields...)
	return result.Success(outcome)
}

func (invoker *Invoker) reportFailure(logger *zap.Logger, descriptor CommandDescriptor, failure error, duration time.Duration) {
	invoker.observer.CommandExecutionFailed(descriptor, failure)
	logger.Debug(
		invoker.formatter.BuildExecutionFailureMessage(descriptor, failure),
		zap.String(logFieldErrorKindConstant, string(KindOf(failure))),
		zap.Duration(logFieldDurationConstant, duration),
		zap.Error(failure),
	)
}

func validateRequest(executionContext ExecutionContext, request Request) error {
	if len(request.Arguments) == 0 {
		return ErrEmptyArguments
	}
	if executionContext.Services() == nil {
		return ErrServicesNotConfigured
	}
	switch request.Mode {
	case OutputModeStreamLines:
		if request.LineConsumer == nil {
			return ErrLineConsumerMissing
		}
	case OutputModeStreamRaw:
		if request.StandardOutputSink == nil {
			return ErrOutputSinkMissing
		}
	}
	return nil
}

func buildEnvironment(executionContext ExecutionContext, request Request) map[string]string {
	environment := executionContext.Services().Environment()
	if environment == nil {
		environment = make(map[string]string)
	}
	for key, value := range executionContext.Environment() {
		environment[key] = value
	}
	for key, value := range request.Environment {
		environment[key] = value
	}
	environment[gitPagerEnvironmentKeyConstant] = gitPagerEnvironmentValueConstant
	environment[gitTerminalPromptEnvironmentKeyConstant] = gitTerminalPromptDisabledValueConstant
	return environment
}

// termination records why the invocation killed its process. Only the first cause is kept.
type termination struct {
	kind  ErrorKind
	cause error
}

type processExecution struct {
	process    services.Process
	request    Request
	descriptor CommandDescriptor
	logger     *zap.Logger

	standardOutput bytes.Buffer
	standardError  cappedBuffer

	terminateOnce    sync.Once
	terminationMutex sync.Mutex
	termination      *termination
}

func (execution *processExecution) run(ctx context.Context) (int, error) {
	watcherDone := make(chan struct{})
	watcherStopped := make(chan struct{})
	go execution.watch(ctx, watcherDone, watcherStopped)
	stopWatcher := sync.OnceFunc(func() {
		close(watcherDone)
		<-watcherStopped
	})

	reaped := false
	defer func() {
		if !reaped {
			execution.kill()
			_, _ = execution.process.Wait()
		}
		stopWatcher()
	}()

	execution.standardError.limit = standardErrorCaptureLimitConstant

	var group errgroup.Group
	if execution.request.StandardInput != nil {
		group.Go(execution.writeStandardInput)
	}
	group.Go(execution.drainStandardError)

	outputError := execution.consumeStandardOutput()
	groupError := group.Wait()

	exitCode, waitError := execution.process.Wait()
	reaped = true
	stopWatcher()

	return exitCode, execution.classify(ctx, waitError, errors.Join(outputError, groupError))
}

func (execution *processExecution) watch(ctx context.Context, watcherDone <-chan struct{}, watcherStopped chan<- struct{}) {
	defer close(watcherStopped)
	select {
	case <-ctx.Done():
		execution.terminate(ErrorKindCancelled, ctx.Err())
	case <-watcherDone:
	}
}

func (execution *processExecution) terminate(kind ErrorKind, cause error) {
	execution.terminateOnce.Do(func() {
		execution.terminationMutex.Lock()
		execution.termination = &termination{kind: kind, cause: cause}
		execution.terminationMutex.Unlock()
		execution.kill()
	})
}

func (execution *processExecution) kill() {
	if killError := execution.process.Kill(); killError != nil {
		execution.logger.Debug(processKillFailedMessageConstant, zap.Error(killError))
	}
}

func (execution *processExecution) recordedTermination() *termination {
	execution.terminationMutex.Lock()
	defer execution.terminationMutex.Unlock()
	return execution.termination
}

func (execution *processExecution) writeStandardInput() error {
	standardInput := execution.process.StandardInput()
	if standardInput == nil {
		return nil
	}
	_, writeError := standardInput.Write(execution.request.StandardInput)
	closeError := standardInput.Close()
	if deliveryError := errors.Join(writeError, closeError); deliveryError != nil {
		execution.logger.Debug(standardInputWriteFailedMessageConstant, zap.Error(deliveryError))
	}
	return nil
}

func (execution *processExecution) drainStandardError() error {
	_, copyError := io.Copy(&execution.standardError, execution.process.StandardError())
	return copyError
}

func (execution *processExecution) consumeStandardOutput() error {
	standardOutput := execution.process.StandardOutput()
	limitedOutput := &limitedReader{
		source: standardOutput,
		limit:  execution.request.MaxOutputBytes,
		onExceeded: func() {
			execution.terminate(ErrorKindOutputLimit, errOutputLimitExceeded)
		},
	}

	switch execution.request.Mode {
	case OutputModeStreamLines:
		lineReader := linestream.NewLineReader(limitedOutput)
		if consumerError := execution.request.LineConsumer(lineReader); consumerError != nil {
			execution.terminate(ErrorKindDecodeFailure, consumerError)
			return nil
		}
		if readError := lineReader.Err(); readError != nil {
			execution.terminate(ErrorKindDecodeFailure, readError)
			return nil
		}
		_, drainError := io.Copy(io.Discard, standardOutput)
		return drainError
	case OutputModeStreamRaw:
		if _, copyError := io.Copy(execution.request.StandardOutputSink, limitedOutput); copyError != nil {
			execution.terminate(ErrorKindDecodeFailure, copyError)
		}
		return nil
	default:
		_, copyError := io.Copy(&execution.standardOutput, limitedOutput)
		return copyError
	}
}

// classify decides the invocation failure once the process is reaped and the watcher stopped.
// A recorded termination takes precedence over stream and exit status errors.
func (execution *processExecution) classify(ctx context.Context, waitError error, streamError error) error {
	standardError := execution.standardError.String()
	if recorded := execution.recordedTermination(); recorded != nil {
		switch recorded.kind {
		case ErrorKindCancelled:
			return CancelledError{
				Command:       execution.descriptor,
				Reason:        cancellationReasonFor(recorded.cause),
				StandardError: standardError,
				Cause:         recorded.cause,
			}
		case ErrorKindOutputLimit:
			return OutputLimitError{Command: execution.descriptor, Limit: execution.request.MaxOutputBytes}
		default:
			return DecodeError{Command: execution.descriptor, StandardError: standardError, Cause: recorded.cause}
		}
	}
	if waitError != nil {
		return SpawnFailureError{Command: execution.descriptor, Cause: waitError}
	}
	if streamError != nil {
		return DecodeError{Command: execution.descriptor, StandardError: standardError, Cause: streamError}
	}
	return nil
}

// limitedReader reports onExceeded once more than limit bytes were read. A zero limit disables it.
type limitedReader struct {
	source     io.Reader
	limit      int64
	total      int64
	exceeded   bool
	onExceeded func()
}

func (reader *limitedReader) Read(buffer []byte) (int, error) {
	if reader.exceeded {
		return 0, errOutputLimitExceeded
	}
	readCount, readError := reader.source.Read(buffer)
	if reader.limit <= 0 {
		return readCount, readError
	}
	reader.total += int64(readCount)
	if reader.total <= reader.limit {
		return readCount, readError
	}
	reader.exceeded = true
	reader.onExceeded()
	allowed := readCount - int(reader.total-reader.limit)
	if allowed < 0 {
		allowed = 0
	}
	return allowed, errOutputLimitExceeded
}

// cappedBuffer keeps the first limit bytes written and discards the rest.
type cappedBuffer struct {
	buffer bytes.Buffer
	limit  int
}

func (capped *cappedBuffer) Write(data []byte) (int, error) {
	remaining := capped.limit - capped.buffer.Len()
	if remaining > 0 {
		if len(data) <= remaining {
			capped.buffer.Write(data)
		} else {
			capped.buffer.Write(data[:remaining])
		}
	}
	return len(data), nil
}

func (capped *cappedBuffer) String() string {
	return capped.buffer.String()
}
