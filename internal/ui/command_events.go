package ui

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/gitplumb/internal/execshell"
)

const (
	commandStartedMessageTemplateConstant          = "Running %s"
	commandCompletedMessageTemplateConstant        = "Completed %s in %s"
	commandFailedExitCodeMessageTemplateConstant   = "%s exited with code %d"
	commandExecutionFailureMessageTemplateConstant = "%s %s: %s"
	standardErrorSuffixTemplateConstant            = ": %s"
	unknownFailureMessageConstant                  = "unknown error"
	durationPrecisionConstant                      = time.Millisecond
)

var failureKindLabels = map[execshell.ErrorKind]string{
	execshell.ErrorKindSpawnFailure:  "could not start",
	execshell.ErrorKindCancelled:     "was cancelled",
	execshell.ErrorKindDecodeFailure: "produced unreadable output",
	execshell.ErrorKindOutputLimit:   "produced too much output",
	execshell.ErrorKindNonZeroExit:   "failed",
}

// CommandEventFormatter builds human-readable messages for git invocation events.
type CommandEventFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandEventFormatter) BuildStartedMessage(command execshell.CommandDescriptor) string {
	return fmt.Sprintf(commandStartedMessageTemplateConstant, command)
}

// BuildSuccessMessage formats the message describing a command that exited with status zero.
func (formatter CommandEventFormatter) BuildSuccessMessage(command execshell.CommandDescriptor, outcome execshell.Outcome) string {
	return fmt.Sprintf(commandCompletedMessageTemplateConstant, command, outcome.Duration.Round(durationPrecisionConstant))
}

// BuildFailureMessage formats the message describing a command that exited with a non-zero status.
func (formatter CommandEventFormatter) BuildFailureMessage(command execshell.CommandDescriptor, outcome execshell.Outcome) string {
	baseMessage := fmt.Sprintf(commandFailedExitCodeMessageTemplateConstant, command, outcome.ExitCode)
	return baseMessage + formatter.formatStandardErrorSuffix(outcome.StandardError)
}

// BuildExecutionFailureMessage formats the message describing an invocation that ended without a
// natural exit.
func (formatter CommandEventFormatter) BuildExecutionFailureMessage(command execshell.CommandDescriptor, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	kindLabel, known := failureKindLabels[execshell.KindOf(failure)]
	if !known {
		kindLabel = failureKindLabels[execshell.ErrorKindNonZeroExit]
	}
	return fmt.Sprintf(commandExecutionFailureMessageTemplateConstant, command, kindLabel, failureMessage)
}

func (formatter CommandEventFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return ""
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

// ConsoleCommandEventLogger renders command lifecycle events using a zap logger configured for human-readable output.
type ConsoleCommandEventLogger struct {
	logger    *zap.Logger
	formatter CommandEventFormatter
}

// NewConsoleCommandEventLogger constructs a console event logger backed by the provided zap logger.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleCommandEventLogger{logger: logger, formatter: CommandEventFormatter{}}
}

// CommandStarted implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command execshell.CommandDescriptor) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildStartedMessage(command))
}

// CommandCompleted implements execshell.CommandEventObserver. Non-zero exits are logged as warnings.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command execshell.CommandDescriptor, outcome execshell.Outcome) {
	if eventLogger == nil {
		return
	}
	if outcome.ExitCode == 0 {
		eventLogger.logger.Info(eventLogger.formatter.BuildSuccessMessage(command, outcome))
		return
	}
	eventLogger.logger.Warn(eventLogger.formatter.BuildFailureMessage(command, outcome))
}

// CommandExecutionFailed implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command execshell.CommandDescriptor, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Error(eventLogger.formatter.BuildExecutionFailureMessage(command, failure))
}
