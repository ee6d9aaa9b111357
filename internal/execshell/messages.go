package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	unknownFailureMessageConstant           = "unknown error"
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	gitVersionFlagConstant               = "--version"
	gitRevParseSubcommandNameConstant    = "rev-parse"
	gitShowToplevelFlagConstant          = "--show-toplevel"
	gitGitDirectoryFlagConstant          = "--git-dir"
	gitVerifyFlagConstant                = "--verify"
	gitSymbolicRefSubcommandNameConstant = "symbolic-ref"
	gitConfigSubcommandNameConstant      = "config"
	gitConfigListFlagConstant            = "--list"
	gitCheckIgnoreSubcommandNameConstant = "check-ignore"
	gitLsFilesSubcommandNameConstant     = "ls-files"
	gitOthersFlagConstant                = "--others"
	gitLsTreeSubcommandNameConstant      = "ls-tree"
	gitStatusSubcommandNameConstant      = "status"
	gitForEachRefSubcommandNameConstant  = "for-each-ref"
	gitRemoteSubcommandNameConstant      = "remote"
	gitInitSubcommandNameConstant        = "init"
	gitCatFileSubcommandNameConstant     = "cat-file"
)

// stageTemplates holds one template per lifecycle stage. Start and success templates take the
// subject and working directory; the failure template additionally takes the exit code and the
// standard error suffix; the execution failure template takes the failure description last.
type stageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

var (
	versionProbeTemplates = stageTemplates{
		start:            "Probing git version of %s",
		success:          "%s reports %s",
		failure:          "Failed to probe git version of %s (exit code %d%s)",
		executionFailure: "Unable to probe git version of %s: %s",
	}
	toplevelTemplates = stageTemplates{
		start:            "Locating repository root from %s",
		success:          "Repository root for %s is %s",
		failure:          "Failed to locate repository root from %s (exit code %d%s)",
		executionFailure: "Unable to locate repository root from %s: %s",
	}
	gitDirectoryTemplates = stageTemplates{
		start:            "Locating git directory from %s",
		success:          "Git directory for %s is %s",
		failure:          "Failed to locate git directory from %s (exit code %d%s)",
		executionFailure: "Unable to locate git directory from %s: %s",
	}
	revisionTemplates = stageTemplates{
		start:            "Resolving %s in %s",
		success:          "Resolved %s in %s",
		failure:          "Failed to resolve %s in %s (exit code %d%s)",
		executionFailure: "Unable to resolve %s in %s: %s",
	}
	symbolicReferenceTemplates = stageTemplates{
		start:            "Reading symbolic reference %s in %s",
		success:          "Read symbolic reference %s in %s",
		failure:          "Failed to read symbolic reference %s in %s (exit code %d%s)",
		executionFailure: "Unable to read symbolic reference %s in %s: %s",
	}
	configValueTemplates = stageTemplates{
		start:            "Reading configuration %s in %s",
		success:          "Read configuration %s in %s",
		failure:          "Failed to read configuration %s in %s (exit code %d%s)",
		executionFailure: "Unable to read configuration %s in %s: %s",
	}
	configListTemplates = stageTemplates{
		start:            "Listing configuration %s in %s",
		success:          "Listed configuration %s in %s",
		failure:          "Failed to list configuration %s in %s (exit code %d%s)",
		executionFailure: "Unable to list configuration %s in %s: %s",
	}
	ignoreCheckTemplates = stageTemplates{
		start:            "Checking ignore rules for %s in %s",
		success:          "Checked ignore rules for %s in %s",
		failure:          "Failed to check ignore rules for %s in %s (exit code %d%s)",
		executionFailure: "Unable to check ignore rules for %s in %s: %s",
	}
	indexListingTemplates = stageTemplates{
		start:            "Listing %s in %s",
		success:          "Listed %s in %s",
		failure:          "Failed to list %s in %s (exit code %d%s)",
		executionFailure: "Unable to list %s in %s: %s",
	}
	treeListingTemplates = stageTemplates{
		start:            "Listing tree %s in %s",
		success:          "Listed tree %s in %s",
		failure:          "Failed to list tree %s in %s (exit code %d%s)",
		executionFailure: "Unable to list tree %s in %s: %s",
	}
	statusTemplates = stageTemplates{
		start:            "Reviewing working tree status%s in %s",
		success:          "Collected working tree status%s for %s",
		failure:          "Failed to review working tree status%s in %s (exit code %d%s)",
		executionFailure: "Unable to review working tree status%s in %s: %s",
	}
	referenceListingTemplates = stageTemplates{
		start:            "Listing references %s in %s",
		success:          "Listed references %s in %s",
		failure:          "Failed to list references %s in %s (exit code %d%s)",
		executionFailure: "Unable to list references %s in %s: %s",
	}
	remoteListingTemplates = stageTemplates{
		start:            "Listing remotes%s in %s",
		success:          "Listed remotes%s in %s",
		failure:          "Failed to list remotes%s in %s (exit code %d%s)",
		executionFailure: "Unable to list remotes%s in %s: %s",
	}
	initializationTemplates = stageTemplates{
		start:            "Initializing repository%s in %s",
		success:          "Initialized repository%s in %s",
		failure:          "Failed to initialize repository%s in %s (exit code %d%s)",
		executionFailure: "Unable to initialize repository%s in %s: %s",
	}
	objectContentTemplates = stageTemplates{
		start:            "Reading object %s in %s",
		success:          "Read object %s in %s",
		failure:          "Failed to read object %s in %s (exit code %d%s)",
		executionFailure: "Unable to read object %s in %s: %s",
	}
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command CommandDescriptor) string {
	return formatter.buildMessage(command, Outcome{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command CommandDescriptor, outcome Outcome) string {
	return formatter.buildMessage(command, outcome, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command CommandDescriptor, outcome Outcome) string {
	return formatter.buildMessage(command, outcome, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an invocation that ended without
// a natural exit.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command CommandDescriptor, failure error) string {
	return formatter.buildMessage(command, Outcome{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command CommandDescriptor, outcome Outcome, failure error, stage messageStage) string {
	arguments := command.Arguments
	if len(arguments) == 0 {
		return formatter.buildGenericMessage(command, outcome, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	switch command.Subcommand() {
	case gitVersionFlagConstant:
		return formatter.describeVersionProbe(command, outcome, failure, stage)
	case gitRevParseSubcommandNameConstant:
		switch {
		case containsArgument(arguments, gitShowToplevelFlagConstant):
			return formatter.describeWithOutput(toplevelTemplates, workingDirectory, outcome, failure, stage)
		case containsArgument(arguments, gitGitDirectoryFlagConstant):
			return formatter.describeWithOutput(gitDirectoryTemplates, workingDirectory, outcome, failure, stage)
		case containsArgument(arguments, gitVerifyFlagConstant):
			return formatter.describe(revisionTemplates, formatter.lastArgument(arguments), workingDirectory, outcome, failure, stage)
		}
	case gitSymbolicRefSubcommandNameConstant:
		return formatter.describe(symbolicReferenceTemplates, formatter.lastArgument(arguments), workingDirectory, outcome, failure, stage)
	case gitConfigSubcommandNameConstant:
		if containsArgument(arguments, gitConfigListFlagConstant) {
			return formatter.describe(configListTemplates, formatter.describeConfigScope(arguments), workingDirectory, outcome, failure, stage)
		}
		return formatter.describe(configValueTemplates, formatter.lastArgument(arguments), workingDirectory, outcome, failure, stage)
	case gitCheckIgnoreSubcommandNameConstant:
		return formatter.describe(ignoreCheckTemplates, formatter.describeOperands(arguments, "paths from standard input"), workingDirectory, outcome, failure, stage)
	case gitLsFilesSubcommandNameConstant:
		subject := "index entries"
		if containsArgument(arguments, gitOthersFlagConstant) {
			subject = "untracked files"
		}
		return formatter.describe(indexListingTemplates, subject, workingDirectory, outcome, failure, stage)
	case gitLsTreeSubcommandNameConstant:
		return formatter.describe(treeListingTemplates, formatter.describeOperands(arguments, fallbackUnknownValueLabelConstant), workingDirectory, outcome, failure, stage)
	case gitStatusSubcommandNameConstant:
		return formatter.describe(statusTemplates, "", workingDirectory, outcome, failure, stage)
	case gitForEachRefSubcommandNameConstant:
		return formatter.describe(referenceListingTemplates, formatter.describeOperands(arguments, "refs"), workingDirectory, outcome, failure, stage)
	case gitRemoteSubcommandNameConstant:
		return formatter.describe(remoteListingTemplates, "", workingDirectory, outcome, failure, stage)
	case gitInitSubcommandNameConstant:
		return formatter.describe(initializationTemplates, "", workingDirectory, outcome, failure, stage)
	case gitCatFileSubcommandNameConstant:
		return formatter.describe(objectContentTemplates, formatter.lastArgument(arguments), workingDirectory, outcome, failure, stage)
	}

	return formatter.buildGenericMessage(command, outcome, failure, stage)
}

func (formatter CommandMessageFormatter) describeVersionProbe(command CommandDescriptor, outcome Outcome, failure error, stage messageStage) string {
	executable := formatter.ensureValue(command.ExecutablePath)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(versionProbeTemplates.start, executable)
	case messageStageSuccess:
		return fmt.Sprintf(versionProbeTemplates.success, executable, formatter.ensureValue(outcome.Text()))
	case messageStageFailure:
		return fmt.Sprintf(versionProbeTemplates.failure, executable, outcome.ExitCode, formatStandardErrorSuffix(outcome.StandardError))
	default:
		return fmt.Sprintf(versionProbeTemplates.executionFailure, executable, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeWithOutput(templates stageTemplates, workingDirectory string, outcome Outcome, failure error, stage messageStage) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, workingDirectory, formatter.ensureValue(outcome.Text()))
	case messageStageFailure:
		return fmt.Sprintf(templates.failure, workingDirectory, outcome.ExitCode, formatStandardErrorSuffix(outcome.StandardError))
	default:
		return fmt.Sprintf(templates.executionFailure, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describe(templates stageTemplates, subject string, workingDirectory string, outcome Outcome, failure error, stage messageStage) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, subject, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, subject, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(templates.failure, subject, workingDirectory, outcome.ExitCode, formatStandardErrorSuffix(outcome.StandardError))
	default:
		return fmt.Sprintf(templates.executionFailure, subject, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command CommandDescriptor, outcome Outcome, failure error, stage messageStage) string {
	commandLabel := command.String()
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, outcome.ExitCode, formatStandardErrorSuffix(outcome.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command CommandDescriptor) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) describeConfigScope(arguments []string) string {
	for _, argument := range arguments {
		switch strings.TrimSpace(argument) {
		case "--global", "--system", "--local", "--worktree":
			return strings.TrimPrefix(strings.TrimSpace(argument), "--")
		}
	}
	return "entries"
}

// describeOperands joins the non-flag arguments after the subcommand.
func (formatter CommandMessageFormatter) describeOperands(arguments []string, fallback string) string {
	operands := make([]string, 0, len(arguments))
	for _, argument := range arguments[1:] {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, "-") {
			continue
		}
		operands = append(operands, trimmed)
	}
	if len(operands) == 0 {
		return fallback
	}
	return strings.Join(operands, ", ")
}

func (formatter CommandMessageFormatter) lastArgument(arguments []string) string {
	if len(arguments) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return formatter.ensureValue(arguments[len(arguments)-1])
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}
