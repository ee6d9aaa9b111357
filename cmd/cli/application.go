package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/gitplumb/internal/execshell"
	"github.com/temirov/gitplumb/internal/gitapi"
	"github.com/temirov/gitplumb/internal/gitcontext"
	"github.com/temirov/gitplumb/internal/result"
	"github.com/temirov/gitplumb/internal/services"
	"github.com/temirov/gitplumb/internal/ui"
	"github.com/temirov/gitplumb/internal/utils"
	flagutils "github.com/temirov/gitplumb/internal/utils/flags"
	pathutils "github.com/temirov/gitplumb/internal/utils/path"
)

const (
	applicationNameConstant                 = "gitplumb"
	applicationShortDescriptionConstant     = "Typed git plumbing queries from the command line"
	applicationLongDescriptionConstant      = "gitplumb locates a git executable, runs plumbing commands without a shell and decodes their machine-readable output."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	gitPathFlagNameConstant                 = "git-path"
	gitPathFlagUsageConstant                = "Use this git executable instead of searching for one."
	outputFlagNameConstant                  = "output"
	outputFlagUsageConstant                 = "Result rendering."
	workingDirectoryFlagNameConstant        = "cwd"
	workingDirectoryFlagUsageConstant       = "Run git in this directory instead of the current one."
	environmentPrefixConstant               = "GITPLUMB"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	workingDirectoryFieldConstant           = "working_directory"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	workingDirectoryErrorTemplateConstant   = "unable to resolve working directory: %w"
	invokerCreationErrorTemplateConstant    = "unable to create git invoker: %w"
	gitDetectedMessageConstant              = "git executable detected"
	gitExecutableFieldConstant              = "git_executable"
	gitVersionFieldConstant                 = "git_version"
	defaultConfigurationSearchPathConstant  = "."
	gitCommandGroupIdentifierConstant       = "git"
	gitCommandGroupTitleConstant            = "Git plumbing:"
)

// ServicesProvider supplies the host capabilities used to locate and spawn git.
type ServicesProvider func() services.Services

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	eventLogger            *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	gitPathFlagValue       string
	outputFlagValue        string
	workingDirectoryValue  string
	commandContextAccessor utils.CommandContextAccessor
	pathNormalizer         *pathutils.ExecutablePathNormalizer
	servicesProvider       ServicesProvider
	versionResolver        VersionResolver
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	return NewApplicationWithServices(func() services.Services {
		return services.NewOSServices()
	})
}

// NewApplicationWithServices assembles the application around the provided host services.
func NewApplicationWithServices(servicesProvider ServicesProvider) *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		pathNormalizer:         pathutils.NewExecutablePathNormalizer(),
		servicesProvider:       servicesProvider,
		versionResolver:        resolveBuildVersion,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.gitPathFlagValue, gitPathFlagNameConstant, "", gitPathFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.workingDirectoryValue, workingDirectoryFlagNameConstant, "", workingDirectoryFlagUsageConstant)
	flagutils.AddChoiceFlag(cobraCommand.PersistentFlags(), &application.outputFlagValue, outputFlagNameConstant, string(outputFormatText), []string{string(outputFormatText), string(outputFormatYAML)}, outputFlagUsageConstant)

	cobraCommand.AddGroup(&cobra.Group{ID: gitCommandGroupIdentifierConstant, Title: gitCommandGroupTitleConstant})
	for _, subcommand := range application.buildGitCommands() {
		subcommand.GroupID = gitCommandGroupIdentifierConstant
		cobraCommand.AddCommand(subcommand)
	}
	cobraCommand.AddCommand(application.buildVersionCommand())

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultConfigurationValues(), &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	if application.persistentFlagChanged(command, gitPathFlagNameConstant) {
		application.configuration.Git.ExecutablePath = application.gitPathFlagValue
	}

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerOutputs.DiagnosticLogger
	application.eventLogger = loggerOutputs.EventLogger

	workingDirectory, workingDirectoryError := application.resolveWorkingDirectory()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
	}

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.String(workingDirectoryFieldConstant, workingDirectory),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		updatedContext = application.commandContextAccessor.WithWorkingDirectory(updatedContext, workingDirectory)
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) resolveWorkingDirectory() (string, error) {
	requestedDirectory := strings.TrimSpace(application.workingDirectoryValue)
	if len(requestedDirectory) == 0 {
		return os.Getwd()
	}
	return filepath.Abs(application.pathNormalizer.Expand(requestedDirectory))
}

func (application *Application) workingDirectory(command *cobra.Command) string {
	if workingDirectory, available := application.commandContextAccessor.WorkingDirectory(command.Context()); available {
		return workingDirectory
	}
	return defaultConfigurationSearchPathConstant
}

// gitClient detects the git executable and builds a client for one command execution.
func (application *Application) gitClient(ctx context.Context) result.Result[*gitapi.Client, error] {
	var observer execshell.CommandEventObserver
	if application.eventLogger != nil {
		observer = ui.NewConsoleCommandEventLogger(application.eventLogger)
	}
	invoker, invokerError := execshell.NewInvoker(application.logger, observer)
	if invokerError != nil {
		return result.Failure[*gitapi.Client](fmt.Errorf(invokerCreationErrorTemplateConstant, invokerError))
	}

	gitConfiguration := application.configuration.Git
	hostServices := application.servicesProvider()
	detectionOptions := gitcontext.Options{
		Environment:  gitConfiguration.environmentOverrides(),
		ProbeTimeout: gitConfiguration.ProbeTimeout,
	}
	var detection result.Result[execshell.ExecutionContext, error]
	if pinnedPath := strings.TrimSpace(gitConfiguration.ExecutablePath); len(pinnedPath) > 0 {
		detection = gitcontext.FromPath(ctx, invoker, application.pathNormalizer.Expand(pinnedPath), hostServices, detectionOptions)
	} else {
		hints := application.pathNormalizer.Normalize(gitConfiguration.SearchHints)
		detection = gitcontext.FromHints(ctx, invoker, hints, hostServices, detectionOptions)
	}

	return result.AndThen(detection, func(executionContext execshell.ExecutionContext) result.Result[*gitapi.Client, error] {
		application.logger.Debug(
			gitDetectedMessageConstant,
			zap.String(gitExecutableFieldConstant, executionContext.ExecutablePath()),
			zap.String(gitVersionFieldConstant, executionContext.Version()),
		)
		return result.FromPair(gitapi.NewClient(invoker, executionContext, gitapi.ClientOptions{
			Timeout:        gitConfiguration.Timeout,
			MaxOutputBytes: gitConfiguration.MaxOutputBytes,
		}))
	})
}

func (application *Application) flushLogger() error {
	for _, logger := range []*zap.Logger{application.logger, application.eventLogger} {
		if syncError := application.syncLoggerInstance(logger); syncError != nil {
			return syncError
		}
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
