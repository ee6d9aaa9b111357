package cli

import (
	_ "embed"
	"strings"
	"time"

	"github.com/temirov/gitplumb/internal/utils"
)

const (
	commonConfigurationKeyConstant     = "common"
	commonLogLevelConfigKeyConstant    = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant   = commonConfigurationKeyConstant + ".log_format"
	gitConfigurationKeyConstant        = "git"
	gitExecutablePathConfigKeyConstant = gitConfigurationKeyConstant + ".executable_path"
	gitSearchHintsConfigKeyConstant    = gitConfigurationKeyConstant + ".search_hints"
	gitTimeoutConfigKeyConstant        = gitConfigurationKeyConstant + ".timeout"
	gitProbeTimeoutConfigKeyConstant   = gitConfigurationKeyConstant + ".probe_timeout"
	gitMaxOutputConfigKeyConstant      = gitConfigurationKeyConstant + ".max_output_bytes"
	gitEnvironmentConfigKeyConstant    = gitConfigurationKeyConstant + ".environment"
	defaultGitTimeoutConstant          = 2 * time.Minute
	defaultGitProbeTimeoutConstant     = 30 * time.Second
	defaultMaxOutputBytesConstant      = int64(256 << 20)
)

//go:embed default_config.yaml
var embeddedDefaultConfiguration []byte

// EmbeddedDefaultConfiguration returns a copy of the built-in configuration and its format.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return append([]byte{}, embeddedDefaultConfiguration...), configurationTypeConstant
}

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Git    GitConfiguration               `mapstructure:"git"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// GitConfiguration controls how the git executable is located and invoked.
type GitConfiguration struct {
	// ExecutablePath pins the executable; when empty SearchHints and then PATH are consulted.
	ExecutablePath string            `mapstructure:"executable_path"`
	SearchHints    []string          `mapstructure:"search_hints"`
	Timeout        time.Duration     `mapstructure:"timeout"`
	ProbeTimeout   time.Duration     `mapstructure:"probe_timeout"`
	MaxOutputBytes int64             `mapstructure:"max_output_bytes"`
	Environment    map[string]string `mapstructure:"environment"`
}

func defaultConfigurationValues() map[string]any {
	return map[string]any{
		commonLogLevelConfigKeyConstant:    string(utils.LogLevelError),
		commonLogFormatConfigKeyConstant:   string(utils.LogFormatStructured),
		gitExecutablePathConfigKeyConstant: "",
		gitSearchHintsConfigKeyConstant:    []string{},
		gitTimeoutConfigKeyConstant:        defaultGitTimeoutConstant,
		gitProbeTimeoutConfigKeyConstant:   defaultGitProbeTimeoutConstant,
		gitMaxOutputConfigKeyConstant:      defaultMaxOutputBytesConstant,
		gitEnvironmentConfigKeyConstant:    map[string]string{},
	}
}

// environmentOverrides restores the upper-case spelling of environment variable names, which the
// configuration loader folds to lower case.
func (configuration GitConfiguration) environmentOverrides() map[string]string {
	overrides := make(map[string]string, len(configuration.Environment))
	for name, value := range configuration.Environment {
		trimmedName := strings.TrimSpace(name)
		if len(trimmedName) == 0 {
			continue
		}
		overrides[strings.ToUpper(trimmedName)] = value
	}
	return overrides
}
