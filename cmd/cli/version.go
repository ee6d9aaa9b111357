package cli

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/gitplumb/internal/gitapi"
)

const (
	versionUseConstant          = "version"
	versionShortConstant        = "Print the gitplumb version and the detected git executable"
	versionRecordNameConstant   = "version"
	versionTextTemplateConstant = "gitplumb %s\ngit %s (%s)"
	developmentVersionConstant  = "dev"
	develBuildVersionConstant   = "(devel)"
)

// applicationVersion is overridden at link time with -ldflags "-X".
var applicationVersion = ""

type versionRecord struct {
	Application   string `yaml:"application"`
	GitVersion    string `yaml:"git_version"`
	GitExecutable string `yaml:"git_executable"`
}

// VersionResolver reports the version of the running binary.
type VersionResolver func(context.Context) string

func resolveBuildVersion(context.Context) string {
	if trimmed := strings.TrimSpace(applicationVersion); len(trimmed) > 0 {
		return trimmed
	}
	buildInformation, available := debug.ReadBuildInfo()
	if !available {
		return developmentVersionConstant
	}
	moduleVersion := strings.TrimSpace(buildInformation.Main.Version)
	if len(moduleVersion) == 0 || moduleVersion == develBuildVersionConstant {
		return developmentVersionConstant
	}
	return moduleVersion
}

func (application *Application) buildVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   versionUseConstant,
		Short: versionShortConstant,
		Args:  cobra.NoArgs,
		RunE: application.gitRunner(func(command *cobra.Command, _ []string, client *gitapi.Client, _ string, renderer recordRenderer) error {
			executionContext := client.ExecutionContext()
			record := versionRecord{
				Application:   application.versionResolver(command.Context()),
				GitVersion:    executionContext.Version(),
				GitExecutable: executionContext.ExecutablePath(),
			}
			text := fmt.Sprintf(versionTextTemplateConstant, record.Application, record.GitVersion, record.GitExecutable)
			return renderer.value(versionRecordNameConstant, record, text)
		}),
	}
}
