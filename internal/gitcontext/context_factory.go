package gitcontext

import (
	"context"
	"strings"
	"time"

	"github.com/temirov/gitplumb/internal/execshell"
	"github.com/temirov/gitplumb/internal/result"
	"github.com/temirov/gitplumb/internal/services"
)

const (
	gitCommandNameConstant                = "git"
	gitWindowsExecutableConstant          = "git.exe"
	gitVersionFlagConstant                = "--version"
	gitVersionPrefixConstant              = "git version "
	pathEnvironmentKeyConstant            = "PATH"
	pathExtEnvironmentKeyConstant         = "PATHEXT"
	windowsPathSeparatorConstant          = `\`
	posixPathSeparatorConstant            = "/"
	windowsGitDirectoryConstant           = "Git"
	windowsGitCommandDirectoryConstant    = "cmd"
	windowsLocalProgramsDirectoryConstant = "Programs"
	windowsLocalAppDataVariableConstant   = "LocalAppData"
	defaultProbeTimeoutConstant           = 30 * time.Second
)

var (
	windowsInstallRootVariables = []string{"ProgramW6432", "ProgramFiles(x86)", "ProgramFiles"}
	darwinInstallLocations      = []string{"/usr/local/bin/git", "/opt/homebrew/bin/git", "/usr/bin/git"}
	posixInstallLocations       = []string{"/usr/bin/git", "/usr/local/bin/git", "/bin/git"}
)

// Invoker runs a single git request. *execshell.Invoker satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, executionContext execshell.ExecutionContext, request execshell.Request) result.Result[execshell.Outcome, error]
}

// Options configure context creation.
type Options struct {
	// Environment holds overrides applied to every invocation made through the created context.
	Environment map[string]string
	// ProbeTimeout bounds the version probe. Zero selects a 30 second default.
	ProbeTimeout time.Duration
}

// FromPath validates candidatePath by running a single version probe and returns a context
// carrying the reported version.
func FromPath(ctx context.Context, invoker Invoker, candidatePath string, hostServices services.Services, options Options) result.Result[execshell.ExecutionContext, error] {
	trimmedPath := strings.TrimSpace(candidatePath)
	if len(trimmedPath) == 0 || hostServices == nil || !hostServices.Exists(trimmedPath) {
		return result.Failure[execshell.ExecutionContext](ContextCreationError{Kind: ErrorKindNotFound, Path: trimmedPath})
	}

	pendingContext := execshell.NewExecutionContext(trimmedPath, "", hostServices, options.Environment)

	probeTimeout := options.ProbeTimeout
	if probeTimeout <= 0 {
		probeTimeout = defaultProbeTimeoutConstant
	}
	probeContext, cancelProbe := context.WithTimeout(ctx, probeTimeout)
	defer cancelProbe()

	probe := invoker.Invoke(probeContext, pendingContext, execshell.Request{Arguments: []string{gitVersionFlagConstant}})
	if probe.IsErr() {
		return result.Failure[execshell.ExecutionContext](ContextCreationError{Kind: ErrorKindNotFound, Path: trimmedPath, Cause: probe.UnwrapErr()})
	}

	version := normalizeVersionOutput(probe.Unwrap().Text())
	if _, parsed := execshell.ParseVersion(version); !parsed {
		return result.Failure[execshell.ExecutionContext](ContextCreationError{Kind: ErrorKindVersionUnparsable, Path: trimmedPath, Output: version})
	}

	return result.Success(pendingContext.WithVersion(version))
}

// FromEnvironment locates git on the PATH reported by hostServices, falling back to the
// platform's well-known install locations. Only the chosen candidate is probed.
func FromEnvironment(ctx context.Context, invoker Invoker, hostServices services.Services, options Options) result.Result[execshell.ExecutionContext, error] {
	if hostServices == nil {
		return result.Failure[execshell.ExecutionContext](ContextCreationError{Kind: ErrorKindNotFound})
	}

	environment := hostServices.Environment()
	whichOptions := services.WhichOptions{
		Path:    lookupEnvironment(environment, pathEnvironmentKeyConstant),
		PathExt: lookupEnvironment(environment, pathExtEnvironmentKeyConstant),
	}
	if resolvedPath, found := hostServices.Which(gitCommandNameConstant, whichOptions); found {
		return FromPath(ctx, invoker, resolvedPath, hostServices, options)
	}

	for _, candidatePath := range fallbackLocations(hostServices.Platform(), environment) {
		if hostServices.Exists(candidatePath) {
			return FromPath(ctx, invoker, candidatePath, hostServices, options)
		}
	}

	return result.Failure[execshell.ExecutionContext](ContextCreationError{Kind: ErrorKindNotFound, Path: gitCommandNameConstant})
}

// FromHints tries each hint in order and falls back to FromEnvironment.
func FromHints(ctx context.Context, invoker Invoker, hints []string, hostServices services.Services, options Options) result.Result[execshell.ExecutionContext, error] {
	for _, hint := range hints {
		if len(strings.TrimSpace(hint)) == 0 {
			continue
		}
		created := FromPath(ctx, invoker, hint, hostServices, options)
		if created.IsOk() {
			return created
		}
		if ctx.Err() != nil {
			return created
		}
	}
	return FromEnvironment(ctx, invoker, hostServices, options)
}

func normalizeVersionOutput(output string) string {
	return strings.TrimSpace(strings.TrimPrefix(output, gitVersionPrefixConstant))
}

func fallbackLocations(platform string, environment map[string]string) []string {
	switch platform {
	case services.PlatformWindows:
		locations := make([]string, 0, len(windowsInstallRootVariables)+1)
		for _, variable := range windowsInstallRootVariables {
			installRoot := lookupEnvironment(environment, variable)
			if len(installRoot) == 0 {
				continue
			}
			locations = append(locations, joinWindowsPath(installRoot, windowsGitDirectoryConstant, windowsGitCommandDirectoryConstant, gitWindowsExecutableConstant))
		}
		if localApplicationData := lookupEnvironment(environment, windowsLocalAppDataVariableConstant); len(localApplicationData) > 0 {
			locations = append(locations, joinWindowsPath(localApplicationData, windowsLocalProgramsDirectoryConstant, windowsGitDirectoryConstant, windowsGitCommandDirectoryConstant, gitWindowsExecutableConstant))
		}
		return locations
	case services.PlatformDarwin:
		return darwinInstallLocations
	default:
		return posixInstallLocations
	}
}

func joinWindowsPath(root string, elements ...string) string {
	joined := strings.TrimRight(strings.ReplaceAll(root, posixPathSeparatorConstant, windowsPathSeparatorConstant), windowsPathSeparatorConstant)
	for _, element := range elements {
		joined += windowsPathSeparatorConstant + element
	}
	return joined
}

// lookupEnvironment matches keys exactly first and case-insensitively second, since Windows
// environment names are not case sensitive.
func lookupEnvironment(environment map[string]string, key string) string {
	if value, exists := environment[key]; exists {
		return value
	}
	for candidateKey, value := range environment {
		if strings.EqualFold(candidateKey, key) {
			return value
		}
	}
	return ""
}
