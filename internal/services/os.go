package services

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"go.uber.org/multierr"
)

const (
	environmentAssignmentSeparatorConstant = "="
	environmentAssignmentTemplateConstant  = "%s%s%s"
	windowsPathExtSeparatorConstant        = ";"
	currentDirectoryConstant               = "."
	executablePermissionMaskConstant       = 0o111
	unknownExitCodeConstant                = -1
	pipeCreationErrorTemplateConstant      = "unable to create %s pipe: %w"
	standardInputPipeLabelConstant         = "standard input"
	standardOutputPipeLabelConstant        = "standard output"
	standardErrorPipeLabelConstant         = "standard error"
)

// OSServices binds Services to the operating system facilities.
type OSServices struct{}

// NewOSServices constructs the operating system backed capability set.
func NewOSServices() *OSServices {
	return &OSServices{}
}

// Exists reports whether path can be stat'ed.
func (osServices *OSServices) Exists(path string) bool {
	if len(path) == 0 {
		return false
	}
	_, statError := os.Stat(path)
	return statError == nil
}

// Which searches options.Path for command, honouring PATHEXT on Windows.
func (osServices *OSServices) Which(command string, options WhichOptions) (string, bool) {
	return SearchExecutable(command, options, osServices.Platform(), isExecutableFile)
}

// Environment returns the current process environment as a map.
func (osServices *OSServices) Environment() map[string]string {
	environment := make(map[string]string)
	for _, assignment := range os.Environ() {
		key, value, found := strings.Cut(assignment, environmentAssignmentSeparatorConstant)
		if !found || len(key) == 0 {
			continue
		}
		environment[key] = value
	}
	return environment
}

// Platform returns runtime.GOOS.
func (osServices *OSServices) Platform() string {
	return runtime.GOOS
}

// Spawn starts the executable with piped standard streams.
func (osServices *OSServices) Spawn(request SpawnRequest) (Process, error) {
	command := exec.Command(request.ExecutablePath, append([]string{}, request.Arguments...)...)
	if len(request.WorkingDirectory) > 0 {
		command.Dir = request.WorkingDirectory
	}
	if len(request.Environment) > 0 {
		command.Env = FormatEnvironment(request.Environment)
	}

	var openedPipes []io.Closer
	closeOpenedPipes := func(cause error) error {
		closeErrors := make([]error, 0, len(openedPipes)+1)
		closeErrors = append(closeErrors, cause)
		for _, openedPipe := range openedPipes {
			closeErrors = append(closeErrors, openedPipe.Close())
		}
		return multierr.Combine(closeErrors...)
	}

	var standardInput io.WriteCloser
	if request.OpenStandardInput {
		inputPipe, pipeError := command.StdinPipe()
		if pipeError != nil {
			return nil, fmt.Errorf(pipeCreationErrorTemplateConstant, standardInputPipeLabelConstant, pipeError)
		}
		standardInput = inputPipe
		openedPipes = append(openedPipes, inputPipe)
	}

	standardOutput, outputPipeError := command.StdoutPipe()
	if outputPipeError != nil {
		return nil, closeOpenedPipes(fmt.Errorf(pipeCreationErrorTemplateConstant, standardOutputPipeLabelConstant, outputPipeError))
	}
	openedPipes = append(openedPipes, standardOutput)

	standardError, errorPipeError := command.StderrPipe()
	if errorPipeError != nil {
		return nil, closeOpenedPipes(fmt.Errorf(pipeCreationErrorTemplateConstant, standardErrorPipeLabelConstant, errorPipeError))
	}

	if startError := command.Start(); startError != nil {
		return nil, startError
	}

	return &osProcess{
		command:        command,
		standardInput:  standardInput,
		standardOutput: standardOutput,
		standardError:  standardError,
	}, nil
}

type osProcess struct {
	command        *exec.Cmd
	standardInput  io.WriteCloser
	standardOutput io.ReadCloser
	standardError  io.ReadCloser
	killOnce       sync.Once
	killError      error
}

func (process *osProcess) PID() int {
	if process.command.Process == nil {
		return 0
	}
	return process.command.Process.Pid
}

func (process *osProcess) StandardInput() io.WriteCloser {
	return process.standardInput
}

func (process *osProcess) StandardOutput() io.ReadCloser {
	return process.standardOutput
}

func (process *osProcess) StandardError() io.ReadCloser {
	return process.standardError
}

func (process *osProcess) Wait() (int, error) {
	waitError := process.command.Wait()
	if waitError == nil {
		return 0, nil
	}
	exitError := &exec.ExitError{}
	if errors.As(waitError, &exitError) {
		return exitError.ExitCode(), nil
	}
	return unknownExitCodeConstant, waitError
}

func (process *osProcess) Kill() error {
	process.killOnce.Do(func() {
		var signalError error
		if process.command.Process != nil {
			signalError = process.command.Process.Kill()
			if errors.Is(signalError, os.ErrProcessDone) {
				signalError = nil
			}
		}
		process.killError = multierr.Combine(
			signalError,
			closeIgnoringClosed(process.standardOutput),
			closeIgnoringClosed(process.standardError),
		)
	})
	return process.killError
}

func closeIgnoringClosed(closer io.Closer) error {
	if closer == nil {
		return nil
	}
	closeError := closer.Close()
	if errors.Is(closeError, os.ErrClosed) {
		return nil
	}
	return closeError
}

// FormatEnvironment renders an environment map as sorted KEY=VALUE assignments.
func FormatEnvironment(environment map[string]string) []string {
	keys := make([]string, 0, len(environment))
	for key := range environment {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	assignments := make([]string, 0, len(keys))
	for _, key := range keys {
		assignments = append(assignments, fmt.Sprintf(environmentAssignmentTemplateConstant, key, environmentAssignmentSeparatorConstant, environment[key]))
	}
	return assignments
}

// SearchExecutable walks the PATH entries in options looking for command. The isExecutable
// predicate decides whether a candidate file qualifies.
func SearchExecutable(command string, options WhichOptions, platform string, isExecutable func(string) bool) (string, bool) {
	trimmedCommand := strings.TrimSpace(command)
	if len(trimmedCommand) == 0 {
		return "", false
	}

	extensions := executableExtensions(trimmedCommand, options.PathExt, platform)

	if strings.ContainsAny(trimmedCommand, `/\`) {
		for _, extension := range extensions {
			if candidate := trimmedCommand + extension; isExecutable(candidate) {
				return candidate, true
			}
		}
		return "", false
	}

	for _, directory := range filepath.SplitList(options.Path) {
		if len(directory) == 0 {
			directory = currentDirectoryConstant
		}
		for _, extension := range extensions {
			candidate := filepath.Join(directory, trimmedCommand+extension)
			if isExecutable(candidate) {
				return candidate, true
			}
		}
	}
	return "", false
}

func executableExtensions(command string, pathExt string, platform string) []string {
	if platform != PlatformWindows {
		return []string{""}
	}
	extensions := []string{}
	if len(filepath.Ext(command)) > 0 {
		extensions = append(extensions, "")
	}
	for _, extension := range strings.Split(pathExt, windowsPathExtSeparatorConstant) {
		trimmedExtension := strings.TrimSpace(extension)
		if len(trimmedExtension) == 0 {
			continue
		}
		extensions = append(extensions, strings.ToLower(trimmedExtension))
	}
	if len(extensions) == 0 {
		extensions = append(extensions, "")
	}
	return extensions
}

func isExecutableFile(path string) bool {
	fileInfo, statError := os.Stat(path)
	if statError != nil || fileInfo.IsDir() {
		return false
	}
	if runtime.GOOS == PlatformWindows {
		return true
	}
	return fileInfo.Mode().Perm()&executablePermissionMaskConstant != 0
}
