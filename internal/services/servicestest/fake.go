// Package servicestest provides scriptable in-memory implementations of services.Services.
package servicestest

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/temirov/gitplumb/internal/services"
)

const (
	killedExitCodeConstant = -1
	fakeProcessIDConstant  = 4242
)

// ErrSpawnRejected is returned by FakeServices when no spawn handler is configured.
var ErrSpawnRejected = errors.New("servicestest: spawn handler not configured")

// WhichCall records a Which invocation.
type WhichCall struct {
	Command string
	Options services.WhichOptions
}

// SpawnHandler produces the process for a spawn request.
type SpawnHandler func(request services.SpawnRequest) (services.Process, error)

// FakeServices is an in-memory services.Services. Zero-valued fields behave as empty.
type FakeServices struct {
	ExistingPaths        map[string]bool
	WhichResults         map[string]string
	EnvironmentVariables map[string]string
	PlatformName         string
	SpawnHandler         SpawnHandler

	mutex         sync.Mutex
	spawnRequests []services.SpawnRequest
	whichCalls    []WhichCall
}

// Exists reports whether path was registered in ExistingPaths.
func (fake *FakeServices) Exists(path string) bool {
	return fake.ExistingPaths[path]
}

// Which answers from WhichResults and records the call.
func (fake *FakeServices) Which(command string, options services.WhichOptions) (string, bool) {
	fake.mutex.Lock()
	fake.whichCalls = append(fake.whichCalls, WhichCall{Command: command, Options: options})
	fake.mutex.Unlock()

	resolvedPath, found := fake.WhichResults[command]
	return resolvedPath, found
}

// Spawn records the request and delegates to SpawnHandler.
func (fake *FakeServices) Spawn(request services.SpawnRequest) (services.Process, error) {
	fake.mutex.Lock()
	recorded := request
	recorded.Arguments = append([]string{}, request.Arguments...)
	fake.spawnRequests = append(fake.spawnRequests, recorded)
	handler := fake.SpawnHandler
	fake.mutex.Unlock()

	if handler == nil {
		return nil, ErrSpawnRejected
	}
	return handler(request)
}

// Environment returns a copy of EnvironmentVariables.
func (fake *FakeServices) Environment() map[string]string {
	environment := make(map[string]string, len(fake.EnvironmentVariables))
	for key, value := range fake.EnvironmentVariables {
		environment[key] = value
	}
	return environment
}

// Platform returns PlatformName, defaulting to linux.
func (fake *FakeServices) Platform() string {
	if len(fake.PlatformName) == 0 {
		return services.PlatformLinux
	}
	return fake.PlatformName
}

// SpawnRequests returns the recorded spawn requests in order.
func (fake *FakeServices) SpawnRequests() []services.SpawnRequest {
	fake.mutex.Lock()
	defer fake.mutex.Unlock()
	return append([]services.SpawnRequest{}, fake.spawnRequests...)
}

// WhichCalls returns the recorded Which invocations in order.
func (fake *FakeServices) WhichCalls() []WhichCall {
	fake.mutex.Lock()
	defer fake.mutex.Unlock()
	return append([]WhichCall{}, fake.whichCalls...)
}

// ScriptHandler returns a SpawnHandler that runs script for every request.
func ScriptHandler(script ProcessScript) SpawnHandler {
	return func(request services.SpawnRequest) (services.Process, error) {
		return NewScriptedProcess(request, script), nil
	}
}

// ProcessScript describes the behaviour of a ScriptedProcess.
type ProcessScript struct {
	// StandardOutputChunks are written to standard output one Write call each.
	StandardOutputChunks []string
	StandardError        string
	ExitCode             int
	WaitError            error
	// BlockUntilKilled keeps the process alive after its output until Kill is called.
	BlockUntilKilled bool
}

// ScriptedProcess is a services.Process driven by a ProcessScript over in-memory pipes. Output
// writes block until the reader consumes them, mirroring a full operating system pipe.
type ScriptedProcess struct {
	standardInputReader  *io.PipeReader
	standardInputWriter  *io.PipeWriter
	standardOutputReader *io.PipeReader
	standardErrorReader  *io.PipeReader

	killed     chan struct{}
	finished   chan struct{}
	killOnce   sync.Once
	script     ProcessScript
	inputMutex sync.Mutex
	input      bytes.Buffer
	killCount  int
	waitCount  int
	terminated bool
	stateMutex sync.Mutex
}

// NewScriptedProcess starts the scripted behaviour immediately.
func NewScriptedProcess(request services.SpawnRequest, script ProcessScript) *ScriptedProcess {
	standardOutputReader, standardOutputWriter := io.Pipe()
	standardErrorReader, standardErrorWriter := io.Pipe()
	process := &ScriptedProcess{
		standardOutputReader: standardOutputReader,
		standardErrorReader:  standardErrorReader,
		killed:               make(chan struct{}),
		finished:             make(chan struct{}),
		script:               script,
	}
	if request.OpenStandardInput {
		process.standardInputReader, process.standardInputWriter = io.Pipe()
	}

	go process.run(standardOutputWriter, standardErrorWriter)
	return process
}

func (process *ScriptedProcess) run(standardOutputWriter *io.PipeWriter, standardErrorWriter *io.PipeWriter) {
	defer close(process.finished)
	defer standardOutputWriter.Close()
	defer standardErrorWriter.Close()

	for _, chunk := range process.script.StandardOutputChunks {
		if _, writeError := io.WriteString(standardOutputWriter, chunk); writeError != nil {
			return
		}
	}
	if len(process.script.StandardError) > 0 {
		if _, writeError := io.WriteString(standardErrorWriter, process.script.StandardError); writeError != nil {
			return
		}
	}
	if process.standardInputReader != nil {
		process.inputMutex.Lock()
		_, _ = io.Copy(&process.input, process.standardInputReader)
		process.inputMutex.Unlock()
	}
	if process.script.BlockUntilKilled {
		<-process.killed
	}
}

// PID returns a fixed fake identifier.
func (process *ScriptedProcess) PID() int {
	return fakeProcessIDConstant
}

// StandardInput returns the writer end of the input pipe, or nil when input was not requested.
func (process *ScriptedProcess) StandardInput() io.WriteCloser {
	if process.standardInputWriter == nil {
		return nil
	}
	return process.standardInputWriter
}

// StandardOutput returns the reader end of the output pipe.
func (process *ScriptedProcess) StandardOutput() io.ReadCloser {
	return process.standardOutputReader
}

// StandardError returns the reader end of the error pipe.
func (process *ScriptedProcess) StandardError() io.ReadCloser {
	return process.standardErrorReader
}

// Wait blocks until the script finishes and reports the scripted exit code, or -1 when it was
// killed while running.
func (process *ScriptedProcess) Wait() (int, error) {
	process.stateMutex.Lock()
	process.waitCount++
	process.stateMutex.Unlock()

	<-process.finished
	process.stateMutex.Lock()
	terminated := process.terminated
	process.stateMutex.Unlock()
	if terminated {
		return killedExitCodeConstant, nil
	}
	return process.script.ExitCode, process.script.WaitError
}

// Kill stops the script and closes the parent ends of every pipe.
func (process *ScriptedProcess) Kill() error {
	process.stateMutex.Lock()
	process.killCount++
	process.stateMutex.Unlock()

	process.killOnce.Do(func() {
		select {
		case <-process.finished:
		default:
			process.stateMutex.Lock()
			process.terminated = true
			process.stateMutex.Unlock()
		}
		close(process.killed)
		_ = process.standardOutputReader.Close()
		_ = process.standardErrorReader.Close()
		if process.standardInputReader != nil {
			_ = process.standardInputReader.Close()
		}
	})
	return nil
}

// ReceivedInput returns the bytes the process read from standard input. It waits for the
// script to finish.
func (process *ScriptedProcess) ReceivedInput() string {
	<-process.finished
	process.inputMutex.Lock()
	defer process.inputMutex.Unlock()
	return process.input.String()
}

// KillCount reports how many times Kill was called.
func (process *ScriptedProcess) KillCount() int {
	process.stateMutex.Lock()
	defer process.stateMutex.Unlock()
	return process.killCount
}

// WaitCount reports how many times Wait was called.
func (process *ScriptedProcess) WaitCount() int {
	process.stateMutex.Lock()
	defer process.stateMutex.Unlock()
	return process.waitCount
}

// Killed reports whether Kill was called.
func (process *ScriptedProcess) Killed() bool {
	select {
	case <-process.killed:
		return true
	default:
		return false
	}
}
