package gitapi

import (
	"context"
	"strings"
	"time"

	"github.com/temirov/gitplumb/internal/execshell"
	"github.com/temirov/gitplumb/internal/result"
)

const (
	quietNotFoundExitCodeConstant = 1
	lineEndingCharactersConstant  = "\r\n"
)

// Invoker runs a single git request. *execshell.Invoker satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, executionContext execshell.ExecutionContext, request execshell.Request) result.Result[execshell.Outcome, error]
}

// ClientOptions bound every operation issued by a Client.
type ClientOptions struct {
	// Timeout is applied to each operation as a context deadline. Zero disables it.
	Timeout time.Duration
	// MaxOutputBytes limits buffered and raw standard output. Zero disables it.
	MaxOutputBytes int64
}

// Client exposes typed git plumbing operations over an Invoker and a detected execution context.
type Client struct {
	invoker          Invoker
	executionContext execshell.ExecutionContext
	options          ClientOptions
}

// NewClient validates its collaborators and constructs a Client.
func NewClient(invoker Invoker, executionContext execshell.ExecutionContext, options ClientOptions) (*Client, error) {
	if invoker == nil {
		return nil, ErrInvokerNotConfigured
	}
	if executionContext.IsPending() {
		return nil, ErrExecutionContextPending
	}
	return &Client{invoker: invoker, executionContext: executionContext, options: options}, nil
}

// ExecutionContext returns the context the client invokes git with.
func (client *Client) ExecutionContext() execshell.ExecutionContext {
	return client.executionContext
}

func (client *Client) invoke(ctx context.Context, request execshell.Request) result.Result[execshell.Outcome, error] {
	if client.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, client.options.Timeout)
		defer cancel()
	}
	if request.MaxOutputBytes == 0 && request.Mode != execshell.OutputModeStreamLines {
		request.MaxOutputBytes = client.options.MaxOutputBytes
	}
	return client.invoker.Invoke(ctx, client.executionContext, request)
}

func (client *Client) read(ctx context.Context, workingDirectory string, arguments ...string) result.Result[execshell.Outcome, error] {
	return client.invoke(ctx, execshell.Request{WorkingDirectory: workingDirectory, Arguments: arguments})
}

func (client *Client) describe(workingDirectory string, arguments []string) execshell.CommandDescriptor {
	return execshell.CommandDescriptor{
		ExecutablePath:   client.executionContext.ExecutablePath(),
		Arguments:        arguments,
		WorkingDirectory: workingDirectory,
	}
}

func (client *Client) requireVersion(operation string, constraint string) error {
	supported, constraintError := client.executionContext.SupportsVersion(constraint)
	if constraintError != nil {
		return constraintError
	}
	if !supported {
		return UnsupportedVersionError{Operation: operation, Constraint: constraint, Version: client.executionContext.Version()}
	}
	return nil
}

// decodeOutcome parses buffered standard output, reporting parser failures as DecodeError.
func decodeOutcome[T any](invocation result.Result[execshell.Outcome, error], command execshell.CommandDescriptor, parse func([]byte) (T, error)) result.Result[T, error] {
	return result.AndThen(invocation, func(outcome execshell.Outcome) result.Result[T, error] {
		parsed, parseError := parse(outcome.StandardOutput)
		if parseError != nil {
			return result.Failure[T](execshell.DecodeError{Command: command, StandardError: outcome.StandardError, Cause: parseError})
		}
		return result.Success(parsed)
	})
}

// recoverQuietExit turns a silent exit 1 into fallback, which git uses to report "nothing found".
func recoverQuietExit[T any](invocation result.Result[T, error], fallback T) result.Result[T, error] {
	if invocation.IsErr() && execshell.IsQuietExit(invocation.UnwrapErr(), quietNotFoundExitCodeConstant) {
		return result.Success(fallback)
	}
	return invocation
}

func trimLineEnding(text string) string {
	return strings.TrimRight(text, lineEndingCharactersConstant)
}
