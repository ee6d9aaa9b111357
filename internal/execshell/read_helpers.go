package execshell

import (
	"context"

	"github.com/temirov/gitplumb/internal/result"
)

// ReadToBytes runs request in buffered mode and returns the captured standard output.
func (invoker *Invoker) ReadToBytes(ctx context.Context, executionContext ExecutionContext, request Request) result.Result[[]byte, error] {
	request.Mode = OutputModeBuffered
	request.LineConsumer = nil
	request.StandardOutputSink = nil
	invocation := invoker.Invoke(ctx, executionContext, request)
	return result.Map(invocation, func(outcome Outcome) []byte {
		return outcome.StandardOutput
	})
}

// ReadToString runs request in buffered mode and returns the captured standard output as text.
func (invoker *Invoker) ReadToString(ctx context.Context, executionContext ExecutionContext, request Request) result.Result[string, error] {
	return result.Map(invoker.ReadToBytes(ctx, executionContext, request), func(output []byte) string {
		return string(output)
	})
}
