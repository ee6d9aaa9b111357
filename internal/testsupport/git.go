package testsupport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/gitplumb/internal/execshell"
	"github.com/temirov/gitplumb/internal/gitcontext"
	"github.com/temirov/gitplumb/internal/result"
	"github.com/temirov/gitplumb/internal/services"
)

const (
	detectionTimeoutConstant          = 10 * time.Second
	gitUnavailableSkipMessageConstant = "git executable not available: %v"
)

// SystemGit detects the git executable on the host. The test is skipped when none is found.
func SystemGit(testInstance testing.TB) (*execshell.Invoker, execshell.ExecutionContext) {
	testInstance.Helper()

	invoker, invokerError := execshell.NewInvoker(zap.NewNop(), nil)
	require.NoError(testInstance, invokerError)

	ctx, cancel := context.WithTimeout(context.Background(), detectionTimeoutConstant)
	defer cancel()

	executionContext, detectionError := result.ToPair(gitcontext.FromEnvironment(ctx, invoker, services.NewOSServices(), gitcontext.Options{}))
	if detectionError != nil {
		testInstance.Skipf(gitUnavailableSkipMessageConstant, detectionError)
	}
	return invoker, executionContext
}
