package gitapi

import (
	"errors"
	"fmt"
)

const (
	invokerNotConfiguredMessageConstant = "gitapi: invoker not configured"
	contextPendingMessageConstant       = "gitapi: execution context has no detected version"
	pathNotInTreeMessageConstant        = "gitapi: path not present in tree"
	unsupportedVersionTemplateConstant  = "gitapi: %s requires git %s, found %s"
)

var (
	// ErrInvokerNotConfigured indicates that NewClient received a nil invoker.
	ErrInvokerNotConfigured = errors.New(invokerNotConfiguredMessageConstant)
	// ErrExecutionContextPending indicates an execution context whose version was never detected.
	ErrExecutionContextPending = errors.New(contextPendingMessageConstant)
	// ErrPathNotInTree indicates that ls-tree reported no entry for the requested path.
	ErrPathNotInTree = errors.New(pathNotInTreeMessageConstant)
)

// UnsupportedVersionError reports an operation that needs a newer git than the detected one.
type UnsupportedVersionError struct {
	Operation  string
	Constraint string
	Version    string
}

func (failure UnsupportedVersionError) Error() string {
	return fmt.Sprintf(unsupportedVersionTemplateConstant, failure.Operation, failure.Constraint, failure.Version)
}
