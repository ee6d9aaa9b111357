package gitcontext

import (
	"fmt"

	"github.com/temirov/gitplumb/internal/execshell"
)

// Context creation failure kinds.
const (
	ErrorKindNotFound          execshell.ErrorKind = "not_found"
	ErrorKindVersionUnparsable execshell.ErrorKind = "version_unparsable"
)

const (
	notFoundTemplateConstant          = "git executable not found at %q"
	notFoundWithCauseTemplateConstant = "git executable at %q failed the version probe: %v"
	notFoundWithoutPathConstant       = "git executable not found"
	unparsableVersionTemplateConstant = "git executable at %q reported an unparsable version %q"
)

// ContextCreationError reports why an execution context could not be created.
type ContextCreationError struct {
	Kind   execshell.ErrorKind
	Path   string
	Output string
	Cause  error
}

func (failure ContextCreationError) Error() string {
	switch {
	case failure.Kind == ErrorKindVersionUnparsable:
		return fmt.Sprintf(unparsableVersionTemplateConstant, failure.Path, failure.Output)
	case failure.Cause != nil:
		return fmt.Sprintf(notFoundWithCauseTemplateConstant, failure.Path, failure.Cause)
	case len(failure.Path) == 0:
		return notFoundWithoutPathConstant
	default:
		return fmt.Sprintf(notFoundTemplateConstant, failure.Path)
	}
}

// Unwrap exposes the probe failure, if any.
func (failure ContextCreationError) Unwrap() error {
	return failure.Cause
}

