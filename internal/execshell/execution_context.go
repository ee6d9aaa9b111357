package execshell

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"

	"github.com/temirov/gitplumb/internal/services"
)

const (
	versionConstraintErrorTemplateConstant = "invalid version constraint %q: %w"
)

var versionCorePattern = regexp.MustCompile(`^(\d+)\.(\d+)(?:\.(\d+))?`)

// ExecutionContext identifies the git executable an Invoker runs. Values are immutable; the With
// methods return modified copies.
type ExecutionContext struct {
	executablePath  string
	version         string
	semanticVersion *semver.Version
	services        services.Services
	environment     map[string]string
}

// NewExecutionContext builds a context for executablePath. An empty version marks the context as
// pending detection.
func NewExecutionContext(executablePath string, version string, hostServices services.Services, environment map[string]string) ExecutionContext {
	semanticVersion, _ := ParseVersion(version)
	return ExecutionContext{
		executablePath:  executablePath,
		version:         version,
		semanticVersion: semanticVersion,
		services:        hostServices,
		environment:     copyEnvironment(environment),
	}
}

// ExecutablePath returns the resolved git executable path.
func (executionContext ExecutionContext) ExecutablePath() string {
	return executionContext.executablePath
}

// Version returns the version string reported by the executable, or empty when pending.
func (executionContext ExecutionContext) Version() string {
	return executionContext.version
}

// SemanticVersion returns the numeric version core, or nil when the version has none.
func (executionContext ExecutionContext) SemanticVersion() *semver.Version {
	return executionContext.semanticVersion
}

// Services returns the host capabilities used to spawn processes.
func (executionContext ExecutionContext) Services() services.Services {
	return executionContext.services
}

// Environment returns a copy of the persistent environment overrides.
func (executionContext ExecutionContext) Environment() map[string]string {
	return copyEnvironment(executionContext.environment)
}

// IsPending reports whether the version has not been detected yet.
func (executionContext ExecutionContext) IsPending() bool {
	return len(executionContext.version) == 0
}

// WithVersion returns a copy carrying the detected version.
func (executionContext ExecutionContext) WithVersion(version string) ExecutionContext {
	return NewExecutionContext(executionContext.executablePath, version, executionContext.services, executionContext.environment)
}

// WithEnvironment returns a copy whose overrides are extended by overrides.
func (executionContext ExecutionContext) WithEnvironment(overrides map[string]string) ExecutionContext {
	merged := copyEnvironment(executionContext.environment)
	for key, value := range overrides {
		merged[key] = value
	}
	updated := executionContext
	updated.environment = merged
	return updated
}

// SupportsVersion reports whether the detected version satisfies constraint, e.g. ">= 2.35".
// A context without a semantic version satisfies nothing.
func (executionContext ExecutionContext) SupportsVersion(constraint string) (bool, error) {
	parsedConstraint, constraintError := semver.NewConstraint(constraint)
	if constraintError != nil {
		return false, fmt.Errorf(versionConstraintErrorTemplateConstant, constraint, constraintError)
	}
	if executionContext.semanticVersion == nil {
		return false, nil
	}
	return parsedConstraint.Check(executionContext.semanticVersion), nil
}

// ParseVersion extracts the leading numeric major.minor[.patch] core from a git version string
// such as "2.39.2.windows.1" or "2.37.1 (Apple Git-137.1)".
func ParseVersion(version string) (*semver.Version, bool) {
	matches := versionCorePattern.FindStringSubmatch(version)
	if matches == nil {
		return nil, false
	}
	patch := matches[3]
	if len(patch) == 0 {
		patch = "0"
	}
	parsedVersion, parseError := semver.NewVersion(fmt.Sprintf("%s.%s.%s", matches[1], matches[2], patch))
	if parseError != nil {
		return nil, false
	}
	return parsedVersion, true
}

func copyEnvironment(environment map[string]string) map[string]string {
	copied := make(map[string]string, len(environment))
	for key, value := range environment {
		copied[key] = value
	}
	return copied
}
