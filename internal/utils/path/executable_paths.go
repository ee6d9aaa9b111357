// Package pathutils normalizes user-supplied executable locations.
package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant             = "~"
	tildeForwardSlashPrefixConstant = "~/"
)

var tildeWithPathSeparatorPrefix = tildeSymbolConstant + string(os.PathSeparator)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// ExecutablePathNormalizer expands home shortcuts in executable locations and drops blanks and
// duplicates while preserving order.
type ExecutablePathNormalizer struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewExecutablePathNormalizer constructs a normalizer using the operating system home lookup.
func NewExecutablePathNormalizer() *ExecutablePathNormalizer {
	return NewExecutablePathNormalizerWithProvider(os.UserHomeDir)
}

// NewExecutablePathNormalizerWithProvider constructs a normalizer with a custom home provider.
func NewExecutablePathNormalizerWithProvider(provider HomeDirectoryProvider) *ExecutablePathNormalizer {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &ExecutablePathNormalizer{homeDirectoryProvider: provider}
}

// Normalize trims and expands every candidate, returning the distinct non-empty results.
func (normalizer *ExecutablePathNormalizer) Normalize(candidatePaths []string) []string {
	normalizedPaths := make([]string, 0, len(candidatePaths))
	seen := make(map[string]struct{}, len(candidatePaths))
	for _, candidatePath := range candidatePaths {
		expandedPath := normalizer.Expand(strings.TrimSpace(candidatePath))
		if len(expandedPath) == 0 {
			continue
		}
		cleanedPath := filepath.Clean(expandedPath)
		if _, exists := seen[cleanedPath]; exists {
			continue
		}
		seen[cleanedPath] = struct{}{}
		normalizedPaths = append(normalizedPaths, cleanedPath)
	}
	return normalizedPaths
}

// Expand resolves a leading tilde to the user's home directory.
func (normalizer *ExecutablePathNormalizer) Expand(candidatePath string) string {
	if !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	homeDirectory := normalizer.resolveHomeDirectory()
	if len(homeDirectory) == 0 {
		return candidatePath
	}

	switch {
	case candidatePath == tildeSymbolConstant:
		return homeDirectory
	case strings.HasPrefix(candidatePath, tildeForwardSlashPrefixConstant):
		return filepath.Join(homeDirectory, strings.TrimPrefix(candidatePath, tildeForwardSlashPrefixConstant))
	case strings.HasPrefix(candidatePath, tildeWithPathSeparatorPrefix):
		return filepath.Join(homeDirectory, strings.TrimPrefix(candidatePath, tildeWithPathSeparatorPrefix))
	default:
		return candidatePath
	}
}

func (normalizer *ExecutablePathNormalizer) resolveHomeDirectory() string {
	normalizer.initializationGuard.Do(func() {
		normalizer.homeDirectory, normalizer.homeDirectoryError = normalizer.homeDirectoryProvider()
	})
	if normalizer.homeDirectoryError != nil {
		return ""
	}
	return normalizer.homeDirectory
}
