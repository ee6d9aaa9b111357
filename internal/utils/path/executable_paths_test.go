package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/gitplumb/internal/utils/path"
)

const testHomeDirectoryConstant = "/home/tester"

func TestExecutablePathNormalizerNormalize(testInstance *testing.T) {
	testCases := []struct {
		name          string
		provider      pathutils.HomeDirectoryProvider
		candidates    []string
		expectedPaths []string
	}{
		{
			name:          "expands_home_and_drops_blanks",
			provider:      func() (string, error) { return testHomeDirectoryConstant, nil },
			candidates:    []string{" ~/bin/git ", "", "   ", "/usr/bin/git"},
			expectedPaths: []string{filepath.Join(testHomeDirectoryConstant, "bin", "git"), "/usr/bin/git"},
		},
		{
			name:          "removes_duplicates_after_cleaning",
			provider:      func() (string, error) { return testHomeDirectoryConstant, nil },
			candidates:    []string{"/usr/bin/../bin/git", "/usr/bin/git", "~"},
			expectedPaths: []string{"/usr/bin/git", testHomeDirectoryConstant},
		},
		{
			name:          "keeps_tilde_when_home_unknown",
			provider:      func() (string, error) { return "", errors.New("no home") },
			candidates:    []string{"~/git"},
			expectedPaths: []string{"~/git"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			normalizer := pathutils.NewExecutablePathNormalizerWithProvider(testCase.provider)
			require.Equal(testInstance, testCase.expectedPaths, normalizer.Normalize(testCase.candidates))
		})
	}
}
