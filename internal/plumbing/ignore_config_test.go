package plumbing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitplumb/internal/plumbing"
)

func TestParseIgnoreCheck(testInstance *testing.T) {
	testCases := []struct {
		name          string
		raw           string
		expectedPaths []string
		expectError   bool
	}{
		{
			name:          "plain_match",
			raw:           ".gitignore\x003\x00*.log\x00debug.log\x00",
			expectedPaths: []string{"debug.log"},
		},
		{
			name:          "negated_pattern_is_not_ignored",
			raw:           ".gitignore\x003\x00*.log\x00debug.log\x00.gitignore\x004\x00!keep.log\x00keep.log\x00",
			expectedPaths: []string{"debug.log"},
		},
		{
			name:          "empty_pattern_is_not_ignored",
			raw:           "\x00\x00\x00untracked.txt\x00.git/info/exclude\x001\x00build/\x00build/out\x00",
			expectedPaths: []string{"build/out"},
		},
		{name: "no_output", raw: "", expectedPaths: []string{}},
		{name: "wrong_arity", raw: ".gitignore\x003\x00*.log\x00", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			matches, parseError := plumbing.ParseIgnoreCheck([]byte(testCase.raw))
			if testCase.expectError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedPaths, plumbing.IgnoredPaths(matches))
		})
	}
}

func TestParseIgnoreCheckKeepsMatchDetails(testInstance *testing.T) {
	matches, parseError := plumbing.ParseIgnoreCheck([]byte("/home/tester/.config/git/ignore\x0012\x00.DS_Store\x00assets/.DS_Store\x00"))

	require.NoError(testInstance, parseError)
	require.Equal(testInstance, []plumbing.IgnoreMatch{{
		Source:  "/home/tester/.config/git/ignore",
		Line:    "12",
		Pattern: ".DS_Store",
		Path:    "assets/.DS_Store",
	}}, matches)
}

func TestParseConfigValue(testInstance *testing.T) {
	testCases := []struct {
		name          string
		raw           string
		expectedValue plumbing.ConfigValue
		expectError   bool
	}{
		{name: "local_value", raw: "local\x00Jane Doe\x00", expectedValue: plumbing.ConfigValue{Scope: plumbing.ConfigScopeLocal, Value: "Jane Doe"}},
		{name: "value_with_tab_and_newline", raw: "global\x00a\tb\nc\x00", expectedValue: plumbing.ConfigValue{Scope: plumbing.ConfigScopeGlobal, Value: "a\tb\nc"}},
		{name: "empty_value", raw: "worktree\x00\x00", expectedValue: plumbing.ConfigValue{Scope: plumbing.ConfigScopeWorktree, Value: ""}},
		{name: "unknown_scope", raw: "remote\x00value\x00", expectError: true},
		{name: "missing_value", raw: "local\x00", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			value, parseError := plumbing.ParseConfigValue([]byte(testCase.raw))
			if testCase.expectError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedValue, value)
		})
	}
}

func TestParseConfigList(testInstance *testing.T) {
	raw := "system\x00core.autocrlf\ninput\x00" +
		"local\x00core.bare\nfalse\x00" +
		"local\x00alias.multi\nline one\nline two\x00" +
		"command\x00feature.flag\x00"

	entries, parseError := plumbing.ParseConfigList([]byte(raw))

	require.NoError(testInstance, parseError)
	require.Equal(testInstance, []plumbing.ConfigEntry{
		{Scope: plumbing.ConfigScopeSystem, Key: "core.autocrlf", Value: "input", HasValue: true},
		{Scope: plumbing.ConfigScopeLocal, Key: "core.bare", Value: "false", HasValue: true},
		{Scope: plumbing.ConfigScopeLocal, Key: "alias.multi", Value: "line one\nline two", HasValue: true},
		{Scope: plumbing.ConfigScopeCommand, Key: "feature.flag", Value: "", HasValue: false},
	}, entries)

	_, arityError := plumbing.ParseConfigList([]byte("local\x00"))
	require.Error(testInstance, arityError)
}
