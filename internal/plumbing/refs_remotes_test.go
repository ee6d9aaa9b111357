package plumbing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitplumb/internal/plumbing"
)

func TestParseRefLine(testInstance *testing.T) {
	testCases := []struct {
		name        string
		line        string
		expectedRef plumbing.Ref
		expectError bool
	}{
		{
			name:        "tracking_ahead_and_behind",
			line:        "refs/heads/main\x00main\x00abc123\x00origin/main\x00ahead 2, behind 1",
			expectedRef: plumbing.Ref{Name: "refs/heads/main", ShortName: "main", ObjectName: "abc123", Upstream: "origin/main", Ahead: 2, Behind: 1},
		},
		{
			name:        "behind_only",
			line:        "refs/heads/dev\x00dev\x00def456\x00origin/dev\x00behind 7",
			expectedRef: plumbing.Ref{Name: "refs/heads/dev", ShortName: "dev", ObjectName: "def456", Upstream: "origin/dev", Behind: 7},
		},
		{
			name:        "upstream_gone",
			line:        "refs/heads/old\x00old\x00aaa111\x00origin/old\x00gone",
			expectedRef: plumbing.Ref{Name: "refs/heads/old", ShortName: "old", ObjectName: "aaa111", Upstream: "origin/old", UpstreamGone: true},
		},
		{
			name:        "no_upstream",
			line:        "refs/tags/v1.0.0\x00v1.0.0\x00bbb222\x00\x00",
			expectedRef: plumbing.Ref{Name: "refs/tags/v1.0.0", ShortName: "v1.0.0", ObjectName: "bbb222"},
		},
		{name: "wrong_arity", line: "refs/heads/main\x00main", expectError: true},
		{name: "bad_tracking", line: "refs/heads/main\x00main\x00abc\x00origin/main\x00diverged", expectError: true},
		{name: "bad_count", line: "refs/heads/main\x00main\x00abc\x00origin/main\x00ahead many", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			ref, parseError := plumbing.ParseRefLine(3, testCase.line)
			if testCase.expectError {
				var recordError plumbing.RecordError
				require.ErrorAs(testInstance, parseError, &recordError)
				require.Equal(testInstance, 3, recordError.Record)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedRef, ref)
		})
	}
}

func TestParseRemoteLinesAndCollect(testInstance *testing.T) {
	rawLines := []string{
		"origin\tgit@github.com:temirov/gitplumb.git (fetch)",
		"origin\tgit@github.com:temirov/gitplumb.git (push)",
		"mirror\thttps://example.com/mirrors/path with space.git (fetch)",
		"mirror\tssh://backup@example.com/mirrors/gitplumb.git (push)",
	}

	lines := make([]plumbing.RemoteLine, 0, len(rawLines))
	for record, rawLine := range rawLines {
		line, parseError := plumbing.ParseRemoteLine(record, rawLine)
		require.NoError(testInstance, parseError)
		lines = append(lines, line)
	}

	require.Equal(testInstance, []plumbing.Remote{
		{Name: "origin", FetchURL: "git@github.com:temirov/gitplumb.git", PushURL: "git@github.com:temirov/gitplumb.git"},
		{Name: "mirror", FetchURL: "https://example.com/mirrors/path with space.git", PushURL: "ssh://backup@example.com/mirrors/gitplumb.git"},
	}, plumbing.CollectRemotes(lines))

	for _, malformed := range []string{"origin git@github.com:x/y.git (fetch)", "origin\turl", "origin\turl (pull)"} {
		_, parseError := plumbing.ParseRemoteLine(0, malformed)
		require.Error(testInstance, parseError, malformed)
	}
}

func TestParseRemoteURL(testInstance *testing.T) {
	testCases := []struct {
		name           string
		input          string
		expectedRemote plumbing.RemoteURL
		expectedFormat string
		expectError    bool
	}{
		{
			name:           "scp_like",
			input:          "git@github.com:temirov/gitplumb.git",
			expectedRemote: plumbing.RemoteURL{Protocol: plumbing.RemoteProtocolSSH, User: "git", Host: "github.com", Owner: "temirov", Repository: "gitplumb"},
			expectedFormat: "git@github.com:temirov/gitplumb.git",
		},
		{
			name:           "ssh_scheme",
			input:          "ssh://git@github.com/temirov/gitplumb.git",
			expectedRemote: plumbing.RemoteURL{Protocol: plumbing.RemoteProtocolSSH, User: "git", Host: "github.com", Owner: "temirov", Repository: "gitplumb"},
			expectedFormat: "git@github.com:temirov/gitplumb.git",
		},
		{
			name:           "https_nested_group",
			input:          "https://gitlab.com/group/subgroup/project.git",
			expectedRemote: plumbing.RemoteURL{Protocol: plumbing.RemoteProtocolHTTPS, Host: "gitlab.com", Owner: "group/subgroup", Repository: "project"},
			expectedFormat: "https://gitlab.com/group/subgroup/project.git",
		},
		{
			name:           "http_without_suffix",
			input:          "http://git.internal/team/tool",
			expectedRemote: plumbing.RemoteURL{Protocol: plumbing.RemoteProtocolHTTP, Host: "git.internal", Owner: "team", Repository: "tool"},
			expectedFormat: "http://git.internal/team/tool.git",
		},
		{
			name:           "local_path",
			input:          "/srv/git/project.git",
			expectedRemote: plumbing.RemoteURL{Protocol: plumbing.RemoteProtocolFile, Owner: "/srv/git", Repository: "project"},
			expectedFormat: "file:///srv/git/project.git",
		},
		{
			name:           "file_scheme",
			input:          "file:///srv/git/project.git",
			expectedRemote: plumbing.RemoteURL{Protocol: plumbing.RemoteProtocolFile, Owner: "/srv/git", Repository: "project"},
			expectedFormat: "file:///srv/git/project.git",
		},
		{name: "empty", input: "  ", expectError: true},
		{name: "https_missing_owner", input: "https://github.com/gitplumb.git", expectError: true},
		{name: "scp_missing_host", input: "git@:temirov/gitplumb.git", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			remote, parseError := plumbing.ParseRemoteURL(testCase.input)
			if testCase.expectError {
				var remoteError plumbing.RemoteURLParseError
				require.ErrorAs(testInstance, parseError, &remoteError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedRemote, remote)

			formatted, formatError := plumbing.FormatRemoteURL(remote)
			require.NoError(testInstance, formatError)
			require.Equal(testInstance, testCase.expectedFormat, formatted)
		})
	}
}

func TestFormatRemoteURLRejectsUnknownProtocol(testInstance *testing.T) {
	_, formatError := plumbing.FormatRemoteURL(plumbing.RemoteURL{Protocol: "ftp", Host: "example.com", Repository: "x"})

	var protocolError plumbing.UnsupportedProtocolError
	require.ErrorAs(testInstance, formatError, &protocolError)
}
