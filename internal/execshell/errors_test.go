package execshell_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitplumb/internal/execshell"
)

func TestErrorKindsAndHelpers(testInstance *testing.T) {
	command := execshell.CommandDescriptor{ExecutablePath: "/usr/bin/git", Arguments: []string{"config", "--get", "user.name"}}
	quietExit := execshell.NonZeroExitError{Command: command, ExitCode: 1}
	noisyExit := execshell.NonZeroExitError{Command: command, ExitCode: 1, StandardError: "error: key does not contain a section"}

	testCases := []struct {
		name         string
		failure      error
		expectedKind execshell.ErrorKind
		quietExitOne bool
	}{
		{name: "quiet_exit", failure: quietExit, expectedKind: execshell.ErrorKindNonZeroExit, quietExitOne: true},
		{name: "noisy_exit", failure: noisyExit, expectedKind: execshell.ErrorKindNonZeroExit},
		{name: "wrapped_quiet_exit", failure: fmt.Errorf("reading config: %w", quietExit), expectedKind: execshell.ErrorKindNonZeroExit, quietExitOne: true},
		{name: "spawn_failure", failure: execshell.SpawnFailureError{Command: command, Cause: errors.New("no such file")}, expectedKind: execshell.ErrorKindSpawnFailure},
		{name: "cancelled", failure: execshell.CancelledError{Command: command, Reason: execshell.CancellationReasonCaller, Cause: context.Canceled}, expectedKind: execshell.ErrorKindCancelled},
		{name: "decode_failure", failure: execshell.DecodeError{Command: command, Cause: errors.New("bad record")}, expectedKind: execshell.ErrorKindDecodeFailure},
		{name: "output_limit", failure: execshell.OutputLimitError{Command: command, Limit: 10}, expectedKind: execshell.ErrorKindOutputLimit},
		{name: "unclassified", failure: errors.New("plain"), expectedKind: execshell.ErrorKindUnknown},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedKind, execshell.KindOf(testCase.failure))
			require.Equal(testInstance, testCase.quietExitOne, execshell.IsQuietExit(testCase.failure, 1))
		})
	}
}

func TestErrorMessagesDescribeCommand(testInstance *testing.T) {
	command := execshell.CommandDescriptor{ExecutablePath: "/usr/bin/git", Arguments: []string{"status"}, WorkingDirectory: "/repo"}

	require.Equal(testInstance, "git status (in /repo): exit code 128: fatal: not a git repository", execshell.NonZeroExitError{
		Command:       command,
		ExitCode:      128,
		StandardError: "fatal: not a git repository\n",
	}.Error())
	require.Equal(testInstance, "git status (in /repo): cancelled (deadline)", execshell.CancelledError{
		Command: command,
		Reason:  execshell.CancellationReasonDeadline,
	}.Error())
	require.Equal(testInstance, "git status (in /repo): standard output exceeded 64 bytes", execshell.OutputLimitError{Command: command, Limit: 64}.Error())
}
