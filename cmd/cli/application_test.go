package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/gitplumb/internal/gitcontext"
	"github.com/temirov/gitplumb/internal/plumbing"
	"github.com/temirov/gitplumb/internal/services"
	"github.com/temirov/gitplumb/internal/services/servicestest"
)

const (
	testGitPathConstant               = "/opt/git/bin/git"
	testRepositoryPathConstant        = "/workspace/project"
	testVersionOutputConstant         = "git version 2.43.0\n"
	testHeadObjectConstant            = "3f2a9c1d5e7b8a6f4c0d2e1b9a8c7d6e5f4a3b2c"
	testArgumentJoinerConstant        = " "
	testGitPathEnvironmentKeyConstant = "GITPLUMB_GIT_EXECUTABLE_PATH"
	testApplicationVersionConstant    = "v1.4.0"
)

type cliHarness struct {
	application *Application
	services    *servicestest.FakeServices
	output      *bytes.Buffer
}

func newCLIHarness(testInstance *testing.T, scripts map[string]servicestest.ProcessScript) cliHarness {
	testInstance.Helper()
	testInstance.Chdir(testInstance.TempDir())

	allScripts := map[string]servicestest.ProcessScript{
		"--version": {StandardOutputChunks: []string{testVersionOutputConstant}},
	}
	for arguments, script := range scripts {
		allScripts[arguments] = script
	}

	fakeServices := &servicestest.FakeServices{
		ExistingPaths:        map[string]bool{testGitPathConstant: true},
		EnvironmentVariables: map[string]string{"PATH": "/usr/bin"},
		PlatformName:         services.PlatformLinux,
		SpawnHandler: func(request services.SpawnRequest) (services.Process, error) {
			script, known := allScripts[strings.Join(request.Arguments, testArgumentJoinerConstant)]
			if !known {
				return nil, fmt.Errorf("unexpected arguments %q", request.Arguments)
			}
			return servicestest.NewScriptedProcess(request, script), nil
		},
	}

	application := NewApplicationWithServices(func() services.Services { return fakeServices })
	output := &bytes.Buffer{}
	application.rootCommand.SetOut(output)
	application.rootCommand.SetErr(&bytes.Buffer{})
	return cliHarness{application: application, services: fakeServices, output: output}
}

func (harness cliHarness) run(arguments ...string) error {
	harness.application.rootCommand.SetArgs(arguments)
	return harness.application.Execute()
}

func TestCommandsRenderText(testInstance *testing.T) {
	testCases := []struct {
		name      string
		scripts   map[string]servicestest.ProcessScript
		arguments []string
		expected  string
	}{
		{
			name: "toplevel",
			scripts: map[string]servicestest.ProcessScript{
				"rev-parse --show-toplevel": {StandardOutputChunks: []string{testRepositoryPathConstant + "\n"}},
			},
			arguments: []string{"toplevel"},
			expected:  testRepositoryPathConstant + "\n",
		},
		{
			name: "unborn_head",
			scripts: map[string]servicestest.ProcessScript{
				"rev-parse --verify -q HEAD":   {ExitCode: 1},
				"symbolic-ref -q --short HEAD": {StandardOutputChunks: []string{"main\n"}},
			},
			arguments: []string{"head"},
			expected:  "(unborn) main\n",
		},
		{
			name: "detached_head",
			scripts: map[string]servicestest.ProcessScript{
				"rev-parse --verify -q HEAD":   {StandardOutputChunks: []string{testHeadObjectConstant + "\n"}},
				"symbolic-ref -q --short HEAD": {ExitCode: 1},
			},
			arguments: []string{"head"},
			expected:  testHeadObjectConstant + " (detached)\n",
		},
		{
			name: "config_get_with_scope",
			scripts: map[string]servicestest.ProcessScript{
				"config --local --show-scope -z --get user.name": {StandardOutputChunks: []string{"local\x00Jane Doe\x00"}},
			},
			arguments: []string{"config-get", "--scope", "local", "user.name"},
			expected:  "local\tJane Doe\n",
		},
		{
			name: "executable_bit",
			scripts: map[string]servicestest.ProcessScript{
				"ls-tree -l -z HEAD -- run.sh": {StandardOutputChunks: []string{"100755 blob " + testHeadObjectConstant + "      42\trun.sh\x00"}},
			},
			arguments: []string{"executable", "HEAD", "run.sh"},
			expected:  "true\n",
		},
		{
			name: "untracked",
			scripts: map[string]servicestest.ProcessScript{
				"ls-files -z --others --exclude-standard": {StandardOutputChunks: []string{"notes.txt\x00tmp/scratch\x00"}},
			},
			arguments: []string{"untracked"},
			expected:  headingStyle.Render("Untracked paths (2)") + "\nnotes.txt\ntmp/scratch\n",
		},
		{
			name: "stream",
			scripts: map[string]servicestest.ProcessScript{
				"log --oneline": {StandardOutputChunks: []string{"abc first\r\n", "def sec", "ond\n"}},
			},
			arguments: []string{"stream", "--", "log", "--oneline"},
			expected:  "abc first\ndef second\n",
		},
		{
			name: "cat_file",
			scripts: map[string]servicestest.ProcessScript{
				"cat-file -p " + testHeadObjectConstant: {StandardOutputChunks: []string{"tree 4b82\n", "author A\n"}},
			},
			arguments: []string{"cat-file", testHeadObjectConstant},
			expected:  "tree 4b82\nauthor A\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			harness := newCLIHarness(testInstance, testCase.scripts)
			arguments := append([]string{"--git-path", testGitPathConstant, "--cwd", testRepositoryPathConstant}, testCase.arguments...)

			require.NoError(testInstance, harness.run(arguments...))
			require.Equal(testInstance, testCase.expected, harness.output.String())

			for _, request := range harness.services.SpawnRequests() {
				require.Equal(testInstance, testGitPathConstant, request.ExecutablePath)
			}
		})
	}
}

func TestCommandsRunInRequestedDirectory(testInstance *testing.T) {
	harness := newCLIHarness(testInstance, map[string]servicestest.ProcessScript{
		"rev-parse --show-toplevel": {StandardOutputChunks: []string{testRepositoryPathConstant + "\n"}},
	})

	require.NoError(testInstance, harness.run("--git-path", testGitPathConstant, "--cwd", testRepositoryPathConstant, "toplevel"))

	requests := harness.services.SpawnRequests()
	require.Len(testInstance, requests, 2)
	require.Equal(testInstance, []string{"--version"}, requests[0].Arguments)
	require.Equal(testInstance, testRepositoryPathConstant, requests[1].WorkingDirectory)
}

func TestRefsRenderYAML(testInstance *testing.T) {
	refLines := strings.Join([]string{
		"refs/heads/main\x00main\x00" + testHeadObjectConstant + "\x00origin/main\x00ahead 2, behind 1",
		"refs/heads/topic\x00topic\x00" + testHeadObjectConstant + "\x00\x00",
	}, "\n") + "\n"
	harness := newCLIHarness(testInstance, map[string]servicestest.ProcessScript{
		"for-each-ref --format=" + plumbing.RefFormat + " refs/heads": {StandardOutputChunks: []string{refLines}},
	})

	require.NoError(testInstance, harness.run("--git-path", testGitPathConstant, "--cwd", testRepositoryPathConstant, "--output", "yaml", "refs"))

	var decoded []plumbing.Ref
	require.NoError(testInstance, yaml.Unmarshal(harness.output.Bytes(), &decoded))
	require.Equal(testInstance, []plumbing.Ref{
		{Name: "refs/heads/main", ShortName: "main", ObjectName: testHeadObjectConstant, Upstream: "origin/main", Ahead: 2, Behind: 1},
		{Name: "refs/heads/topic", ShortName: "topic", ObjectName: testHeadObjectConstant},
	}, decoded)
}

func TestRefLineFormatting(testInstance *testing.T) {
	testCases := []struct {
		name     string
		ref      plumbing.Ref
		expected string
	}{
		{name: "no_upstream", ref: plumbing.Ref{ShortName: "topic", ObjectName: "abc"}, expected: "abc topic"},
		{name: "in_sync", ref: plumbing.Ref{ShortName: "main", ObjectName: "abc", Upstream: "origin/main"}, expected: "abc main -> origin/main"},
		{name: "diverged", ref: plumbing.Ref{ShortName: "main", ObjectName: "abc", Upstream: "origin/main", Ahead: 1, Behind: 3}, expected: "abc main -> origin/main [ahead 1, behind 3]"},
		{name: "gone", ref: plumbing.Ref{ShortName: "old", ObjectName: "abc", Upstream: "origin/old", UpstreamGone: true}, expected: "abc old -> origin/old [gone]"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, formatRef(testCase.ref))
		})
	}
}

func TestStatusAndConfigLineFormatting(testInstance *testing.T) {
	require.Equal(testInstance, " M file.txt", formatFileStatus(plumbing.FileStatus{X: " ", Y: "M", Path: "file.txt"}))
	require.Equal(testInstance, "R  old.txt -> new.txt", formatFileStatus(plumbing.FileStatus{X: "R", Y: " ", Path: "new.txt", OriginalPath: "old.txt"}))
	require.Equal(testInstance, "global\tuser.name=Jane", formatConfigEntry(plumbing.ConfigEntry{Scope: plumbing.ConfigScopeGlobal, Key: "user.name", Value: "Jane", HasValue: true}))
	require.Equal(testInstance, "local\tcore.bare", formatConfigEntry(plumbing.ConfigEntry{Scope: plumbing.ConfigScopeLocal, Key: "core.bare"}))
	require.Equal(testInstance, "-", formatSize(-1))
	require.Equal(testInstance, "512", formatSize(512))
}

func TestConfigGetReportsMissingKey(testInstance *testing.T) {
	harness := newCLIHarness(testInstance, map[string]servicestest.ProcessScript{
		"config --show-scope -z --get user.email": {ExitCode: 1},
	})

	executionError := harness.run("--git-path", testGitPathConstant, "--cwd", testRepositoryPathConstant, "config-get", "user.email")
	require.EqualError(testInstance, executionError, `configuration key "user.email" is not set`)
	require.Empty(testInstance, harness.output.String())
}

func TestMissingPinnedExecutableIsReported(testInstance *testing.T) {
	harness := newCLIHarness(testInstance, nil)

	executionError := harness.run("--git-path", "/does/not/exist/git", "toplevel")
	require.Error(testInstance, executionError)

	var creationError gitcontext.ContextCreationError
	require.True(testInstance, errors.As(executionError, &creationError))
	require.Equal(testInstance, gitcontext.ErrorKindNotFound, creationError.Kind)
	require.Empty(testInstance, harness.services.SpawnRequests())
}

func TestExecutablePathFromEnvironment(testInstance *testing.T) {
	harness := newCLIHarness(testInstance, map[string]servicestest.ProcessScript{
		"rev-parse --show-toplevel": {StandardOutputChunks: []string{testRepositoryPathConstant + "\n"}},
	})
	testInstance.Setenv(testGitPathEnvironmentKeyConstant, testGitPathConstant)

	require.NoError(testInstance, harness.run("--cwd", testRepositoryPathConstant, "toplevel"))
	require.Equal(testInstance, testRepositoryPathConstant+"\n", harness.output.String())
	require.Empty(testInstance, harness.services.WhichCalls())
}

func TestConfigurationFileSuppliesEnvironment(testInstance *testing.T) {
	harness := newCLIHarness(testInstance, map[string]servicestest.ProcessScript{
		"rev-parse --show-toplevel": {StandardOutputChunks: []string{testRepositoryPathConstant + "\n"}},
	})
	configurationPath := filepath.Join(testInstance.TempDir(), "config.yaml")
	configurationContent := "git:\n  executable_path: " + testGitPathConstant + "\n  environment:\n    git_trace: \"1\"\n"
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(configurationContent), 0o600))

	require.NoError(testInstance, harness.run("--config", configurationPath, "--cwd", testRepositoryPathConstant, "toplevel"))

	requests := harness.services.SpawnRequests()
	require.NotEmpty(testInstance, requests)
	for _, request := range requests {
		require.Equal(testInstance, "1", request.Environment["GIT_TRACE"])
	}
}

func TestVersionCommand(testInstance *testing.T) {
	harness := newCLIHarness(testInstance, nil)
	harness.application.versionResolver = func(context.Context) string {
		return testApplicationVersionConstant
	}

	require.NoError(testInstance, harness.run("--git-path", testGitPathConstant, "version"))
	require.Equal(testInstance, "gitplumb v1.4.0\ngit 2.43.0 ("+testGitPathConstant+")\n", harness.output.String())
}

func TestInitCreatesTargetDirectory(testInstance *testing.T) {
	workspace := testInstance.TempDir()
	target := filepath.Join(workspace, "nested", "repository")
	harness := newCLIHarness(testInstance, map[string]servicestest.ProcessScript{
		"init -q --bare --initial-branch=trunk": {},
	})

	require.NoError(testInstance, harness.run("--git-path", testGitPathConstant, "--cwd", workspace, "init", "--bare", "--initial-branch", "trunk", "nested/repository"))
	require.DirExists(testInstance, target)

	requests := harness.services.SpawnRequests()
	require.Equal(testInstance, target, requests[len(requests)-1].WorkingDirectory)
}

func TestUnknownOutputFormatIsRejected(testInstance *testing.T) {
	harness := newCLIHarness(testInstance, nil)

	require.Error(testInstance, harness.run("--git-path", testGitPathConstant, "--output", "json", "toplevel"))
	require.Empty(testInstance, harness.services.SpawnRequests())
}
