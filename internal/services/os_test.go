package services_test

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitplumb/internal/services"
)

const (
	helperProcessEnvironmentKeyConstant   = "GO_WANT_HELPER_PROCESS"
	helperProcessEnvironmentValueConstant = "1"
	helperProcessTestNameConstant         = "TestHelperProcess"
	helperArgumentSeparatorConstant       = "--"
	helperEchoArgumentsModeConstant       = "echo-arguments"
	helperEchoInputModeConstant           = "echo-input"
	helperExitModeConstant                = "exit-three"
	helperSleepModeConstant               = "sleep"
	helperExpectedExitCodeConstant        = 3
	hostileArgumentConstant               = "; rm -rf /"
	spacedArgumentConstant                = "two words"
	standardInputPayloadConstant          = "alpha\x00beta\x00"
	executableNameConstant                = "tool"
)

func TestHelperProcess(testInstance *testing.T) {
	if os.Getenv(helperProcessEnvironmentKeyConstant) != helperProcessEnvironmentValueConstant {
		return
	}
	arguments := os.Args
	for index, argument := range arguments {
		if argument == helperArgumentSeparatorConstant {
			arguments = arguments[index+1:]
			break
		}
	}
	if len(arguments) == 0 {
		os.Exit(2)
	}
	switch arguments[0] {
	case helperEchoArgumentsModeConstant:
		for _, argument := range arguments[1:] {
			fmt.Fprintf(os.Stdout, "%s\n", argument)
		}
	case helperEchoInputModeConstant:
		_, _ = io.Copy(os.Stdout, os.Stdin)
	case helperExitModeConstant:
		fmt.Fprint(os.Stderr, "helper failure")
		os.Exit(helperExpectedExitCodeConstant)
	case helperSleepModeConstant:
		time.Sleep(time.Minute)
	}
	os.Exit(0)
}

func helperSpawnRequest(mode string, extraArguments ...string) services.SpawnRequest {
	arguments := []string{"-test.run=" + helperProcessTestNameConstant, helperArgumentSeparatorConstant, mode}
	arguments = append(arguments, extraArguments...)
	return services.SpawnRequest{
		ExecutablePath: os.Args[0],
		Arguments:      arguments,
		Environment:    map[string]string{helperProcessEnvironmentKeyConstant: helperProcessEnvironmentValueConstant},
	}
}

func TestOSServicesSpawnPassesArgumentsVerbatim(testInstance *testing.T) {
	osServices := services.NewOSServices()
	process, spawnError := osServices.Spawn(helperSpawnRequest(helperEchoArgumentsModeConstant, hostileArgumentConstant, spacedArgumentConstant))
	require.NoError(testInstance, spawnError)
	require.Nil(testInstance, process.StandardInput())
	require.NotZero(testInstance, process.PID())

	output, readError := io.ReadAll(process.StandardOutput())
	require.NoError(testInstance, readError)
	_, _ = io.ReadAll(process.StandardError())

	exitCode, waitError := process.Wait()
	require.NoError(testInstance, waitError)
	require.Zero(testInstance, exitCode)
	require.Equal(testInstance, []string{hostileArgumentConstant, spacedArgumentConstant}, strings.Split(strings.TrimSuffix(string(output), "\n"), "\n"))
}

func TestOSServicesSpawnDeliversStandardInput(testInstance *testing.T) {
	osServices := services.NewOSServices()
	request := helperSpawnRequest(helperEchoInputModeConstant)
	request.OpenStandardInput = true

	process, spawnError := osServices.Spawn(request)
	require.NoError(testInstance, spawnError)

	_, writeError := io.WriteString(process.StandardInput(), standardInputPayloadConstant)
	require.NoError(testInstance, writeError)
	require.NoError(testInstance, process.StandardInput().Close())

	output, readError := io.ReadAll(process.StandardOutput())
	require.NoError(testInstance, readError)
	_, _ = io.ReadAll(process.StandardError())

	exitCode, waitError := process.Wait()
	require.NoError(testInstance, waitError)
	require.Zero(testInstance, exitCode)
	require.Equal(testInstance, standardInputPayloadConstant, string(output))
}

func TestOSServicesWaitReportsExitCode(testInstance *testing.T) {
	osServices := services.NewOSServices()
	process, spawnError := osServices.Spawn(helperSpawnRequest(helperExitModeConstant))
	require.NoError(testInstance, spawnError)

	_, _ = io.ReadAll(process.StandardOutput())
	standardError, readError := io.ReadAll(process.StandardError())
	require.NoError(testInstance, readError)

	exitCode, waitError := process.Wait()
	require.NoError(testInstance, waitError)
	require.Equal(testInstance, helperExpectedExitCodeConstant, exitCode)
	require.Equal(testInstance, "helper failure", string(standardError))
}

func TestOSServicesKillUnblocksReaders(testInstance *testing.T) {
	osServices := services.NewOSServices()
	process, spawnError := osServices.Spawn(helperSpawnRequest(helperSleepModeConstant))
	require.NoError(testInstance, spawnError)

	require.NoError(testInstance, process.Kill())
	require.NoError(testInstance, process.Kill())

	_, _ = io.ReadAll(process.StandardOutput())
	exitCode, _ := process.Wait()
	require.NotZero(testInstance, exitCode)
}

func TestOSServicesSpawnMissingExecutable(testInstance *testing.T) {
	osServices := services.NewOSServices()
	_, spawnError := osServices.Spawn(services.SpawnRequest{ExecutablePath: filepath.Join(testInstance.TempDir(), "missing")})
	require.Error(testInstance, spawnError)
}

func TestOSServicesWhichHonoursExecutableBit(testInstance *testing.T) {
	if services.NewOSServices().Platform() == services.PlatformWindows {
		testInstance.Skip("executable bit is not meaningful on windows")
	}
	firstDirectory := testInstance.TempDir()
	secondDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(firstDirectory, executableNameConstant), []byte("data"), 0o644))
	expectedPath := filepath.Join(secondDirectory, executableNameConstant)
	require.NoError(testInstance, os.WriteFile(expectedPath, []byte("#!/bin/sh\n"), 0o755))

	osServices := services.NewOSServices()
	searchPath := strings.Join([]string{firstDirectory, secondDirectory}, string(os.PathListSeparator))

	resolvedPath, found := osServices.Which(executableNameConstant, services.WhichOptions{Path: searchPath})
	require.True(testInstance, found)
	require.Equal(testInstance, expectedPath, resolvedPath)

	_, found = osServices.Which("absent", services.WhichOptions{Path: searchPath})
	require.False(testInstance, found)

	require.True(testInstance, osServices.Exists(expectedPath))
	require.False(testInstance, osServices.Exists(""))
}

func TestSearchExecutableAppliesPathExtOnWindows(testInstance *testing.T) {
	testCases := []struct {
		name          string
		command       string
		platform      string
		available     []string
		expectedPath  string
		expectedFound bool
	}{
		{
			name:          "windows_extension_appended",
			command:       "git",
			platform:      services.PlatformWindows,
			available:     []string{filepath.Join("bin", "git.exe")},
			expectedPath:  filepath.Join("bin", "git.exe"),
			expectedFound: true,
		},
		{
			name:          "linux_ignores_pathext",
			command:       "git",
			platform:      services.PlatformLinux,
			available:     []string{filepath.Join("bin", "git.exe")},
			expectedFound: false,
		},
		{
			name:          "explicit_path_checked_directly",
			command:       filepath.Join("opt", "git"),
			platform:      services.PlatformLinux,
			available:     []string{filepath.Join("opt", "git")},
			expectedPath:  filepath.Join("opt", "git"),
			expectedFound: true,
		},
		{
			name:          "blank_command_rejected",
			command:       "  ",
			platform:      services.PlatformLinux,
			expectedFound: false,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			available := make(map[string]struct{}, len(testCase.available))
			for _, path := range testCase.available {
				available[path] = struct{}{}
			}
			resolvedPath, found := services.SearchExecutable(
				testCase.command,
				services.WhichOptions{Path: "bin", PathExt: ".COM;.EXE"},
				testCase.platform,
				func(candidate string) bool {
					_, exists := available[candidate]
					return exists
				},
			)
			require.Equal(testInstance, testCase.expectedFound, found)
			require.Equal(testInstance, testCase.expectedPath, resolvedPath)
		})
	}
}

func TestFormatEnvironmentSortsAssignments(testInstance *testing.T) {
	assignments := services.FormatEnvironment(map[string]string{"B": "2", "A": "1=x"})
	require.Equal(testInstance, []string{"A=1=x", "B=2"}, assignments)
}
