package utils_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitplumb/internal/utils"
)

const (
	testWorkingDirectoryValueConstant      = "/workspace/repository"
	testConfigurationFilePathValueConstant = "/workspace/config.yaml"
)

// countingWriter records how many Write calls reached it.
type countingWriter struct {
	bytes.Buffer
	writeCount int
}

func (writer *countingWriter) Write(data []byte) (int, error) {
	writer.writeCount++
	return writer.Buffer.Write(data)
}

func TestPreviewShortensAndEscapes(testInstance *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "short_text_kept", input: "fatal: bad", expected: "fatal: bad"},
		{name: "separators_escaped", input: "a\x00b\nc", expected: `a\0b\nc`},
		{name: "long_text_truncated", input: strings.Repeat("x", utils.PreviewLength+10), expected: strings.Repeat("x", utils.PreviewLength) + "..."},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, utils.Preview(testCase.input))
		})
	}
}

func TestFlushingWriterDeliversEachRecord(testInstance *testing.T) {
	destination := &countingWriter{}
	flushingWriter := utils.NewFlushingWriter(destination)
	require.Same(testInstance, flushingWriter, utils.NewFlushingWriter(flushingWriter))

	require.NoError(testInstance, flushingWriter.WriteLine("refs/heads/main"))
	require.Equal(testInstance, "refs/heads/main\n", destination.String())
	require.Equal(testInstance, 1, destination.writeCount)

	_, writeError := flushingWriter.Write([]byte("tail"))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, "refs/heads/main\ntail", destination.String())
	require.Equal(testInstance, 2, destination.writeCount)
}

func TestCommandContextAccessorRoundTrip(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	_, found := accessor.WorkingDirectory(context.Background())
	require.False(testInstance, found)

	executionContext := accessor.WithWorkingDirectory(context.Background(), testWorkingDirectoryValueConstant)
	executionContext = accessor.WithConfigurationFilePath(executionContext, testConfigurationFilePathValueConstant)

	workingDirectory, found := accessor.WorkingDirectory(executionContext)
	require.True(testInstance, found)
	require.Equal(testInstance, testWorkingDirectoryValueConstant, workingDirectory)

	configurationFilePath, found := accessor.ConfigurationFilePath(executionContext)
	require.True(testInstance, found)
	require.Equal(testInstance, testConfigurationFilePathValueConstant, configurationFilePath)
}

func TestLoggerFactoryCreateLoggerOutputs(testInstance *testing.T) {
	loggerFactory := utils.NewLoggerFactory()

	structuredOutputs, structuredError := loggerFactory.CreateLoggerOutputs(utils.LogLevelInfo, utils.LogFormatStructured)
	require.NoError(testInstance, structuredError)
	require.NotNil(testInstance, structuredOutputs.DiagnosticLogger)
	require.Nil(testInstance, structuredOutputs.EventLogger)

	consoleOutputs, consoleError := loggerFactory.CreateLoggerOutputs(utils.LogLevelError, utils.LogFormatConsole)
	require.NoError(testInstance, consoleError)
	require.NotNil(testInstance, consoleOutputs.DiagnosticLogger)
	require.NotNil(testInstance, consoleOutputs.EventLogger)

	_, invalidError := loggerFactory.CreateLoggerOutputs(utils.LogLevel("verbose"), utils.LogFormatConsole)
	require.Error(testInstance, invalidError)
}
