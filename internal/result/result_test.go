package result_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitplumb/internal/result"
)

const (
	testSuccessValueConstant   = 42
	testFailureMessageConstant = "probe failed"
)

var errTestFailure = errors.New(testFailureMessageConstant)

func TestResultVariantsAreExclusive(testInstance *testing.T) {
	successful := result.Success(testSuccessValueConstant)
	require.True(testInstance, successful.IsOk())
	require.False(testInstance, successful.IsErr())
	require.Equal(testInstance, testSuccessValueConstant, successful.Unwrap())
	require.Panics(testInstance, func() { successful.UnwrapErr() })

	failed := result.Failure[int](errTestFailure)
	require.True(testInstance, failed.IsErr())
	require.False(testInstance, failed.IsOk())
	require.Same(testInstance, errTestFailure, failed.UnwrapErr())
	require.Panics(testInstance, func() { failed.Unwrap() })
}

func TestPropagateKeepsFailureUnchanged(testInstance *testing.T) {
	type kindedFailure struct{ code int }
	original := &kindedFailure{code: 7}

	child := result.Err[string, *kindedFailure](original)
	parent := result.Propagate[[]int](child)

	require.True(testInstance, parent.IsErr())
	require.Same(testInstance, original, parent.UnwrapErr())
	require.Panics(testInstance, func() { result.Propagate[int](result.Success("ok")) })
}

func TestCombinators(testInstance *testing.T) {
	testCases := []struct {
		name          string
		input         result.Result[string, error]
		expectSuccess bool
		expectedValue int
	}{
		{name: "parses_number", input: result.Success("12"), expectSuccess: true, expectedValue: 13},
		{name: "rejects_text", input: result.Success("twelve"), expectSuccess: false},
		{name: "passes_failure", input: result.Failure[string](errTestFailure), expectSuccess: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			parsed := result.AndThen(testCase.input, func(text string) result.Result[int, error] {
				return result.FromPair(strconv.Atoi(text))
			})
			incremented := result.Map(parsed, func(value int) int { return value + 1 })

			require.Equal(testInstance, testCase.expectSuccess, incremented.IsOk())
			if testCase.expectSuccess {
				require.Equal(testInstance, testCase.expectedValue, incremented.Unwrap())
			}
		})
	}

	failed := result.Map(result.Failure[string](errTestFailure), func(string) int { return 0 })
	require.ErrorIs(testInstance, failed.UnwrapErr(), errTestFailure)
}

func TestToPair(testInstance *testing.T) {
	value, pairError := result.ToPair(result.Success("head"))
	require.NoError(testInstance, pairError)
	require.Equal(testInstance, "head", value)

	value, pairError = result.ToPair(result.Failure[string](errTestFailure))
	require.ErrorIs(testInstance, pairError, errTestFailure)
	require.Empty(testInstance, value)
}
