package result

import "fmt"

const (
	unwrapOnFailureTemplateConstant = "result: Unwrap called on a failed result: %v"
	unwrapErrOnSuccessMessage       = "result: UnwrapErr called on a successful result"
	propagateOnSuccessMessage       = "result: Propagate called on a successful result"
)

// Result holds exactly one of a success value of type T or a failure of type E.
//
// The zero Result is not meaningful; construct values with Ok, Err, Success or Failure.
type Result[T any, E any] struct {
	value      T
	failure    E
	successful bool
}

// Ok constructs a successful result carrying value.
func Ok[T any, E any](value T) Result[T, E] {
	return Result[T, E]{value: value, successful: true}
}

// Err constructs a failed result carrying failure.
func Err[T any, E any](failure E) Result[T, E] {
	return Result[T, E]{failure: failure}
}

// Success is Ok specialised to the error failure type used across the plumbing layer.
func Success[T any](value T) Result[T, error] {
	return Ok[T, error](value)
}

// Failure is Err specialised to the error failure type used across the plumbing layer.
func Failure[T any](failure error) Result[T, error] {
	return Err[T, error](failure)
}

// IsOk reports whether the result carries a success value.
func (outcome Result[T, E]) IsOk() bool {
	return outcome.successful
}

// IsErr reports whether the result carries a failure.
func (outcome Result[T, E]) IsErr() bool {
	return !outcome.successful
}

// Unwrap returns the success value. Calling it on a failed result is a programming error and panics.
func (outcome Result[T, E]) Unwrap() T {
	if !outcome.successful {
		panic(fmt.Sprintf(unwrapOnFailureTemplateConstant, outcome.failure))
	}
	return outcome.value
}

// UnwrapErr returns the failure. Calling it on a successful result is a programming error and panics.
func (outcome Result[T, E]) UnwrapErr() E {
	if outcome.successful {
		panic(unwrapErrOnSuccessMessage)
	}
	return outcome.failure
}

// Propagate re-types a failed result so its failure can be returned from a caller with a
// different success type. The failure value is passed through unchanged.
func Propagate[U any, T any, E any](outcome Result[T, E]) Result[U, E] {
	if outcome.successful {
		panic(propagateOnSuccessMessage)
	}
	return Err[U, E](outcome.failure)
}

// Map transforms the success value and passes failures through unchanged.
func Map[T any, U any, E any](outcome Result[T, E], transform func(T) U) Result[U, E] {
	if !outcome.successful {
		return Err[U, E](outcome.failure)
	}
	return Ok[U, E](transform(outcome.value))
}

// AndThen chains a fallible step after a successful result.
func AndThen[T any, U any, E any](outcome Result[T, E], next func(T) Result[U, E]) Result[U, E] {
	if !outcome.successful {
		return Err[U, E](outcome.failure)
	}
	return next(outcome.value)
}

// FromPair converts a conventional (value, error) pair into a Result.
func FromPair[T any](value T, failure error) Result[T, error] {
	if failure != nil {
		return Failure[T](failure)
	}
	return Success(value)
}

// ToPair converts a Result into a conventional (value, error) pair. It is meant for the outer
// boundary where results meet error-returning APIs such as cobra RunE handlers.
func ToPair[T any, E error](outcome Result[T, E]) (T, error) {
	if !outcome.successful {
		var zeroValue T
		return zeroValue, outcome.failure
	}
	return outcome.value, nil
}
