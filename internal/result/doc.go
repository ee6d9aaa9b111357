// Package result provides the two-variant Result container returned by every fallible
// plumbing operation.
//
// Callers inspect results with IsOk or IsErr before choosing Unwrap or UnwrapErr, and return a
// child failure upward unchanged with Propagate. ToPair converts a Result into a (value, error)
// pair at the single boundary where results meet error-returning code.
package result
