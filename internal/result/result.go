package result

import "fmt"

// Result holds either a success value or an error, never both.
// It is the return type of every data access and auth operation:
// expected failures (not found, duplicate, bad credentials) travel
// as values instead of panics.
type Result[T any] struct {
	value T
	err   error
}

// Ok returns a successful result holding value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Err returns a failed result. Panics on nil err: a failure without
// an error is a bug at the call site, not a recoverable condition.
func Err[T any](err error) Result[T] {
	if err == nil {
		panic("result: Err called with nil error")
	}
	return Result[T]{err: err}
}

// Wrap adapts the conventional (value, error) pair.
func Wrap[T any](value T, err error) Result[T] {
	if err != nil {
		return Err[T](err)
	}
	return Ok(value)
}

func (r Result[T]) IsOk() bool {
	return r.err == nil
}

func (r Result[T]) IsErr() bool {
	return r.err != nil
}

// Value returns the success value.
// Reading the value of a failed result is a programming error, so it panics.
func (r Result[T]) Value() T {
	if r.err != nil {
		panic(fmt.Sprintf("result: Value called on failed result: %v", r.err))
	}
	return r.value
}

// Err returns the failure, or nil for a successful result.
func (r Result[T]) Err() error {
	return r.err
}

// Unpack converts back to the conventional (value, error) pair.
func (r Result[T]) Unpack() (T, error) {
	return r.value, r.err
}

// ValueOr returns the success value or fallback if the result failed.
func (r Result[T]) ValueOr(fallback T) T {
	if r.err != nil {
		return fallback
	}
	return r.value
}

// Map applies fn to the success value. A failed result passes through
// untouched, so chained calls short-circuit on the first failure.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if r.err != nil {
		return Err[U](r.err)
	}
	return Ok(fn(r.value))
}

// Then chains a fallible operation after r.
// fn runs only if r succeeded; otherwise the failure propagates as is.
func Then[T, U any](r Result[T], fn func(T) Result[U]) Result[U] {
	if r.err != nil {
		return Err[U](r.err)
	}
	return fn(r.value)
}
