// Package remote models values that arrive asynchronously from the store.
//
// A Value starts out Loading and becomes Got exactly once per logical
// subscription; every later arrival replaces the held value wholesale.
// Keeping "not yet loaded" distinct from "loaded but empty" at the type
// level avoids a whole class of nil-check bugs in the reconcilers.
//
// There is no error state here. Decode and transport failures travel on a
// separate error channel and simply leave the Value at its last good state.
package remote

// Value is a two-state wrapper: Loading or Got(T).
//
// The zero Value is Loading.
type Value[T any] struct {
	got bool
	v   T
}

// Loading returns a Value that has not yet received data.
func Loading[T any]() Value[T] {
	return Value[T]{}
}

// Got wraps an arrived value.
func Got[T any](v T) Value[T] {
	return Value[T]{got: true, v: v}
}

// Loaded reports whether a value has arrived.
func (r Value[T]) Loaded() bool {
	return r.got
}

// Get returns the held value and whether one has arrived.
func (r Value[T]) Get() (T, bool) {
	return r.v, r.got
}

// OrZero returns the held value, or T's zero value while Loading.
func (r Value[T]) OrZero() T {
	return r.v
}

// Map applies f to the held value, preserving the Loading state.
func Map[T, U any](r Value[T], f func(T) U) Value[U] {
	if !r.got {
		return Loading[U]()
	}
	return Got(f(r.v))
}
