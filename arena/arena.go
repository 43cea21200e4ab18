// Package arena provides a growable contiguous buffer used as backing
// storage for serialized USB descriptors.
package arena

import "errors"

// ErrNoSpace is returned when an operation would exceed the capacity of a
// fixed-size (zero-increment) arena.
var ErrNoSpace = errors.New("arena: capacity exceeded")

// Arena is a resizable contiguous buffer of a fixed element type.
//
// An arena created with a positive increment grows on demand, rounding the
// requested capacity up to the next multiple of the increment. An arena
// created with increment zero is fixed-capacity after sizing: Append past
// capacity fails with ErrNoSpace, and only an explicit Resize (exact fit)
// changes capacity. Growth reallocates storage, so callers must address
// elements through indices rather than holding slices across appends.
type Arena[T any] struct {
	data      []T
	length    int
	increment int
	empty     T
}

// New creates an arena with the given sentinel value, initial capacity and
// growth increment. The sentinel is returned by Get for out-of-range indices.
func New[T any](empty T, initialSize, incrementBy int) *Arena[T] {
	a := &Arena[T]{increment: incrementBy, empty: empty}
	if initialSize > 0 {
		a.data = make([]T, a.roundUp(initialSize))
	}
	return a
}

// Append inserts v at the logical end, growing storage if the increment
// allows it. A full zero-increment arena returns ErrNoSpace and the length
// is left unchanged.
func (a *Arena[T]) Append(v T) error {
	if a.length >= len(a.data) {
		if a.increment == 0 {
			return ErrNoSpace
		}
		if err := a.grow(a.length + 1); err != nil {
			return err
		}
	}
	a.data[a.length] = v
	a.length++
	return nil
}

// Get returns the element at index i, or the sentinel empty value when i is
// out of range. The sentinel is a valid "absence" signal, not an error.
func (a *Arena[T]) Get(i int) T {
	if i < 0 || i >= a.length {
		return a.empty
	}
	return a.data[i]
}

// Set overwrites the element at index i. Writes beyond the current length
// fail with ErrNoSpace.
func (a *Arena[T]) Set(i int, v T) error {
	if i < 0 || i >= a.length {
		return ErrNoSpace
	}
	a.data[i] = v
	return nil
}

// Len returns the logical length.
func (a *Arena[T]) Len() int { return a.length }

// Cap returns the current capacity.
func (a *Arena[T]) Cap() int { return len(a.data) }

// CheckSize reports whether n elements fit in the current capacity. It never
// mutates the arena; callers use it to pre-flight appends.
func (a *Arena[T]) CheckSize(n int) bool { return n <= len(a.data) }

// Resize grows capacity to hold at least n elements (exact fit when the
// increment is zero). It never shrinks and never discards data.
func (a *Arena[T]) Resize(n int) error { return a.grow(n) }

// Clear resets the logical length to zero without releasing storage.
func (a *Arena[T]) Clear() { a.length = 0 }

// Data exposes the live backing storage up to the logical length. The slice
// is invalidated by the next growth; resolve it again at the point of use.
func (a *Arena[T]) Data() []T { return a.data[:a.length] }

func (a *Arena[T]) roundUp(n int) int {
	if a.increment > 0 {
		return ((n / a.increment) + 1) * a.increment
	}
	return n
}

func (a *Arena[T]) grow(n int) error {
	if n <= len(a.data) {
		return nil
	}
	next := make([]T, a.roundUp(n))
	copy(next, a.data[:a.length])
	a.data = next
	return nil
}
