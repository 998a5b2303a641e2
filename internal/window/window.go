// Package window provides the fixed-capacity FIFO sample buffers used by the
// player state machine.
package window

import (
	"errors"
	"fmt"
)

// ErrCapacity is returned when a window is constructed with a non-positive capacity.
var ErrCapacity = errors.New("window capacity must be positive")

// Window is a fixed-capacity FIFO buffer. Pushing into a full window evicts
// the oldest sample.
type Window[T any] struct {
	capacity int
	data     []T
}

// New creates an empty window holding at most capacity samples.
func New[T any](capacity int) (*Window[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("new window (capacity %d): %w", capacity, ErrCapacity)
	}
	return &Window[T]{
		capacity: capacity,
		data:     make([]T, 0, capacity),
	}, nil
}

// Push appends a sample, evicting the oldest one when the window is full.
func (w *Window[T]) Push(v T) {
	if len(w.data) >= w.capacity {
		copy(w.data, w.data[1:])
		w.data = w.data[:len(w.data)-1]
	}
	w.data = append(w.data, v)
}

// Fill pushes v until the window is full.
func (w *Window[T]) Fill(v T) {
	for len(w.data) < w.capacity {
		w.data = append(w.data, v)
	}
}

// Snapshot returns a copy of the samples, oldest first.
func (w *Window[T]) Snapshot() []T {
	out := make([]T, len(w.data))
	copy(out, w.data)
	return out
}

// First returns the oldest sample.
func (w *Window[T]) First() (T, bool) {
	var zero T
	if len(w.data) == 0 {
		return zero, false
	}
	return w.data[0], true
}

// Last returns the newest sample.
func (w *Window[T]) Last() (T, bool) {
	var zero T
	if len(w.data) == 0 {
		return zero, false
	}
	return w.data[len(w.data)-1], true
}

// Len returns the number of samples currently held.
func (w *Window[T]) Len() int { return len(w.data) }

// Cap returns the window capacity.
func (w *Window[T]) Cap() int { return w.capacity }

// Full reports whether the window holds capacity samples.
func (w *Window[T]) Full() bool { return len(w.data) >= w.capacity }

// Clone returns an independent copy of the window.
func (w *Window[T]) Clone() *Window[T] {
	data := make([]T, len(w.data), w.capacity)
	copy(data, w.data)
	return &Window[T]{capacity: w.capacity, data: data}
}
