package core

// RollingWindow keeps the most recent values up to a fixed capacity.
// Adding to a full window overwrites the oldest value.
type RollingWindow[T any] struct {
	buf  []T
	head int
	size int
}

// NewRollingWindow creates a window holding at most capacity values
func NewRollingWindow[T any](capacity int) *RollingWindow[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &RollingWindow[T]{buf: make([]T, capacity)}
}

// Add pushes a value, dropping the oldest one when full
func (w *RollingWindow[T]) Add(value T) {
	idx := (w.head + w.size) % len(w.buf)
	if w.size == len(w.buf) {
		w.buf[w.head] = value
		w.head = (w.head + 1) % len(w.buf)
		return
	}
	w.buf[idx] = value
	w.size++
}

// Get returns the n-th value counted from the oldest one
func (w *RollingWindow[T]) Get(n int) (T, bool) {
	var zero T
	if n < 0 || n >= w.size {
		return zero, false
	}
	return w.buf[(w.head+n)%len(w.buf)], true
}

// Len returns the number of values currently held
func (w *RollingWindow[T]) Len() int { return w.size }

// Cap returns the window capacity
func (w *RollingWindow[T]) Cap() int { return len(w.buf) }

// Slice returns the values ordered from oldest to newest
func (w *RollingWindow[T]) Slice() []T {
	out := make([]T, w.size)
	for i := 0; i < w.size; i++ {
		out[i] = w.buf[(w.head+i)%len(w.buf)]
	}
	return out
}
