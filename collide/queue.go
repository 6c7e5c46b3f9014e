package collide

import "sync/atomic"

// spscRing is a fixed-capacity lock-free ring buffer safe for exactly
// one producer goroutine and one consumer goroutine. Cursors grow
// monotonically; the buffer is full when they are capacity apart.
type spscRing[T any] struct {
	buf  []T
	head atomic.Uint64 // consumer cursor
	tail atomic.Uint64 // producer cursor
}

func newSPSCRing[T any](capacity int) *spscRing[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &spscRing[T]{buf: make([]T, capacity)}
}

// Push appends a value from the producer side. Returns false when the
// ring is full; the request is dropped, never blocked on.
func (q *spscRing[T]) Push(v T) bool {
	tail := q.tail.Load()
	if tail-q.head.Load() >= uint64(len(q.buf)) {
		return false
	}
	q.buf[tail%uint64(len(q.buf))] = v
	q.tail.Store(tail + 1)
	return true
}

// Pop removes the oldest value from the consumer side.
func (q *spscRing[T]) Pop() (T, bool) {
	var zero T
	head := q.head.Load()
	if head == q.tail.Load() {
		return zero, false
	}
	v := q.buf[head%uint64(len(q.buf))]
	q.buf[head%uint64(len(q.buf))] = zero
	q.head.Store(head + 1)
	return v, true
}

// Len reports the number of queued entries. Exact only on the consumer
// side; advisory elsewhere.
func (q *spscRing[T]) Len() int {
	return int(q.tail.Load() - q.head.Load())
}
