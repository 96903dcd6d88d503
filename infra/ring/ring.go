// Package ring provides the lock-free single-producer/single-consumer ring
// that carries routing events from the writer to the broadcaster.
package ring

import (
	"fmt"

	"prte/sys/atomics"
)

// Ring is an SPSC ring buffer. Exactly one goroutine may Enqueue and
// exactly one may Dequeue.
type Ring[T any] struct {
	// head and tail sit on separate cache lines
	head  int64
	_pad1 [56]byte
	tail  int64
	_pad2 [56]byte

	buf  []T
	mask int64
}

// New allocates a ring; size must be a power of two.
func New[T any](size uint64) *Ring[T] {
	if size == 0 || size&(size-1) != 0 {
		panic("ring size must be power of two")
	}
	return &Ring[T]{
		buf:  make([]T, size),
		mask: int64(size - 1),
	}
}

// Enqueue adds v; returns false if the ring is full.
func (r *Ring[T]) Enqueue(v T) bool {
	h := r.head
	t := atomics.Load64(&r.tail)
	if h-t == int64(len(r.buf)) {
		return false
	}
	r.buf[h&r.mask] = v
	// publish the slot before the new head
	atomics.WMB()
	atomics.Store64(&r.head, h+1)
	return true
}

// Dequeue removes the oldest element; ok is false if the ring is empty.
func (r *Ring[T]) Dequeue() (v T, ok bool) {
	t := r.tail
	h := atomics.Load64(&r.head)
	if t == h {
		return v, false
	}
	atomics.RMB()
	var zero T
	v = r.buf[t&r.mask]
	r.buf[t&r.mask] = zero
	atomics.Store64(&r.tail, t+1)
	return v, true
}

func (r *Ring[T]) Len() int { return int(atomics.Load64(&r.head) - atomics.Load64(&r.tail)) }
func (r *Ring[T]) Cap() int { return len(r.buf) }

func (r *Ring[T]) String() string {
	return fmt.Sprintf("Ring{len=%d, cap=%d, head=%d, tail=%d}",
		r.Len(), r.Cap(), atomics.Load64(&r.head), atomics.Load64(&r.tail))
}
