//go:build prte_debug

package list

import (
	"fmt"

	"prte/sys/atomics"
)

// Debug reports whether list contract checks are compiled in.
const Debug = true

type itemDebug[T any] struct {
	refcount int32
	list     *Item[T]
}

func assertf(cond bool, op, format string, args ...any) {
	if !cond {
		panic(&AssertionError{Op: op, Msg: fmt.Sprintf(format, args...)})
	}
}

func (d *itemDebug[T]) reset() {
	atomics.Store32(&d.refcount, 0)
	d.list = nil
}

// sentinel items are never moved between lists, so they carry a fixed
// count and point at themselves.
func (d *itemDebug[T]) markSentinel(s *Item[T]) {
	atomics.Store32(&d.refcount, 1)
	d.list = s
}

func (d *itemDebug[T]) linked(op string, list *Item[T]) {
	assertf(atomics.Load32(&d.refcount) == 0, op, "item is already on a list")
	atomics.FetchAdd32(&d.refcount, 1)
	assertf(atomics.Load32(&d.refcount) == 1, op, "item linked concurrently")
	d.list = list
}

func (d *itemDebug[T]) unlinked(op string) {
	old := atomics.FetchSub32(&d.refcount, 1)
	assertf(old == 1, op, "item refcount was %d, want 1", old)
	d.list = nil
}

func (d *itemDebug[T]) moved(list *Item[T]) {
	d.list = list
}

// belongTo returns the sentinel of the list the item is on.
func (d *itemDebug[T]) belongTo() *Item[T] { return d.list }

func (d *itemDebug[T]) checkOwner(op string, list *Item[T]) {
	assertf(d.list == list, op, "item does not belong to this list")
}

func (d *itemDebug[T]) checkUnlinked() error {
	if atomics.Load32(&d.refcount) != 0 || d.list != nil {
		return ErrItemLinked
	}
	return nil
}

func checkDistinct[T any](op string, a, b *Item[T]) {
	assertf(a != b, op, "source and destination are the same list")
}
