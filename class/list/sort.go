package list

import (
	"fmt"
	"slices"
)

// Allocator supplies Sort's working array. It must return a slice with
// capacity for at least n payloads, or an error.
type Allocator[T any] func(n int) ([]T, error)

// Sort reorders l by cmp, which returns a negative number when a sorts
// before b, zero when they tie and a positive number otherwise. Ties keep
// their original order. cmp must be a consistent total order; an
// inconsistent cmp yields an unspecified order but never loses items.
func (l *List[T]) Sort(cmp func(a, b T) int) {
	if l.length == 0 {
		return
	}
	first, n := l.detach()
	l.refill(collect(first, n, make([]T, 0, n)), cmp)
}

// SortWith is Sort with a caller-supplied working array. Every item is
// unlinked from l before alloc is called. If alloc fails, or returns too
// little room, the items stay unlinked, l is left empty and the returned
// error wraps ErrOutOfResource. Callers own recovery of those items. A nil
// alloc behaves like Sort.
func (l *List[T]) SortWith(alloc Allocator[T], cmp func(a, b T) int) error {
	if alloc == nil {
		l.Sort(cmp)
		return nil
	}
	if l.length == 0 {
		return nil
	}
	first, n := l.detach()

	items, err := alloc(n)
	if err == nil && cap(items) < n {
		err = fmt.Errorf("allocator returned room for %d of %d items", cap(items), n)
	}
	if err != nil {
		collect(first, n, nil)
		return fmt.Errorf("%w: sort of %d items: %v", ErrOutOfResource, n, err)
	}

	l.refill(collect(first, n, items[:0]), cmp)
	return nil
}

// detach empties l in one step and returns the old head and length. The
// chain stays linked until collect walks it.
func (l *List[T]) detach() (*Item[T], int) {
	first, n := l.sentinel.next, l.length
	l.Init()
	return first, n
}

// collect unlinks n items starting at it and appends their payloads to
// dst. A nil dst only unlinks.
func collect[T any](it *Item[T], n int, dst []T) []T {
	for i := 0; i < n; i++ {
		next := it.next
		v := it.owner
		dropLinks("sort", it)
		if dst != nil {
			dst = append(dst, v)
		}
		it = next
	}
	return dst
}

func (l *List[T]) refill(items []T, cmp func(a, b T) int) {
	slices.SortStableFunc(items, cmp)
	for _, v := range items {
		l.Append(v)
	}
}
