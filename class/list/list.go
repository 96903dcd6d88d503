// Package list implements an intrusive, circular, doubly linked list with a
// sentinel node. Payloads embed Item and are linked without any wrapper
// allocation; the list never owns or frees the payloads it links.
//
// Lists are not synchronized. Concurrent mutation of one list needs an
// external lock or a single writer.
//
// Building with the prte_debug tag adds per-item reference counts and
// owning-list back-references, and turns contract violations (double
// insertion, removal from the wrong list, destructing a linked item) into
// *AssertionError panics. Without the tag none of that state or checking
// exists.
package list

import "iter"

// List is a circular list through a sentinel item. The zero value is an
// empty list ready to use. A List must not be copied after first use.
type List[T Linker[T]] struct {
	sentinel Item[T]
	length   int
}

func New[T Linker[T]]() *List[T] {
	return new(List[T]).Init()
}

// Init empties l. Items still linked into l are left untouched.
func (l *List[T]) Init() *List[T] {
	var zero T
	l.sentinel.next = &l.sentinel
	l.sentinel.prev = &l.sentinel
	l.sentinel.owner = zero
	l.sentinel.dbg.markSentinel(&l.sentinel)
	l.length = 0
	return l
}

// Destruct resets l to empty without touching the items it linked.
func (l *List[T]) Destruct() {
	l.Init()
}

func (l *List[T]) lazyInit() {
	if l.sentinel.next == nil {
		l.Init()
	}
}

// Size returns the number of items on l.
func (l *List[T]) Size() int { return l.length }

func (l *List[T]) IsEmpty() bool { return l.length == 0 }

// End returns the sentinel. It is the position after the last item and the
// value Next returns at the tail; it never carries a payload.
func (l *List[T]) End() *Item[T] {
	l.lazyInit()
	return &l.sentinel
}

// FirstItem returns the head item, or End when l is empty.
func (l *List[T]) FirstItem() *Item[T] {
	l.lazyInit()
	return l.sentinel.next
}

// LastItem returns the tail item, or End when l is empty.
func (l *List[T]) LastItem() *Item[T] {
	l.lazyInit()
	return l.sentinel.prev
}

// Front returns the head payload, or the zero T when l is empty.
func (l *List[T]) Front() T { return l.FirstItem().owner }

// Back returns the tail payload, or the zero T when l is empty.
func (l *List[T]) Back() T { return l.LastItem().owner }

// All iterates l from head to tail. The item being visited may be removed
// by the loop body; any other mutation ends with undefined order.
func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		l.lazyInit()
		for it := l.sentinel.next; it != &l.sentinel; {
			next := it.next
			if !yield(it.owner) {
				return
			}
			it = next
		}
	}
}

// Prepend links v at the head of l.
func (l *List[T]) Prepend(v T) {
	l.lazyInit()
	l.link("prepend", &l.sentinel, v)
}

// Append links v at the tail of l.
func (l *List[T]) Append(v T) {
	l.lazyInit()
	l.link("append", l.sentinel.prev, v)
}

// Insert links v in front of the item at index idx and reports whether it
// did. Any idx outside [0, Size()) is rejected and l is left unchanged:
// inserting at Size() is not an append.
func (l *List[T]) Insert(v T, idx int) bool {
	if idx < 0 || idx >= l.length {
		return false
	}
	if idx == 0 {
		l.Prepend(v)
		return true
	}
	ptr := l.sentinel.next
	for i := 0; i < idx-1; i++ {
		ptr = ptr.next
	}
	l.link("insert", ptr, v)
	return true
}

// RemoveFirst unlinks and returns the head payload. ok is false when l is
// empty.
func (l *List[T]) RemoveFirst() (v T, ok bool) {
	if l.length == 0 {
		return v, false
	}
	it := l.sentinel.next
	v = it.owner
	l.unlink("remove_first", it)
	return v, true
}

// RemoveLast unlinks and returns the tail payload. ok is false when l is
// empty.
func (l *List[T]) RemoveLast() (v T, ok bool) {
	if l.length == 0 {
		return v, false
	}
	it := l.sentinel.prev
	v = it.owner
	l.unlink("remove_last", it)
	return v, true
}

// Remove unlinks v, which must be on l, and returns it. v is immediately
// eligible for insertion elsewhere.
func (l *List[T]) Remove(v T) T {
	it := v.ListItem()
	it.dbg.checkOwner("remove", &l.sentinel)
	l.unlink("remove", it)
	return v
}

// Join moves every item of src in front of pos, which must be an item of
// l or l.End(). Order is preserved and src is left empty.
func (l *List[T]) Join(pos *Item[T], src *List[T]) {
	if src.length == 0 {
		return
	}
	checkDistinct("join", &l.sentinel, &src.sentinel)
	pos.dbg.checkOwner("join", &l.sentinel)

	transfer(pos, src.sentinel.next, &src.sentinel)

	l.length += src.length
	src.length = 0
}

// Splice moves the items in [first, last) of src in front of pos, which
// must be an item of l or l.End(). last may be src.End(). The range is
// counted so both lengths stay exact; first == last is a no-op.
func (l *List[T]) Splice(pos *Item[T], src *List[T], first, last *Item[T]) {
	if first == last {
		return
	}
	first.dbg.checkOwner("splice", &src.sentinel)
	pos.dbg.checkOwner("splice", &l.sentinel)

	// last may be src's sentinel, so count before the range is relinked.
	change := 0
	for it := first; it != last; it = it.next {
		change++
	}

	transfer(pos, first, last)

	l.length += change
	src.length -= change
}

func (l *List[T]) link(op string, prev *Item[T], v T) {
	it := v.ListItem()
	it.dbg.linked(op, &l.sentinel)

	next := prev.next
	it.next = next
	it.prev = prev
	next.prev = it
	prev.next = it
	it.owner = v
	it.free = false

	l.length++
}

func (l *List[T]) unlink(op string, it *Item[T]) {
	it.prev.next = it.next
	it.next.prev = it.prev
	dropLinks(op, it)

	l.length--
}

// dropLinks returns it to the unlinked state without touching neighbours.
func dropLinks[T any](op string, it *Item[T]) {
	var zero T
	it.next = nil
	it.prev = nil
	it.owner = zero
	it.free = true
	it.dbg.unlinked(op)
}

// transfer relinks [first, last) in front of pos with four pointer moves on
// each side; the interior of the range is not visited except to update
// debug back-references.
func transfer[T any](pos, first, last *Item[T]) {
	if pos == last {
		return
	}

	// excise [first, last)
	last.prev.next = pos
	first.prev.next = last
	pos.prev.next = first

	// reconnect before pos
	tmp := pos.prev
	pos.prev = last.prev
	last.prev = first.prev
	first.prev = tmp

	if Debug {
		owner := pos.dbg.belongTo()
		for it := first; it != pos; it = it.next {
			it.dbg.moved(owner)
		}
	}
}
