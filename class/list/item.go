package list

// Item is the link structure a payload embeds to become linkable:
//
//	type Job struct {
//		list.Item[*Job]
//		ID uint32
//	}
//
// An item is on at most one list at a time. Its links are owned by that
// list; the payload's storage is owned by the caller.
type Item[T any] struct {
	next  *Item[T]
	prev  *Item[T]
	owner T
	free  bool
	dbg   itemDebug[T]
}

// Linker is satisfied by any payload that embeds Item.
type Linker[T any] interface {
	ListItem() *Item[T]
}

// ListItem returns it; embedding promotes it onto the payload.
func (it *Item[T]) ListItem() *Item[T] { return it }

// Construct resets it to the unlinked state.
func (it *Item[T]) Construct() {
	var zero T
	it.next = nil
	it.prev = nil
	it.owner = zero
	it.free = true
	it.dbg.reset()
}

// Destruct reports ErrItemLinked when a debug build finds it still on a
// list. Release builds do not track membership and always return nil.
func (it *Item[T]) Destruct() error {
	return it.dbg.checkUnlinked()
}

// Next returns the following item. At the tail it returns the list's End.
func (it *Item[T]) Next() *Item[T] { return it.next }

// Prev returns the preceding item. At the head it returns the list's End.
func (it *Item[T]) Prev() *Item[T] { return it.prev }

// Value returns the payload it is embedded in, or the zero T for an
// unlinked item or a list's End.
func (it *Item[T]) Value() T { return it.owner }

// Free reports whether the item is unlinked and available for reuse.
func (it *Item[T]) Free() bool { return it.free || it.next == nil }
