package list

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfResource is returned by SortWith when its allocator cannot
	// supply the working array. The list has already been emptied when it is returned.
	ErrOutOfResource = errors.New("list: out of resource")

	// ErrItemLinked is returned by Item.Destruct in debug builds for an item
	// that is still on a list.
	ErrItemLinked = errors.New("list: item still linked")
)

// AssertionError is the panic value raised when a debug build detects a
// broken list contract such as inserting an item that is already linked.
type AssertionError struct {
	Op  string
	Msg string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("list: %s: %s", e.Op, e.Msg)
}
