//go:build !prte_debug

package list

// Debug reports whether list contract checks are compiled in.
const Debug = false

type itemDebug[T any] struct{}

func (*itemDebug[T]) reset()                          {}
func (*itemDebug[T]) markSentinel(*Item[T])           {}
func (*itemDebug[T]) linked(string, *Item[T])         {}
func (*itemDebug[T]) unlinked(string)                 {}
func (*itemDebug[T]) moved(*Item[T])                  {}
func (*itemDebug[T]) belongTo() *Item[T]              { return nil }
func (*itemDebug[T]) checkOwner(string, *Item[T])     {}
func (*itemDebug[T]) checkUnlinked() error            { return nil }
func checkDistinct[T any](string, *Item[T], *Item[T]) {}
