//go:build atomics_emulated || mips || mipsle

package atomics

import (
	"sync"
	"unsafe"
)

const lockStripes = 64

// lockTable spreads emulated words over padded mutexes so unrelated words
// rarely contend.
var lockTable [lockStripes]struct {
	sync.Mutex
	_ [56]byte
}

func lockFor(addr unsafe.Pointer) *sync.Mutex {
	return &lockTable[(uintptr(addr)>>3)%lockStripes].Mutex
}

func lockedCAS[W int32 | int64](addr *W, expected *W, desired W) bool {
	mu := lockFor(unsafe.Pointer(addr))
	mu.Lock()
	defer mu.Unlock()
	if *addr != *expected {
		*expected = *addr
		return false
	}
	*addr = desired
	return true
}

func lockedAdd[W int32 | int64](addr *W, delta W) W {
	mu := lockFor(unsafe.Pointer(addr))
	mu.Lock()
	old := *addr
	*addr = old + delta
	mu.Unlock()
	return old
}

func lockedLoad[W int32 | int64](addr *W) W {
	mu := lockFor(unsafe.Pointer(addr))
	mu.Lock()
	v := *addr
	mu.Unlock()
	return v
}

func lockedStore[W int32 | int64](addr *W, v W) {
	mu := lockFor(unsafe.Pointer(addr))
	mu.Lock()
	*addr = v
	mu.Unlock()
}
