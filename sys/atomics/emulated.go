//go:build atomics_emulated

package atomics

import "sync"

// Backend names the implementation selected for this build.
const Backend = "emulated"

const (
	HaveMemBarrier        = true
	HaveCompareExchange32 = false
	HaveCompareExchange64 = false
	HaveMath32            = false
	HaveMath64            = false
	HaveAdd32             = false
	HaveSub32             = false
	HaveAdd64             = false
	HaveSub64             = false
)

var (
	fenceLock sync.Mutex
	fenceWord uint64
)

func fence() {
	fenceLock.Lock()
	fenceWord++
	fenceLock.Unlock()
}

func cas32(addr *int32, expected *int32, desired int32) bool {
	return lockedCAS(addr, expected, desired)
}
func add32(addr *int32, delta int32) int32 { return lockedAdd(addr, delta) }
func load32(addr *int32) int32             { return lockedLoad(addr) }
func store32(addr *int32, v int32)         { lockedStore(addr, v) }

func cas64(addr *int64, expected *int64, desired int64) bool {
	return lockedCAS(addr, expected, desired)
}
func add64(addr *int64, delta int64) int64 { return lockedAdd(addr, delta) }
func load64(addr *int64) int64             { return lockedLoad(addr) }
func store64(addr *int64, v int64)         { lockedStore(addr, v) }
