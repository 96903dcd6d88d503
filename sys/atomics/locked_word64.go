//go:build !atomics_emulated && (mips || mipsle)

package atomics

// 32-bit mips has no doubleword load-linked/store-conditional.
const (
	HaveCompareExchange64 = false
	HaveMath64            = false
	HaveAdd64             = false
	HaveSub64             = false
)

func cas64(addr *int64, expected *int64, desired int64) bool {
	return lockedCAS(addr, expected, desired)
}
func add64(addr *int64, delta int64) int64 { return lockedAdd(addr, delta) }
func load64(addr *int64) int64             { return lockedLoad(addr) }
func store64(addr *int64, v int64)         { lockedStore(addr, v) }
