//go:build !atomics_emulated && (386 || amd64 || arm || arm64 || loong64 || mips64 || mips64le || ppc64 || ppc64le || riscv64 || s390x || wasm)

package atomics

import "sync/atomic"

const (
	HaveCompareExchange64 = true
	HaveMath64            = true
	HaveAdd64             = true
	HaveSub64             = true
)

func cas64(addr *int64, expected *int64, desired int64) bool {
	return casLoop(
		func(old, new int64) bool { return atomic.CompareAndSwapInt64(addr, old, new) },
		func() int64 { return atomic.LoadInt64(addr) },
		expected, desired,
	)
}

func add64(addr *int64, delta int64) int64 {
	return atomic.AddInt64(addr, delta) - delta
}

func load64(addr *int64) int64     { return atomic.LoadInt64(addr) }
func store64(addr *int64, v int64) { atomic.StoreInt64(addr, v) }
