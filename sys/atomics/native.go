//go:build !atomics_emulated && (386 || amd64 || arm || arm64 || loong64 || mips || mipsle || mips64 || mips64le || ppc64 || ppc64le || riscv64 || s390x || wasm)

package atomics

import "sync/atomic"

// Backend names the implementation selected for this build.
const Backend = "native"

const (
	HaveMemBarrier        = true
	HaveCompareExchange32 = true
	HaveMath32            = true
	HaveAdd32             = true
	HaveSub32             = true
)

var fenceWord uint32

// fence is a sequentially consistent read-modify-write; the Go memory model
// orders every other atomic operation around it.
func fence() {
	atomic.AddUint32(&fenceWord, 0)
}

func cas32(addr *int32, expected *int32, desired int32) bool {
	return casLoop(
		func(old, new int32) bool { return atomic.CompareAndSwapInt32(addr, old, new) },
		func() int32 { return atomic.LoadInt32(addr) },
		expected, desired,
	)
}

func add32(addr *int32, delta int32) int32 {
	return atomic.AddInt32(addr, delta) - delta
}

func load32(addr *int32) int32     { return atomic.LoadInt32(addr) }
func store32(addr *int32, v int32) { atomic.StoreInt32(addr, v) }
