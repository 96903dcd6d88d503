//go:build !atomics_emulated && !386 && !amd64 && !arm && !arm64 && !loong64 && !mips && !mipsle && !mips64 && !mips64le && !ppc64 && !ppc64le && !riscv64 && !s390x && !wasm

package atomics

// No backend matches this target. Rebuild with -tags atomics_emulated to
// accept the lock-based implementation.
var _ = atomicsBackendMissingForTarget
