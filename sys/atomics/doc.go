// Package atomics provides the word-level atomic primitives used by the
// runtime's shared structures: compare-and-exchange, fetch-and-add/sub,
// loads, stores and memory barriers on 32-bit and 64-bit words.
//
// The implementation is selected at build time. The native backend maps
// every family onto the hardware instructions exposed through sync/atomic.
// Building with the atomics_emulated tag routes every family through a
// striped lock table instead. Targets that match neither backend fail to
// compile.
//
// The Have* constants report which families run on hardware instructions
// for the current build. Operations whose flag is false still work, but
// serialize through the lock table.
//
// A word must only be accessed through this package once it is shared;
// mixing these functions with plain sync/atomic calls on the same word is
// not safe under the emulated backend.
//
// On 386, arm and 32-bit mips the caller must keep 64-bit words 8-byte
// aligned, exactly as sync/atomic requires.
package atomics
