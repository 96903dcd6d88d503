package atomics

// CompareExchangeStrong32 atomically compares *addr with *expected and, if
// they are equal, stores desired and returns true. Otherwise it stores the
// value it observed into *expected and returns false.
func CompareExchangeStrong32(addr *int32, expected *int32, desired int32) bool {
	return cas32(addr, expected, desired)
}

// CompareExchangeStrongAcquire32 is CompareExchangeStrong32 followed by a
// read barrier.
func CompareExchangeStrongAcquire32(addr *int32, expected *int32, desired int32) bool {
	ok := cas32(addr, expected, desired)
	RMB()
	return ok
}

// CompareExchangeStrongRelease32 is a write barrier followed by
// CompareExchangeStrong32.
func CompareExchangeStrongRelease32(addr *int32, expected *int32, desired int32) bool {
	WMB()
	return cas32(addr, expected, desired)
}

// CompareExchangeStrong64 is the 64-bit form of CompareExchangeStrong32.
func CompareExchangeStrong64(addr *int64, expected *int64, desired int64) bool {
	return cas64(addr, expected, desired)
}

// CompareExchangeStrongAcquire64 is CompareExchangeStrong64 followed by a
// read barrier.
func CompareExchangeStrongAcquire64(addr *int64, expected *int64, desired int64) bool {
	ok := cas64(addr, expected, desired)
	RMB()
	return ok
}

// CompareExchangeStrongRelease64 is a write barrier followed by
// CompareExchangeStrong64.
func CompareExchangeStrongRelease64(addr *int64, expected *int64, desired int64) bool {
	WMB()
	return cas64(addr, expected, desired)
}

// FetchAdd32 adds delta to *addr and returns the previous value.
func FetchAdd32(addr *int32, delta int32) int32 {
	return add32(addr, delta)
}

// FetchSub32 subtracts delta from *addr and returns the previous value.
func FetchSub32(addr *int32, delta int32) int32 {
	return add32(addr, -delta)
}

// FetchAdd64 adds delta to *addr and returns the previous value.
func FetchAdd64(addr *int64, delta int64) int64 {
	return add64(addr, delta)
}

// FetchSub64 subtracts delta from *addr and returns the previous value.
func FetchSub64(addr *int64, delta int64) int64 {
	return add64(addr, -delta)
}

func Load32(addr *int32) int32     { return load32(addr) }
func Store32(addr *int32, v int32) { store32(addr, v) }
func Load64(addr *int64) int64     { return load64(addr) }
func Store64(addr *int64, v int64) { store64(addr, v) }

// MB is a full memory barrier.
func MB() { fence() }

// RMB orders loads issued before it against loads issued after it.
func RMB() { fence() }

// WMB orders stores issued before it against stores issued after it.
func WMB() { fence() }

// ISync is an instruction-synchronization barrier. No supported target
// needs one, so it does nothing.
func ISync() {}

// casLoop builds a strong compare-exchange out of a weak swap and a load:
// a failed swap only reports failure once the observed value differs from
// expected, so callers never see a spurious failure.
func casLoop[W int32 | int64](swap func(old, new W) bool, load func() W, expected *W, desired W) bool {
	for {
		if swap(*expected, desired) {
			return true
		}
		if cur := load(); cur != *expected {
			*expected = cur
			return false
		}
	}
}
