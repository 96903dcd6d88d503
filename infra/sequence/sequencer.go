package sequence

import "prte/sys/atomics"

// Sequencer hands out strictly increasing routing-plan generations.
// After a restore, Advance moves it up to the stored generation.
type Sequencer struct {
	// first word keeps 64-bit alignment on 32-bit targets
	next int64
}

// New creates a sequencer whose first Next returns start+1.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	atomics.Store64(&s.next, int64(start))
	return s
}

// Next returns the next generation.
func (s *Sequencer) Next() uint64 {
	return uint64(atomics.FetchAdd64(&s.next, 1) + 1)
}

// Current returns the last issued generation.
func (s *Sequencer) Current() uint64 {
	return uint64(atomics.Load64(&s.next))
}

// Advance moves the sequencer forward to at least v and reports whether it
// moved. Concurrent callers never move it backwards.
func (s *Sequencer) Advance(v uint64) bool {
	cur := atomics.Load64(&s.next)
	for uint64(cur) < v {
		if atomics.CompareExchangeStrongRelease64(&s.next, &cur, int64(v)) {
			return true
		}
	}
	return false
}
