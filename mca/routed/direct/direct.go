// Package direct is the simplest routing component: every daemon is
// reached in one hop and the head daemon relays to all others.
package direct

import "prte/mca/routed"

const (
	Name     = "direct"
	Priority = 10
)

type strategy struct{}

func (strategy) NextHop(self, target, numDaemons uint32) uint32 { return target }

func (strategy) Children(self, numDaemons uint32) []uint32 {
	if self != 0 {
		return nil
	}
	out := make([]uint32, 0, numDaemons)
	for v := uint32(1); v < numDaemons; v++ {
		out = append(out, v)
	}
	return out
}

// Strategy returns the direct topology.
func Strategy() routed.Strategy { return strategy{} }

type Component struct{}

func NewComponent() *Component { return &Component{} }

func (*Component) Name() string  { return Name }
func (*Component) Priority() int { return Priority }

func (*Component) Query() (routed.Module, error) {
	return routed.NewStrategyModule(Name, strategy{}), nil
}
