// Package debruijn registers the de Bruijn graph routing component. The
// graph algorithm is supplied by the caller as a routed.Strategy; without
// one the component declines selection.
package debruijn

import (
	"errors"

	"prte/mca/routed"
)

const (
	Name     = "debruijn"
	Priority = 70
)

var ErrNoStrategy = errors.New("debruijn: no routing strategy installed")

type Component struct {
	strategy routed.Strategy
}

// NewComponent returns the component; s may be nil.
func NewComponent(s routed.Strategy) *Component {
	return &Component{strategy: s}
}

func (*Component) Name() string  { return Name }
func (*Component) Priority() int { return Priority }

func (c *Component) Query() (routed.Module, error) {
	if c.strategy == nil {
		return nil, ErrNoStrategy
	}
	return routed.NewStrategyModule(Name, c.strategy), nil
}
