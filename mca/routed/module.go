package routed

import (
	"errors"
	"fmt"
	"log"

	"prte/class/list"
	"prte/sys/atomics"
)

// ErrLifelineLost is returned by RouteLost when the lost route is this
// daemon's path back to the head daemon (vpid 0). The daemon cannot
// continue without it.
var ErrLifelineLost = errors.New("routed: lifeline lost")

// StrategyModule is a Module whose topology comes from a Strategy. Every
// component in this tree returns one.
type StrategyModule struct {
	name     string
	strategy Strategy
	table    *Table
	active   int32
}

func NewStrategyModule(name string, s Strategy) *StrategyModule {
	return &StrategyModule{
		name:     name,
		strategy: s,
		table:    NewTable(),
	}
}

func (m *StrategyModule) Name() string { return m.name }

func (m *StrategyModule) Init() error {
	m.table.Reset()
	atomics.Store32(&m.active, 1)
	return nil
}

func (m *StrategyModule) Finalize() error {
	atomics.Store32(&m.active, 0)
	m.table.Reset()
	return nil
}

func (m *StrategyModule) Plan() (Plan, bool) { return m.table.Plan() }

// Table exposes the module's route table.
func (m *StrategyModule) Table() *Table { return m.table }

func (m *StrategyModule) UpdateRoutingPlan(plan Plan) error {
	if atomics.Load32(&m.active) == 0 {
		return ErrNotInitialized
	}
	if err := plan.Validate(); err != nil {
		return err
	}

	var children []uint32
	for _, vpid := range m.strategy.Children(plan.Self, plan.NumDaemons) {
		if vpid == plan.Self || vpid >= plan.NumDaemons {
			log.Printf("[routed] %s: dropping child %d outside plan of %d daemons", m.name, vpid, plan.NumDaemons)
			continue
		}
		children = append(children, vpid)
	}
	m.table.Rebuild(plan, children)
	return nil
}

func (m *StrategyModule) GetRoute(target ProcName) ProcName {
	if atomics.Load32(&m.active) == 0 {
		return InvalidName
	}
	return m.table.lookup(target, m.strategy)
}

func (m *StrategyModule) RouteIsDefined(target ProcName) bool {
	return m.GetRoute(target) != InvalidName
}

func (m *StrategyModule) RouteIsLost(target ProcName) bool {
	return m.table.IsLost(target)
}

func (m *StrategyModule) RouteLost(route ProcName) error {
	if atomics.Load32(&m.active) == 0 {
		return ErrNotInitialized
	}
	plan, ok := m.table.Plan()
	if !ok {
		return ErrNoPlan
	}
	if route.JobID != plan.JobID {
		// only daemon routes are tracked
		return nil
	}
	if plan.Self != 0 && route.Vpid == m.strategy.NextHop(plan.Self, 0, plan.NumDaemons) {
		m.table.markLostDaemon(route)
		return fmt.Errorf("%w: %s", ErrLifelineLost, route)
	}
	if !m.table.MarkLost(route) {
		return fmt.Errorf("%w: %s", ErrUnknownRoute, route)
	}
	return nil
}

func (m *StrategyModule) RoutingList(dst *list.List[*Route]) {
	m.table.Children(dst)
}

func (m *StrategyModule) NumRoutes() int { return m.table.Len() }
