package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"prte/class/list"
	"prte/infra/ring"
	"prte/infra/routestore"
	"prte/infra/sequence"
	"prte/mca/routed"
	"prte/sys/atomics"
)

/*
RouteService is the ONLY write entry point into the routing core.

Writers are serialized by mu, which also makes this the single producer
of the event ring. Lookups go straight to the module.
*/
type RouteService struct {
	mu     sync.Mutex
	module routed.Module
	store  *routestore.Store
	events *ring.Ring[routed.Event]
	seq    *sequence.Sequencer

	dropped int64
}

// NewRouteService wires all dependencies. store may be nil for a daemon
// that does not persist its plan.
func NewRouteService(
	module routed.Module,
	store *routestore.Store,
	events *ring.Ring[routed.Event],
	seq *sequence.Sequencer,
) *RouteService {
	return &RouteService{
		module: module,
		store:  store,
		events: events,
		seq:    seq,
	}
}

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// UpdatePlan installs a new routing plan and returns its generation. When
// the plan cannot be persisted the module is put back on the stored plan
// and no generation is consumed.
func (s *RouteService) UpdatePlan(ctx context.Context, plan routed.Plan) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, hadPrev := s.module.Plan()
	if err := s.module.UpdateRoutingPlan(plan); err != nil {
		return 0, fmt.Errorf("update plan: %w", err)
	}
	gen := s.seq.Current() + 1

	if s.store != nil {
		err := s.store.SavePlan(routestore.PlanRecord{
			Generation: gen,
			Module:     s.module.Name(),
			Plan:       plan,
		})
		if err != nil {
			if rerr := s.revertLocked(ctx, prev, hadPrev); rerr != nil {
				log.Printf("[routed] revert after failed save: %v", rerr)
			}
			return 0, fmt.Errorf("persist plan %d: %w", gen, err)
		}
	}
	s.seq.Next()

	s.emit(routed.NewEvent(routed.EventPlanUpdated, gen, s.module.Name(), plan, routed.InvalidName))
	log.Printf("[routed] plan gen=%d module=%s self=%d daemons=%d routes=%d",
		gen, s.module.Name(), plan.Self, plan.NumDaemons, s.module.NumRoutes())
	return gen, nil
}

// revertLocked puts the module back on prev and the lost routes still in
// the store. Without a previous plan the module is reset to empty.
func (s *RouteService) revertLocked(ctx context.Context, prev routed.Plan, hadPrev bool) error {
	if !hadPrev {
		if err := s.module.Finalize(); err != nil {
			return err
		}
		return s.module.Init()
	}
	if err := s.module.UpdateRoutingPlan(prev); err != nil {
		return err
	}
	_, err := s.replayLostLocked(ctx)
	return err
}

// RouteLost records a failed route. A lost lifeline is recorded and then
// reported as routed.ErrLifelineLost. Reporting a route that is already
// lost, or one outside the daemon job, changes nothing.
func (s *RouteService) RouteLost(ctx context.Context, target routed.ProcName) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	known := s.module.RouteIsLost(target)
	lostErr := s.module.RouteLost(target)
	if lostErr != nil && !errors.Is(lostErr, routed.ErrLifelineLost) {
		return lostErr
	}
	plan, _ := s.module.Plan()
	if known || target.JobID != plan.JobID {
		return lostErr
	}

	if s.store != nil {
		if err := s.store.PutLost(target); err != nil {
			return fmt.Errorf("persist lost route %s: %w", target, err)
		}
	}

	s.emit(routed.NewEvent(routed.EventRouteLost, s.seq.Current(), s.module.Name(), plan, target))
	log.Printf("[routed] route lost target=%s remaining=%d", target, s.module.NumRoutes())
	return lostErr
}

func (s *RouteService) emit(ev routed.Event) {
	if !s.events.Enqueue(ev) {
		n := atomics.FetchAdd64(&s.dropped, 1) + 1
		log.Printf("[routed] event ring full, dropped %s event (total dropped %d)", ev.Kind, n)
	}
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

func (s *RouteService) GetRoute(target routed.ProcName) routed.ProcName {
	return s.module.GetRoute(target)
}

// RoutingList returns the daemons this daemon relays to, in vpid order.
func (s *RouteService) RoutingList() []routed.ProcName {
	var children list.List[*routed.Route]
	s.module.RoutingList(&children)

	out := make([]routed.ProcName, 0, children.Size())
	for {
		r, ok := children.RemoveFirst()
		if !ok {
			break
		}
		out = append(out, r.Target)
	}
	return out
}

func (s *RouteService) NumRoutes() int { return s.module.NumRoutes() }

func (s *RouteService) Plan() (routed.Plan, bool) { return s.module.Plan() }

func (s *RouteService) ModuleName() string { return s.module.Name() }

// Generation returns the generation of the current plan.
func (s *RouteService) Generation() uint64 { return s.seq.Current() }

// Dropped returns how many events were discarded because the ring was full.
func (s *RouteService) Dropped() int64 { return atomics.Load64(&s.dropped) }
