package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"prte/mca/routed"
)

/*
Restore rebuilds the module from the stored plan and lost routes.

IMPORTANT:
- This MUST run before serving lookups
- No events are emitted; peers already saw them before the restart
*/
func (s *RouteService) Restore(ctx context.Context) (bool, error) {
	if s.store == nil {
		return false, nil
	}
	rec, ok, err := s.store.LoadPlan()
	if err != nil {
		return false, fmt.Errorf("load plan: %w", err)
	}
	if !ok {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.Module != s.module.Name() {
		log.Printf("[routed] stored plan was built by %s, restoring into %s", rec.Module, s.module.Name())
	}
	if err := s.module.UpdateRoutingPlan(rec.Plan); err != nil {
		return false, fmt.Errorf("restore plan %d: %w", rec.Generation, err)
	}
	s.seq.Advance(rec.Generation)

	lost, err := s.replayLostLocked(ctx)
	if err != nil {
		return false, err
	}

	log.Printf("[routed] restored plan gen=%d daemons=%d lost=%d", rec.Generation, rec.Plan.NumDaemons, lost)
	return true, nil
}

// replayLostLocked marks every stored lost route on the module.
func (s *RouteService) replayLostLocked(ctx context.Context) (int, error) {
	lost := 0
	err := s.store.ScanLost(func(target routed.ProcName) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.module.RouteLost(target)
		if err != nil && !errors.Is(err, routed.ErrLifelineLost) {
			return fmt.Errorf("restore lost route %s: %w", target, err)
		}
		lost++
		return nil
	})
	return lost, err
}
