package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cockroachdb/pebble/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prte/infra/ring"
	"prte/infra/routestore"
	"prte/infra/sequence"
	"prte/mca/routed"
	"prte/mca/routed/direct"
)

const daemonJob = 3

func daemon(v uint32) routed.ProcName { return routed.ProcName{JobID: daemonJob, Vpid: v} }

func newModule(t *testing.T) routed.Module {
	t.Helper()
	m := routed.NewStrategyModule(direct.Name, direct.Strategy())
	require.NoError(t, m.Init())
	return m
}

func newService(t *testing.T, fs vfs.FS, ringSize uint64) (*RouteService, *ring.Ring[routed.Event], *routestore.Store) {
	t.Helper()
	store, err := routestore.Open("routes", &routestore.Options{FS: fs})
	require.NoError(t, err)
	events := ring.New[routed.Event](ringSize)
	return NewRouteService(newModule(t), store, events, sequence.New(0)), events, store
}

func TestUpdatePlanEmitsEventAndPersists(t *testing.T) {
	svc, events, store := newService(t, vfs.NewMem(), 8)
	defer store.Close()

	gen, err := svc.UpdatePlan(context.Background(), routed.Plan{JobID: daemonJob, Self: 0, NumDaemons: 4})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)
	assert.Equal(t, uint64(1), svc.Generation())
	assert.Equal(t, 3, svc.NumRoutes())
	assert.Equal(t, []routed.ProcName{daemon(1), daemon(2), daemon(3)}, svc.RoutingList())

	ev, ok := events.Dequeue()
	require.True(t, ok)
	assert.Equal(t, routed.EventPlanUpdated, ev.Kind)
	assert.Equal(t, gen, ev.Generation)
	assert.Equal(t, direct.Name, ev.Module)

	rec, ok, err := store.LoadPlan()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, gen, rec.Generation)
	assert.Equal(t, uint32(4), rec.Plan.NumDaemons)
}

func TestUpdatePlanRejectsInvalidPlan(t *testing.T) {
	svc, events, store := newService(t, vfs.NewMem(), 8)
	defer store.Close()

	_, err := svc.UpdatePlan(context.Background(), routed.Plan{JobID: daemonJob, Self: 5, NumDaemons: 2})
	require.Error(t, err)
	assert.Equal(t, uint64(0), svc.Generation())
	assert.Equal(t, 0, events.Len())
}

func TestRouteLostRecordsAndEmits(t *testing.T) {
	svc, events, store := newService(t, vfs.NewMem(), 8)
	defer store.Close()
	ctx := context.Background()

	_, err := svc.UpdatePlan(ctx, routed.Plan{JobID: daemonJob, Self: 0, NumDaemons: 4})
	require.NoError(t, err)
	_, _ = events.Dequeue()

	require.NoError(t, svc.RouteLost(ctx, daemon(2)))
	assert.Equal(t, []routed.ProcName{daemon(1), daemon(3)}, svc.RoutingList())
	assert.Equal(t, routed.InvalidName, svc.GetRoute(daemon(2)))

	ev, ok := events.Dequeue()
	require.True(t, ok)
	assert.Equal(t, routed.EventRouteLost, ev.Kind)
	assert.Equal(t, daemon(2), ev.Target)

	var lost []routed.ProcName
	require.NoError(t, store.ScanLost(func(p routed.ProcName) error {
		lost = append(lost, p)
		return nil
	}))
	assert.Equal(t, []routed.ProcName{daemon(2)}, lost)
}

func TestRouteLostUnknownIsNotPersisted(t *testing.T) {
	svc, events, store := newService(t, vfs.NewMem(), 8)
	defer store.Close()
	ctx := context.Background()

	_, err := svc.UpdatePlan(ctx, routed.Plan{JobID: daemonJob, Self: 0, NumDaemons: 2})
	require.NoError(t, err)
	_, _ = events.Dequeue()

	err = svc.RouteLost(ctx, daemon(9))
	require.ErrorIs(t, err, routed.ErrUnknownRoute)
	assert.Equal(t, 0, events.Len())

	n := 0
	require.NoError(t, store.ScanLost(func(routed.ProcName) error { n++; return nil }))
	assert.Zero(t, n)
}

func TestLifelineLossIsRecordedAndReported(t *testing.T) {
	svc, events, store := newService(t, vfs.NewMem(), 8)
	defer store.Close()
	ctx := context.Background()

	_, err := svc.UpdatePlan(ctx, routed.Plan{JobID: daemonJob, Self: 2, NumDaemons: 4})
	require.NoError(t, err)
	_, _ = events.Dequeue()

	err = svc.RouteLost(ctx, daemon(0))
	require.ErrorIs(t, err, routed.ErrLifelineLost)

	ev, ok := events.Dequeue()
	require.True(t, ok)
	assert.Equal(t, routed.EventRouteLost, ev.Kind)
	assert.Equal(t, routed.InvalidName, svc.GetRoute(daemon(0)))
}

func TestFullRingDropsEvents(t *testing.T) {
	svc, events, store := newService(t, vfs.NewMem(), 2)
	defer store.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.UpdatePlan(ctx, routed.Plan{JobID: daemonJob, Self: 0, NumDaemons: 3})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, events.Len())
	assert.Equal(t, int64(1), svc.Dropped())
	assert.Equal(t, uint64(3), svc.Generation())
}

func TestCanceledContext(t *testing.T) {
	svc, _, store := newService(t, vfs.NewMem(), 2)
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.UpdatePlan(ctx, routed.Plan{JobID: daemonJob, NumDaemons: 1})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.ErrorIs(t, svc.RouteLost(ctx, daemon(1)), context.Canceled)
}

func TestRestoreReplaysPlanAndLostRoutes(t *testing.T) {
	fs := vfs.NewMem()
	ctx := context.Background()

	svc, _, store := newService(t, fs, 8)
	_, err := svc.UpdatePlan(ctx, routed.Plan{JobID: daemonJob, Self: 0, NumDaemons: 5})
	require.NoError(t, err)
	_, err = svc.UpdatePlan(ctx, routed.Plan{JobID: daemonJob, Self: 0, NumDaemons: 4})
	require.NoError(t, err)
	require.NoError(t, svc.RouteLost(ctx, daemon(3)))
	require.NoError(t, store.Close())

	restored, events, store := newService(t, fs, 8)
	defer store.Close()

	ok, err := restored.Restore(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, uint64(2), restored.Generation())
	assert.Equal(t, []routed.ProcName{daemon(1), daemon(2)}, restored.RoutingList())
	assert.Equal(t, routed.InvalidName, restored.GetRoute(daemon(3)))
	assert.Equal(t, 0, events.Len())

	gen, err := restored.UpdatePlan(ctx, routed.Plan{JobID: daemonJob, Self: 0, NumDaemons: 4})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), gen)
}

func TestRestoreWithEmptyStore(t *testing.T) {
	svc, _, store := newService(t, vfs.NewMem(), 8)
	defer store.Close()

	ok, err := svc.Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	_, hasPlan := svc.Plan()
	assert.False(t, hasPlan)
}

func TestRestoreWithoutStore(t *testing.T) {
	svc := NewRouteService(newModule(t), nil, ring.New[routed.Event](4), sequence.New(0))
	ok, err := svc.Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.UpdatePlan(context.Background(), routed.Plan{JobID: daemonJob, NumDaemons: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, svc.NumRoutes())
}

// A module name longer than the store's record allows makes every SavePlan
// fail while the module itself accepts the plan.
func newUnsavableService(t *testing.T, store *routestore.Store) (*RouteService, *ring.Ring[routed.Event]) {
	t.Helper()
	m := routed.NewStrategyModule(strings.Repeat("m", 300), direct.Strategy())
	require.NoError(t, m.Init())
	events := ring.New[routed.Event](8)
	return NewRouteService(m, store, events, sequence.New(0)), events
}

func TestFailedSaveLeavesNoPlan(t *testing.T) {
	store, err := routestore.Open("routes", &routestore.Options{FS: vfs.NewMem()})
	require.NoError(t, err)
	defer store.Close()
	svc, events := newUnsavableService(t, store)
	ctx := context.Background()

	_, err = svc.UpdatePlan(ctx, routed.Plan{JobID: daemonJob, Self: 0, NumDaemons: 4})
	require.Error(t, err)

	_, hasPlan := svc.Plan()
	assert.False(t, hasPlan)
	assert.Equal(t, 0, svc.NumRoutes())
	assert.Equal(t, uint64(0), svc.Generation())
	assert.Equal(t, 0, events.Len())
	_, stored, err := store.LoadPlan()
	require.NoError(t, err)
	assert.False(t, stored)

	// the module is still usable
	svc.store = nil
	gen, err := svc.UpdatePlan(ctx, routed.Plan{JobID: daemonJob, Self: 0, NumDaemons: 4})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)
}

func TestFailedSaveKeepsStoredPlan(t *testing.T) {
	store, err := routestore.Open("routes", &routestore.Options{FS: vfs.NewMem()})
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.SavePlan(routestore.PlanRecord{
		Generation: 7,
		Module:     direct.Name,
		Plan:       routed.Plan{JobID: daemonJob, Self: 0, NumDaemons: 4},
	}))
	require.NoError(t, store.PutLost(daemon(2)))

	svc, events := newUnsavableService(t, store)
	ctx := context.Background()
	ok, err := svc.Restore(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.UpdatePlan(ctx, routed.Plan{JobID: daemonJob, Self: 0, NumDaemons: 6})
	require.Error(t, err)

	plan, _ := svc.Plan()
	assert.Equal(t, uint32(4), plan.NumDaemons)
	assert.Equal(t, uint64(7), svc.Generation())
	assert.Equal(t, []routed.ProcName{daemon(1), daemon(3)}, svc.RoutingList())
	assert.Equal(t, routed.InvalidName, svc.GetRoute(daemon(2)))
	assert.Equal(t, 0, events.Len())

	rec, _, err := store.LoadPlan()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), rec.Generation)
}

func TestRouteLostTwiceIsRecordedOnce(t *testing.T) {
	svc, events, store := newService(t, vfs.NewMem(), 8)
	defer store.Close()
	ctx := context.Background()

	_, err := svc.UpdatePlan(ctx, routed.Plan{JobID: daemonJob, Self: 0, NumDaemons: 4})
	require.NoError(t, err)
	_, _ = events.Dequeue()

	require.NoError(t, svc.RouteLost(ctx, daemon(1)))
	require.NoError(t, svc.RouteLost(ctx, daemon(1)))
	assert.Equal(t, 1, events.Len())

	require.NoError(t, svc.RouteLost(ctx, routed.ProcName{JobID: daemonJob + 1, Vpid: 1}))
	assert.Equal(t, 1, events.Len(), "routes outside the daemon job are not recorded")

	var lost []routed.ProcName
	require.NoError(t, store.ScanLost(func(p routed.ProcName) error {
		lost = append(lost, p)
		return nil
	}))
	assert.Equal(t, []routed.ProcName{daemon(1)}, lost)
}

func TestLifelineLostTwiceIsRecordedOnce(t *testing.T) {
	svc, events, store := newService(t, vfs.NewMem(), 8)
	defer store.Close()
	ctx := context.Background()

	_, err := svc.UpdatePlan(ctx, routed.Plan{JobID: daemonJob, Self: 1, NumDaemons: 3})
	require.NoError(t, err)
	_, _ = events.Dequeue()

	require.ErrorIs(t, svc.RouteLost(ctx, daemon(0)), routed.ErrLifelineLost)
	require.ErrorIs(t, svc.RouteLost(ctx, daemon(0)), routed.ErrLifelineLost)
	assert.Equal(t, 1, events.Len())
}

func TestRestoreNeverMovesGenerationBack(t *testing.T) {
	store, err := routestore.Open("routes", &routestore.Options{FS: vfs.NewMem()})
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.SavePlan(routestore.PlanRecord{
		Generation: 2,
		Module:     direct.Name,
		Plan:       routed.Plan{JobID: daemonJob, Self: 0, NumDaemons: 2},
	}))

	svc := NewRouteService(newModule(t), store, ring.New[routed.Event](4), sequence.New(10))
	ok, err := svc.Restore(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(10), svc.Generation())
}
