package routed

import (
	"cmp"
	"sync"

	"prte/class/list"
	"prte/class/object"
)

// Table holds a daemon's child routes and the routes it has lost. The
// lists themselves are unsynchronized, so every access goes through mu.
type Table struct {
	mu      sync.RWMutex
	pool    *object.Pool[Route]
	routes  list.List[*Route] // children, ordered by target vpid
	lost    list.List[*Route]
	plan    Plan
	hasPlan bool
}

func NewTable() *Table {
	return &Table{
		pool: object.NewPool(func() *Route { return &Route{} }),
	}
}

// Rebuild replaces the table's contents with one route per child of plan.
func (t *Table) Rebuild(plan Plan, children []uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.releaseLocked()
	for _, vpid := range children {
		r := t.pool.Get()
		r.Target = plan.Daemon(vpid)
		r.NextHop = r.Target
		t.routes.Append(r)
	}
	t.routes.Sort(byTarget)

	t.plan = plan
	t.hasPlan = true
}

// Reset drops every route and the plan.
func (t *Table) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.releaseLocked()
	t.plan = Plan{}
	t.hasPlan = false
}

func (t *Table) releaseLocked() {
	for _, l := range []*list.List[*Route]{&t.routes, &t.lost} {
		for {
			r, ok := l.RemoveFirst()
			if !ok {
				break
			}
			// a route that fails its destructor is still linked somewhere;
			// leave it to the garbage collector rather than recycle it
			_ = t.pool.Put(r)
		}
	}
}

func (t *Table) Plan() (Plan, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.plan, t.hasPlan
}

// Len returns the number of live child routes.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.routes.Size()
}

// MarkLost moves the route to target from the live list to the lost list.
// It reports whether target was a known route; marking a lost route again
// is a no-op.
func (t *Table) MarkLost(target ProcName) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for r := range t.lost.All() {
		if r.Target == target {
			return true
		}
	}
	for r := range t.routes.All() {
		if r.Target == target {
			r.Lost = true
			it := r.ListItem()
			t.lost.Splice(t.lost.End(), &t.routes, it, it.Next())
			return true
		}
	}
	return false
}

// markLostDaemon records a lost route that is not one of the children,
// such as the lifeline to the parent.
func (t *Table) markLostDaemon(target ProcName) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for r := range t.lost.All() {
		if r.Target == target {
			return
		}
	}
	r := t.pool.Get()
	r.Target = target
	r.NextHop = target
	r.Lost = true
	t.lost.Append(r)
}

// IsLost reports whether target is on the lost list.
func (t *Table) IsLost(target ProcName) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for r := range t.lost.All() {
		if r.Target == target {
			return true
		}
	}
	return false
}

// Lost returns the targets of every lost route in the order they were lost.
func (t *Table) Lost() []ProcName {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]ProcName, 0, t.lost.Size())
	for r := range t.lost.All() {
		out = append(out, r.Target)
	}
	return out
}

// Children appends a copy of every live child route to dst. The copies
// belong to the caller.
func (t *Table) Children(dst *list.List[*Route]) {
	t.mu.RLock()
	var batch list.List[*Route]
	for r := range t.routes.All() {
		c := &Route{}
		c.Construct()
		c.Target = r.Target
		c.NextHop = r.NextHop
		batch.Append(c)
	}
	t.mu.RUnlock()

	dst.Join(dst.End(), &batch)
}

// lookup resolves target against the current plan under one read lock.
func (t *Table) lookup(target ProcName, s Strategy) ProcName {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.hasPlan || target == InvalidName {
		return InvalidName
	}
	plan := t.plan
	if target.JobID != plan.JobID || target.Vpid == plan.Self {
		return target
	}
	if target.Vpid >= plan.NumDaemons {
		return InvalidName
	}
	hop := s.NextHop(plan.Self, target.Vpid, plan.NumDaemons)
	if hop >= plan.NumDaemons {
		return InvalidName
	}
	next := plan.Daemon(hop)
	for r := range t.lost.All() {
		if r.Target == next {
			return InvalidName
		}
	}
	return next
}

func byTarget(a, b *Route) int {
	if c := cmp.Compare(a.Target.JobID, b.Target.JobID); c != 0 {
		return c
	}
	return cmp.Compare(a.Target.Vpid, b.Target.Vpid)
}
