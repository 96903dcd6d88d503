// Package routed is the routing framework of the runtime: the contract a
// routing component and its module must satisfy, a registry to select one,
// and the list-backed route table the modules share.
//
// A module is not internally synchronized beyond its route table lock.
// Callers that rebuild the topology while lookups are in flight get
// lookups against either the old or the new plan, never a mix.
package routed

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"prte/class/list"
)

var (
	ErrNoPlan         = errors.New("routed: no routing plan")
	ErrInvalidPlan    = errors.New("routed: invalid routing plan")
	ErrUnknownRoute   = errors.New("routed: unknown route")
	ErrNoComponent    = errors.New("routed: no usable component")
	ErrDuplicateName  = errors.New("routed: component already registered")
	ErrNotInitialized = errors.New("routed: module not initialized")
)

// ProcName identifies a process: the job it belongs to and its rank
// (vpid) inside that job.
type ProcName struct {
	JobID uint32
	Vpid  uint32
}

// InvalidName is returned when no route exists.
var InvalidName = ProcName{JobID: math.MaxUint32, Vpid: math.MaxUint32}

func (p ProcName) String() string {
	if p == InvalidName {
		return "[INVALID]"
	}
	return fmt.Sprintf("[%d,%d]", p.JobID, p.Vpid)
}

// Plan describes the daemon topology a module routes over.
type Plan struct {
	JobID      uint32 // daemon job
	Self       uint32 // this daemon's vpid
	NumDaemons uint32
}

func (p Plan) Validate() error {
	if p.NumDaemons == 0 {
		return fmt.Errorf("%w: no daemons", ErrInvalidPlan)
	}
	if p.Self >= p.NumDaemons {
		return fmt.Errorf("%w: self %d outside %d daemons", ErrInvalidPlan, p.Self, p.NumDaemons)
	}
	return nil
}

// Daemon names the daemon with the given vpid in p's job.
func (p Plan) Daemon(vpid uint32) ProcName {
	return ProcName{JobID: p.JobID, Vpid: vpid}
}

// Route is one entry of a route table: the daemon to send to (NextHop) to
// reach Target.
type Route struct {
	list.Item[*Route]

	Target  ProcName
	NextHop ProcName
	Lost    bool
}

func (r *Route) Construct() {
	r.Item.Construct()
	r.Target = InvalidName
	r.NextHop = InvalidName
	r.Lost = false
}

// Strategy computes the shape of a routing topology. Implementations are
// pure functions of their arguments.
type Strategy interface {
	// NextHop returns the daemon self must send to on the way to target.
	NextHop(self, target, numDaemons uint32) uint32
	// Children returns the daemons self relays to directly.
	Children(self, numDaemons uint32) []uint32
}

// Module is the routing behaviour selected for a daemon.
type Module interface {
	Name() string
	Init() error
	Finalize() error
	// GetRoute returns the next hop towards target, or InvalidName.
	GetRoute(target ProcName) ProcName
	// RouteLost records that the connection to route has failed.
	RouteLost(route ProcName) error
	RouteIsDefined(target ProcName) bool
	// RouteIsLost reports whether RouteLost already recorded target.
	RouteIsLost(target ProcName) bool
	UpdateRoutingPlan(plan Plan) error
	// RoutingList appends this daemon's children to dst.
	RoutingList(dst *list.List[*Route])
	NumRoutes() int
	Plan() (Plan, bool)
}

// Component is the registration half of a routing module.
type Component interface {
	Name() string
	// Priority orders components during selection; higher wins.
	Priority() int
	// Query returns a module, or an error when the component cannot run.
	Query() (Module, error)
}

type EventKind uint8

const (
	EventPlanUpdated EventKind = iota + 1
	EventRouteLost
)

func (k EventKind) String() string {
	switch k {
	case EventPlanUpdated:
		return "PLAN_UPDATED"
	case EventRouteLost:
		return "ROUTE_LOST"
	default:
		return "UNKNOWN"
	}
}

// Event is a routing change published to the rest of the cluster.
type Event struct {
	ID         string    `json:"id"`
	Kind       EventKind `json:"kind"`
	Generation uint64    `json:"generation"`
	Module     string    `json:"module"`
	Plan       Plan      `json:"plan"`
	Target     ProcName  `json:"target"`
	Time       time.Time `json:"time"`
}

func NewEvent(kind EventKind, generation uint64, module string, plan Plan, target ProcName) Event {
	return Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		Generation: generation,
		Module:     module,
		Plan:       plan,
		Target:     target,
		Time:       time.Now().UTC(),
	}
}
