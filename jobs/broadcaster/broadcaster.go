package broadcaster

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"prte/infra/ring"
	"prte/mca/routed"
	"prte/sys/atomics"
)

// Publisher delivers one encoded event to the cluster bus.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
	Close() error
}

// Broadcaster is the single consumer of the routing event ring. Events
// are published in ring order; a failed publish is retried on the next
// tick before anything newer goes out.
type Broadcaster struct {
	ring     *ring.Ring[routed.Event]
	pub      Publisher
	interval time.Duration

	pending   *routed.Event
	published int64
}

// ------------------------------------------------
// CONSTRUCTOR
// ------------------------------------------------

func New(r *ring.Ring[routed.Event], pub Publisher, interval time.Duration) *Broadcaster {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &Broadcaster{
		ring:     r,
		pub:      pub,
		interval: interval,
	}
}

// ------------------------------------------------
// LOOP
// ------------------------------------------------

// Run drains the ring every interval until ctx is cancelled.
func (b *Broadcaster) Run(ctx context.Context) {
	log.Println("[broadcaster] started")

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[broadcaster] stopped after %d events", b.Published())
			return

		case <-ticker.C:
			if _, err := b.Flush(ctx); err != nil {
				log.Printf("[broadcaster] publish failed, will retry: %v", err)
			}
		}
	}
}

// Flush publishes everything currently queued and returns how many
// events went out.
func (b *Broadcaster) Flush(ctx context.Context) (int, error) {
	sent := 0
	for {
		if b.pending == nil {
			ev, ok := b.ring.Dequeue()
			if !ok {
				return sent, nil
			}
			b.pending = &ev
		}

		if err := b.publish(ctx, b.pending); err != nil {
			return sent, err
		}
		b.pending = nil
		atomics.FetchAdd64(&b.published, 1)
		sent++
	}
}

func (b *Broadcaster) publish(ctx context.Context, ev *routed.Event) error {
	val, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", ev.ID, err)
	}
	return b.pub.Publish(ctx, eventKey(ev), val)
}

// Published returns the number of events delivered so far.
func (b *Broadcaster) Published() int64 {
	return atomics.Load64(&b.published)
}

// ------------------------------------------------
// SHUTDOWN
// ------------------------------------------------

func (b *Broadcaster) Close() error {
	return b.pub.Close()
}

// Events of one daemon share a key so they stay ordered in one partition.
func eventKey(ev *routed.Event) []byte {
	return []byte(fmt.Sprintf("%d/%d", ev.Plan.JobID, ev.Plan.Self))
}
