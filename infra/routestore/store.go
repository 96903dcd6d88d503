// Package routestore persists the routing plan and lost routes so a
// restarted daemon comes back with the topology it had.
package routestore

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"prte/mca/routed"
)

var ErrCorrupt = errors.New("routestore: corrupt record")

var (
	planKey    = []byte("plan")
	lostPrefix = []byte("lost/")
	lostUpper  = []byte("lost/~")
)

// -------------------- Records --------------------

// PlanRecord is the stored routing plan.
type PlanRecord struct {
	Generation uint64
	Module     string
	Plan       routed.Plan
	Updated    int64
}

// binary encoding: [gen:8][updated:8][job:4][self:4][daemons:4][nameLen:1][name][crc:4]
func encodePlan(r PlanRecord) []byte {
	n := 29 + len(r.Module)
	buf := make([]byte, n+4)
	binary.BigEndian.PutUint64(buf[0:8], r.Generation)
	binary.BigEndian.PutUint64(buf[8:16], uint64(r.Updated))
	binary.BigEndian.PutUint32(buf[16:20], r.Plan.JobID)
	binary.BigEndian.PutUint32(buf[20:24], r.Plan.Self)
	binary.BigEndian.PutUint32(buf[24:28], r.Plan.NumDaemons)
	buf[28] = byte(len(r.Module))
	copy(buf[29:n], r.Module)
	binary.BigEndian.PutUint32(buf[n:], crc32.ChecksumIEEE(buf[:n]))
	return buf
}

func decodePlan(b []byte) (PlanRecord, error) {
	if len(b) < 33 || len(b) != 33+int(b[28]) {
		return PlanRecord{}, fmt.Errorf("%w: plan length %d", ErrCorrupt, len(b))
	}
	n := len(b) - 4
	if crc32.ChecksumIEEE(b[:n]) != binary.BigEndian.Uint32(b[n:]) {
		return PlanRecord{}, fmt.Errorf("%w: plan checksum mismatch", ErrCorrupt)
	}
	return PlanRecord{
		Generation: binary.BigEndian.Uint64(b[0:8]),
		Updated:    int64(binary.BigEndian.Uint64(b[8:16])),
		Plan: routed.Plan{
			JobID:      binary.BigEndian.Uint32(b[16:20]),
			Self:       binary.BigEndian.Uint32(b[20:24]),
			NumDaemons: binary.BigEndian.Uint32(b[24:28]),
		},
		Module: string(b[29:n]),
	}, nil
}

// -------------------- Store --------------------

type Store struct {
	db *pebble.DB
}

type Options struct {
	// FS overrides the filesystem; nil means the OS filesystem.
	FS vfs.FS
}

func Open(dir string, opts *Options) (*Store, error) {
	po := &pebble.Options{}
	if opts != nil && opts.FS != nil {
		po.FS = opts.FS
	}
	db, err := pebble.Open(dir, po)
	if err != nil {
		return nil, fmt.Errorf("routestore: open %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SavePlan stores rec and forgets every lost route of the previous plan.
func (s *Store) SavePlan(rec PlanRecord) error {
	if len(rec.Module) > 255 {
		return fmt.Errorf("routestore: module name %q too long", rec.Module)
	}
	if rec.Updated == 0 {
		rec.Updated = time.Now().UnixNano()
	}

	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Set(planKey, encodePlan(rec), nil); err != nil {
		return err
	}
	if err := b.DeleteRange(lostPrefix, lostUpper, nil); err != nil {
		return err
	}
	return b.Commit(pebble.Sync)
}

// LoadPlan returns the stored plan; ok is false when none was saved.
func (s *Store) LoadPlan() (rec PlanRecord, ok bool, err error) {
	val, closer, err := s.db.Get(planKey)
	if errors.Is(err, pebble.ErrNotFound) {
		return PlanRecord{}, false, nil
	}
	if err != nil {
		return PlanRecord{}, false, err
	}
	defer closer.Close()

	rec, err = decodePlan(val)
	if err != nil {
		return PlanRecord{}, false, err
	}
	return rec, true, nil
}

// PutLost records that the route to target is gone.
func (s *Store) PutLost(target routed.ProcName) error {
	var val [8]byte
	binary.BigEndian.PutUint64(val[:], uint64(time.Now().UnixNano()))
	return s.db.Set(lostKey(target), val[:], pebble.Sync)
}

// ScanLost visits every stored lost route.
func (s *Store) ScanLost(fn func(target routed.ProcName) error) error {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: lostPrefix,
		UpperBound: lostUpper,
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		target, err := parseLostKey(iter.Key())
		if err != nil {
			return err
		}
		if err := fn(target); err != nil {
			return err
		}
	}
	return iter.Error()
}

// -------------------- Helpers --------------------

func lostKey(p routed.ProcName) []byte {
	return []byte(fmt.Sprintf("lost/%010d/%010d", p.JobID, p.Vpid))
}

func parseLostKey(b []byte) (routed.ProcName, error) {
	var p routed.ProcName
	_, err := fmt.Sscanf(string(bytes.TrimPrefix(b, lostPrefix)), "%d/%d", &p.JobID, &p.Vpid)
	if err != nil {
		return p, fmt.Errorf("%w: key %q: %v", ErrCorrupt, b, err)
	}
	return p, nil
}
