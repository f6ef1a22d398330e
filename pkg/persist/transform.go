package persist

import (
	"time"

	"github.com/petrijr/asyncvalue/pkg/api"
)

// Transform rewrites snapshots on their way to and from a SnapshotStore.
type Transform interface {
	// Inbound runs before a snapshot is saved.
	Inbound(snap api.Snapshot) (api.Snapshot, error)
	// Outbound runs after a snapshot is loaded. Returning false discards it.
	Outbound(snap api.Snapshot) (api.Snapshot, bool, error)
}

// Clock returns the current time.
type Clock func() time.Time

type composite []Transform

// ComposeTransforms chains transforms. Inbound runs them in order and
// Outbound in reverse, stopping at the first discard or error.
func ComposeTransforms(ts ...Transform) Transform {
	out := make(composite, 0, len(ts))
	for _, t := range ts {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

func (c composite) Inbound(snap api.Snapshot) (api.Snapshot, error) {
	var err error
	for _, t := range c {
		if snap, err = t.Inbound(snap); err != nil {
			return snap, err
		}
	}
	return snap, nil
}

func (c composite) Outbound(snap api.Snapshot) (api.Snapshot, bool, error) {
	for i := len(c) - 1; i >= 0; i-- {
		var keep bool
		var err error
		snap, keep, err = c[i].Outbound(snap)
		if err != nil || !keep {
			return snap, false, err
		}
	}
	return snap, true, nil
}

type expireTransform struct {
	ttl   time.Duration
	clock Clock
}

// NewExpireTransform stamps SavedAt on save and discards snapshots older
// than ttl on load. A non-positive ttl never expires; snapshots without a
// SavedAt are always kept. A nil clock uses time.Now.
func NewExpireTransform(ttl time.Duration, clock Clock) Transform {
	if clock == nil {
		clock = time.Now
	}
	return expireTransform{ttl: ttl, clock: clock}
}

func (t expireTransform) Inbound(snap api.Snapshot) (api.Snapshot, error) {
	snap.SavedAt = t.clock().UTC()
	return snap, nil
}

func (t expireTransform) Outbound(snap api.Snapshot) (api.Snapshot, bool, error) {
	if t.ttl <= 0 || snap.SavedAt.IsZero() {
		return snap, true, nil
	}
	return snap, t.clock().Sub(snap.SavedAt) <= t.ttl, nil
}

type versionTransform struct {
	version int
}

// NewVersionTransform stamps Version on save and discards snapshots saved
// under any other version.
func NewVersionTransform(version int) Transform {
	return versionTransform{version: version}
}

func (t versionTransform) Inbound(snap api.Snapshot) (api.Snapshot, error) {
	snap.Version = t.version
	return snap, nil
}

func (t versionTransform) Outbound(snap api.Snapshot) (api.Snapshot, bool, error) {
	return snap, snap.Version == t.version, nil
}
