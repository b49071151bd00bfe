// Package client is the presence adapter run by each meeting participant:
// it keeps an optimistic local roster, reconciles it against server-pushed
// snapshots, and replays presence over reconnects.
package client

import (
	"github.com/lexbridge/meetsync/internal/domain"
)

// JoinState tracks the local participant through the join round trip.
type JoinState int

const (
	// StateUnjoined: no local participant record exists.
	StateUnjoined JoinState = iota
	// StateJoinPending: join applied locally and emitted, but no snapshot
	// containing the local id has come back yet.
	StateJoinPending
	// StateJoined: a server snapshot confirmed the local participant.
	StateJoined
)

// Reconciler merges server roster snapshots with the client's own in-flight
// actions. Not safe for concurrent use; the adapter serializes access.
type Reconciler struct {
	state  JoinState
	local  *domain.Participant
	roster []domain.Participant
}

func NewReconciler() *Reconciler {
	return &Reconciler{}
}

func (r *Reconciler) State() JoinState { return r.state }

// Local returns the local participant record, nil before any join.
func (r *Reconciler) Local() *domain.Participant {
	if r.local == nil {
		return nil
	}
	p := *r.local
	return &p
}

func (r *Reconciler) Roster() []domain.Participant {
	out := make([]domain.Participant, len(r.roster))
	copy(out, r.roster)
	return out
}

// Join applies the local participant optimistically, ahead of any server
// acknowledgement (there is none; the next snapshot confirms).
func (r *Reconciler) Join(p domain.Participant) {
	r.local = &p
	r.state = StateJoinPending
	r.roster = upsert(r.roster, p)
}

func (r *Reconciler) Leave() {
	if r.local == nil {
		return
	}
	id := r.local.ID
	out := r.roster[:0]
	for _, p := range r.roster {
		if p.ID != id {
			out = append(out, p)
		}
	}
	r.roster = out
	r.local = nil
	r.state = StateUnjoined
}

// ApplyLocalUpdate mutates the local participant optimistically and mirrors
// it into the roster copy.
func (r *Reconciler) ApplyLocalUpdate(upd domain.ParticipantUpdate) (domain.ParticipantID, bool) {
	if r.local == nil {
		return "", false
	}
	upd.ApplyTo(r.local)
	r.roster = upsert(r.roster, *r.local)
	return r.local.ID, true
}

// ApplySnapshot reconciles a server roster broadcast. The snapshot is
// authoritative once it contains the local id. If the local id is known and
// was present locally but is missing from the snapshot, the local entry is
// kept ahead of the snapshot: the join broadcast may simply not have
// propagated back yet, and dropping it would flicker the local user out of
// their own roster.
func (r *Reconciler) ApplySnapshot(snapshot []domain.Participant) []domain.Participant {
	if r.local == nil {
		r.roster = append([]domain.Participant(nil), snapshot...)
		return r.Roster()
	}

	if contains(snapshot, r.local.ID) {
		r.state = StateJoined
		r.roster = append([]domain.Participant(nil), snapshot...)
		return r.Roster()
	}

	if contains(r.roster, r.local.ID) {
		r.state = StateJoinPending
		merged := make([]domain.Participant, 0, len(snapshot)+1)
		merged = append(merged, *r.local)
		merged = append(merged, snapshot...)
		r.roster = merged
		return r.Roster()
	}

	r.roster = append([]domain.Participant(nil), snapshot...)
	return r.Roster()
}

func contains(roster []domain.Participant, id domain.ParticipantID) bool {
	for _, p := range roster {
		if p.ID == id {
			return true
		}
	}
	return false
}

func upsert(roster []domain.Participant, p domain.Participant) []domain.Participant {
	for i := range roster {
		if roster[i].ID == p.ID {
			roster[i] = p
			return roster
		}
	}
	return append(roster, p)
}
