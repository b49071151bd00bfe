package client

import (
	"testing"

	"github.com/lexbridge/meetsync/internal/domain"
)

func p(id, name string) domain.Participant {
	return domain.Participant{
		ID:       domain.ParticipantID(id),
		Name:     name,
		Role:     domain.RoleGuest,
		JoinedAt: 1000,
	}
}

func TestJoinIsOptimistic(t *testing.T) {
	r := NewReconciler()
	r.Join(p("local", "Me"))

	if r.State() != StateJoinPending {
		t.Fatalf("state = %v, want join-pending", r.State())
	}
	roster := r.Roster()
	if len(roster) != 1 || roster[0].ID != "local" {
		t.Fatalf("roster = %+v, want local entry", roster)
	}
}

func TestSnapshotConfirmsJoin(t *testing.T) {
	r := NewReconciler()
	r.Join(p("local", "Me"))

	merged := r.ApplySnapshot([]domain.Participant{p("other", "Peer"), p("local", "Me")})

	if r.State() != StateJoined {
		t.Fatalf("state = %v, want joined", r.State())
	}
	if len(merged) != 2 {
		t.Fatalf("merged = %+v, want snapshot verbatim", merged)
	}
	// The snapshot's copy is authoritative, including its position.
	if merged[0].ID != "other" || merged[1].ID != "local" {
		t.Errorf("snapshot order not preserved: %+v", merged)
	}
}

func TestSnapshotMissingLocalKeepsLocalAhead(t *testing.T) {
	r := NewReconciler()
	r.Join(p("local", "Me"))

	// The join broadcast has not propagated back yet; this snapshot was cut
	// before the server saw our join.
	merged := r.ApplySnapshot([]domain.Participant{p("other", "Peer")})

	if len(merged) != 2 {
		t.Fatalf("merged = %+v, want local + snapshot", merged)
	}
	if merged[0].ID != "local" {
		t.Errorf("local entry not prepended: %+v", merged)
	}
	if r.State() != StateJoinPending {
		t.Errorf("state = %v, want still join-pending", r.State())
	}
}

func TestLaterSnapshotWithLocalIsAuthoritative(t *testing.T) {
	r := NewReconciler()
	r.Join(p("local", "Me"))
	r.ApplySnapshot([]domain.Participant{p("other", "Peer")})

	confirmed := p("local", "Me")
	confirmed.IsMuted = true // server-side record wins over the local copy
	merged := r.ApplySnapshot([]domain.Participant{p("other", "Peer"), confirmed})

	if r.State() != StateJoined {
		t.Fatalf("state = %v, want joined", r.State())
	}
	if len(merged) != 2 || !merged[1].IsMuted {
		t.Errorf("merged = %+v, want snapshot copy authoritative", merged)
	}
}

func TestSnapshotWithoutLocalJoinIsPlainReplace(t *testing.T) {
	r := NewReconciler()
	merged := r.ApplySnapshot([]domain.Participant{p("a", "A"), p("b", "B")})
	if len(merged) != 2 {
		t.Fatalf("merged = %+v, want snapshot", merged)
	}
	if r.State() != StateUnjoined {
		t.Errorf("state = %v, want unjoined", r.State())
	}
}

func TestLeaveClearsLocalState(t *testing.T) {
	r := NewReconciler()
	r.Join(p("local", "Me"))
	r.ApplySnapshot([]domain.Participant{p("local", "Me"), p("other", "Peer")})

	r.Leave()

	if r.State() != StateUnjoined {
		t.Fatalf("state = %v, want unjoined", r.State())
	}
	if r.Local() != nil {
		t.Error("local record survived leave")
	}
	for _, entry := range r.Roster() {
		if entry.ID == "local" {
			t.Errorf("local entry survived leave: %+v", r.Roster())
		}
	}
}

func TestLocalUpdateMirroredIntoRoster(t *testing.T) {
	r := NewReconciler()
	r.Join(p("local", "Me"))

	muted := true
	id, ok := r.ApplyLocalUpdate(domain.ParticipantUpdate{IsMuted: &muted})
	if !ok || id != "local" {
		t.Fatalf("update: id=%q ok=%v", id, ok)
	}
	if got := r.Roster()[0]; !got.IsMuted {
		t.Errorf("roster copy not updated: %+v", got)
	}
}

func TestUpdateWithoutJoinIsNoop(t *testing.T) {
	r := NewReconciler()
	muted := true
	if _, ok := r.ApplyLocalUpdate(domain.ParticipantUpdate{IsMuted: &muted}); ok {
		t.Error("update without local participant reported ok")
	}
}
