package core

import (
	"fmt"
	"testing"

	"github.com/lexbridge/meetsync/internal/domain"
)

func participant(id, name string) domain.Participant {
	return domain.Participant{
		ID:       domain.ParticipantID(id),
		Name:     name,
		Role:     domain.RoleGuest,
		JoinedAt: 1000,
	}
}

func TestUpsertDistinctIDs(t *testing.T) {
	r := NewRosterRegistry()
	for i := 0; i < 5; i++ {
		r.Upsert("m1", participant(fmt.Sprintf("p%d", i), "n"))
	}
	if got := len(r.Roster("m1")); got != 5 {
		t.Fatalf("roster length = %d, want 5", got)
	}
}

func TestUpsertReplacesInPlace(t *testing.T) {
	r := NewRosterRegistry()
	r.Upsert("m1", participant("p1", "Alice"))
	r.Upsert("m1", participant("p2", "Bob"))

	again := participant("p1", "Alice")
	again.IsMuted = true
	r.Upsert("m1", again)

	roster := r.Roster("m1")
	if len(roster) != 2 {
		t.Fatalf("roster length = %d, want 2", len(roster))
	}
	if roster[0].ID != "p1" || !roster[0].IsMuted {
		t.Errorf("re-join did not replace in place: %+v", roster[0])
	}
	if roster[1].ID != "p2" {
		t.Errorf("re-join disturbed ordering: %+v", roster)
	}
}

func TestApplyUpdateMergesFields(t *testing.T) {
	r := NewRosterRegistry()
	r.Upsert("m1", participant("p1", "Alice"))

	muted := true
	found := r.ApplyUpdate("m1", "p1", domain.ParticipantUpdate{IsMuted: &muted})
	if !found {
		t.Fatal("update reported miss for existing participant")
	}

	got := r.Roster("m1")[0]
	if !got.IsMuted {
		t.Error("IsMuted not applied")
	}
	if got.Name != "Alice" || got.JoinedAt != 1000 {
		t.Errorf("untouched fields changed: %+v", got)
	}
}

func TestApplyUpdateUnknownIsSilentMiss(t *testing.T) {
	r := NewRosterRegistry()
	r.Upsert("m1", participant("p1", "Alice"))

	muted := true
	if r.ApplyUpdate("m1", "ghost", domain.ParticipantUpdate{IsMuted: &muted}) {
		t.Error("update of unknown participant reported found")
	}
	if r.ApplyUpdate("nowhere", "p1", domain.ParticipantUpdate{IsMuted: &muted}) {
		t.Error("update in unknown meeting reported found")
	}
	if got := r.Roster("m1")[0]; got.IsMuted {
		t.Error("silent miss mutated the roster")
	}
}

func TestRemoveExactlyNamed(t *testing.T) {
	r := NewRosterRegistry()
	r.Upsert("m1", participant("p1", "a"))
	r.Upsert("m1", participant("p2", "b"))
	r.Upsert("m1", participant("p3", "c"))

	if !r.Remove("m1", "p2") {
		t.Fatal("remove in known meeting reported unknown")
	}
	roster := r.Roster("m1")
	if len(roster) != 2 || roster[0].ID != "p1" || roster[1].ID != "p3" {
		t.Errorf("remove disturbed other entries: %+v", roster)
	}
}

func TestRemoveUnknownMeeting(t *testing.T) {
	r := NewRosterRegistry()
	if r.Remove("nowhere", "p1") {
		t.Error("remove in unknown meeting reported known")
	}
}

func TestRosterUnknownMeetingIsEmpty(t *testing.T) {
	r := NewRosterRegistry()
	if got := r.Roster("nowhere"); len(got) != 0 {
		t.Errorf("unknown meeting roster = %+v, want empty", got)
	}
}

func TestEmptyRosterIsSteadyState(t *testing.T) {
	r := NewRosterRegistry()
	r.Upsert("m1", participant("p1", "a"))
	r.Remove("m1", "p1")
	if got := r.Roster("m1"); len(got) != 0 {
		t.Fatalf("roster = %+v, want empty", got)
	}
	// The meeting still exists and accepts joins again.
	r.Upsert("m1", participant("p2", "b"))
	if got := r.Roster("m1"); len(got) != 1 {
		t.Fatalf("roster after re-join = %+v, want one entry", got)
	}
}

func TestRosterReturnsCopy(t *testing.T) {
	r := NewRosterRegistry()
	r.Upsert("m1", participant("p1", "Alice"))
	got := r.Roster("m1")
	got[0].Name = "Mallory"
	if r.Roster("m1")[0].Name != "Alice" {
		t.Error("Roster exposed internal state")
	}
}
