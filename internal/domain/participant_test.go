package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNewParticipant(t *testing.T) {
	p, err := NewParticipant("Alice", RoleHost)
	if err != nil {
		t.Fatalf("new participant: %v", err)
	}
	if p.ID == "" {
		t.Error("no id generated")
	}
	if p.JoinedAt == 0 {
		t.Error("no join timestamp")
	}
	if p.IsMuted || p.IsVideoOff {
		t.Error("intent flags should start cleared")
	}
}

func TestNewParticipantValidation(t *testing.T) {
	cases := []struct {
		name    string
		display string
		role    Role
		wantErr error
	}{
		{"empty name", "", RoleGuest, ErrNameEmpty},
		{"name too long", strings.Repeat("x", MaxNameLen+1), RoleGuest, ErrNameTooLong},
		{"bad role", "Alice", Role("judge"), ErrBadRole},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewParticipant(tc.display, tc.role); !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestParticipantUpdateAppliesOnlySetFields(t *testing.T) {
	p := Participant{ID: "p1", Name: "Alice", Role: RoleHost, JoinedAt: 1000}

	muted := true
	ParticipantUpdate{IsMuted: &muted}.ApplyTo(&p)

	if !p.IsMuted {
		t.Error("IsMuted not applied")
	}
	if p.Name != "Alice" || p.Role != RoleHost || p.JoinedAt != 1000 || p.IsVideoOff {
		t.Errorf("unset fields changed: %+v", p)
	}
}

func TestParticipantUpdateNeverTouchesID(t *testing.T) {
	p := Participant{ID: "p1", Name: "Alice"}
	name := "Bob"
	ParticipantUpdate{Name: &name}.ApplyTo(&p)
	if p.ID != "p1" {
		t.Errorf("id changed to %q", p.ID)
	}
	if p.Name != "Bob" {
		t.Errorf("name = %q, want Bob", p.Name)
	}
}
