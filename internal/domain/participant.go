// Package domain contains the entities of the meeting core, just meta-data
// and construction rules. No transport or storage logic here.
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const MaxNameLen = 64

var (
	ErrNameEmpty   = errors.New("display name empty")
	ErrNameTooLong = errors.New("display name too long")
	ErrBadRole     = errors.New("unknown role")
)

type (
	MeetingID     string
	ParticipantID string
)

type Role string

const (
	RoleHost   Role = "host"
	RoleExpert Role = "expert"
	RoleGuest  Role = "guest"
)

func (r Role) Valid() bool {
	switch r {
	case RoleHost, RoleExpert, RoleGuest:
		return true
	}
	return false
}

// Participant is one human presence inside one meeting. IsMuted and
// IsVideoOff are local-intent flags set by the owning client, not measured
// device state. JoinedAt is epoch milliseconds.
type Participant struct {
	ID         ParticipantID `json:"id"`
	Name       string        `json:"name"`
	Role       Role          `json:"role"`
	IsMuted    bool          `json:"isMuted"`
	IsVideoOff bool          `json:"isVideoOff"`
	JoinedAt   int64         `json:"joinedAt"`
}

// NewParticipant mints a fresh presence record. The id is per joined
// session, not per user account; re-joining from a new tab yields a new id.
func NewParticipant(name string, role Role) (*Participant, error) {
	if name == "" {
		return nil, ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	if !role.Valid() {
		return nil, ErrBadRole
	}
	return &Participant{
		ID:       ParticipantID(uuid.NewString()),
		Name:     name,
		Role:     role,
		JoinedAt: time.Now().UnixMilli(),
	}, nil
}

// ParticipantUpdate is a partial overlay. Nil fields are left untouched,
// mirroring how the wire payload omits them. The id itself is never
// rewritten, it is the lookup key.
type ParticipantUpdate struct {
	Name       *string `json:"name,omitempty"`
	Role       *Role   `json:"role,omitempty"`
	IsMuted    *bool   `json:"isMuted,omitempty"`
	IsVideoOff *bool   `json:"isVideoOff,omitempty"`
	JoinedAt   *int64  `json:"joinedAt,omitempty"`
}

func (u ParticipantUpdate) ApplyTo(p *Participant) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Role != nil {
		p.Role = *u.Role
	}
	if u.IsMuted != nil {
		p.IsMuted = *u.IsMuted
	}
	if u.IsVideoOff != nil {
		p.IsVideoOff = *u.IsVideoOff
	}
	if u.JoinedAt != nil {
		p.JoinedAt = *u.JoinedAt
	}
}
