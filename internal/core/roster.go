// Package core holds the in-memory presence state: the per-meeting rosters
// and the per-meeting subscriber sets. Both are owned service objects built
// in main and handed to the gateway; nothing else mutates them.
package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/lexbridge/meetsync/internal/domain"
)

// RosterRegistry is the canonical per-meeting participant roster. Mutations
// by unknown (meeting, participant) pairs are silent no-ops: duplicate and
// racing leave/disconnect events are expected under network churn and must
// not fail.
type RosterRegistry interface {
	// Upsert replaces the participant with the same id in place, or appends.
	// Creates the meeting on first sight. Always succeeds.
	Upsert(meeting domain.MeetingID, p domain.Participant)
	// ApplyUpdate merges the partial fields onto the matching participant.
	// Reports whether the participant was found; a miss changes nothing.
	ApplyUpdate(meeting domain.MeetingID, id domain.ParticipantID, upd domain.ParticipantUpdate) bool
	// Remove drops the matching participant if present. Reports whether the
	// meeting itself was known.
	Remove(meeting domain.MeetingID, id domain.ParticipantID) bool
	// Roster returns a copy of the ordered roster, empty when the meeting is
	// unknown. Never fails.
	Roster(meeting domain.MeetingID) []domain.Participant
}

// rosterRegistry keeps insertion order in a slice per meeting. Meetings are
// created implicitly and never evicted; an empty roster is a valid steady
// state.
type rosterRegistry struct {
	mu    sync.RWMutex
	rooms map[domain.MeetingID][]domain.Participant
}

func NewRosterRegistry() RosterRegistry {
	return &rosterRegistry{rooms: make(map[domain.MeetingID][]domain.Participant)}
}

func (r *rosterRegistry) Upsert(meeting domain.MeetingID, p domain.Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	roster := r.rooms[meeting]
	for i := range roster {
		if roster[i].ID == p.ID {
			roster[i] = p
			log.Debug().Str("module", "core.roster").Str("meeting", string(meeting)).Str("participant", string(p.ID)).Msg("participant replaced")
			return
		}
	}
	r.rooms[meeting] = append(roster, p)
	log.Info().Str("module", "core.roster").Str("meeting", string(meeting)).Str("participant", string(p.ID)).Str("name", p.Name).Msg("participant added")
}

func (r *rosterRegistry) ApplyUpdate(meeting domain.MeetingID, id domain.ParticipantID, upd domain.ParticipantUpdate) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	roster, ok := r.rooms[meeting]
	if !ok {
		return false
	}
	for i := range roster {
		if roster[i].ID == id {
			upd.ApplyTo(&roster[i])
			return true
		}
	}
	return false
}

func (r *rosterRegistry) Remove(meeting domain.MeetingID, id domain.ParticipantID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	roster, ok := r.rooms[meeting]
	if !ok {
		return false
	}
	for i := range roster {
		if roster[i].ID == id {
			r.rooms[meeting] = append(roster[:i], roster[i+1:]...)
			log.Info().Str("module", "core.roster").Str("meeting", string(meeting)).Str("participant", string(id)).Msg("participant removed")
			break
		}
	}
	return true
}

func (r *rosterRegistry) Roster(meeting domain.MeetingID) []domain.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	roster := r.rooms[meeting]
	out := make([]domain.Participant, len(roster))
	copy(out, roster)
	return out
}
