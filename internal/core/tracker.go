package core

import (
	"sync"

	"github.com/lexbridge/meetsync/internal/domain"
)

// ConnID identifies one live transport connection. It is distinct from
// participant identity: a connection may subscribe to a meeting's broadcasts
// before any participant record exists (a pure observer).
type ConnID string

// SubscriberTracker records which connections want which meeting's
// broadcasts. It holds only identifiers and never touches connection state.
type SubscriberTracker interface {
	// Subscribe is idempotent.
	Subscribe(meeting domain.MeetingID, conn ConnID)
	// Unsubscribe drops the per-meeting set entirely once it empties. This
	// is subscriber bookkeeping only; the roster for the meeting is
	// untouched.
	Unsubscribe(meeting domain.MeetingID, conn ConnID)
	// Subscribers returns the current set, empty when none.
	Subscribers(meeting domain.MeetingID) []ConnID
}

type subscriberTracker struct {
	mu    sync.RWMutex
	rooms map[domain.MeetingID]map[ConnID]struct{}
}

func NewSubscriberTracker() SubscriberTracker {
	return &subscriberTracker{rooms: make(map[domain.MeetingID]map[ConnID]struct{})}
}

func (t *subscriberTracker) Subscribe(meeting domain.MeetingID, conn ConnID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	set, ok := t.rooms[meeting]
	if !ok {
		set = make(map[ConnID]struct{})
		t.rooms[meeting] = set
	}
	set[conn] = struct{}{}
}

func (t *subscriberTracker) Unsubscribe(meeting domain.MeetingID, conn ConnID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if set, ok := t.rooms[meeting]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(t.rooms, meeting)
		}
	}
}

func (t *subscriberTracker) Subscribers(meeting domain.MeetingID) []ConnID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	set := t.rooms[meeting]
	out := make([]ConnID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
