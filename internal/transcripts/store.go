// Package transcripts persists finished meeting transcripts and serves the
// REST API over them. Live transcript fragments never pass through here;
// the gateway relays those without storing anything.
package transcripts

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lexbridge/meetsync/internal/domain"
)

var ErrNotFound = errors.New("transcript not found")

type Store interface {
	Create(ctx context.Context, draft domain.TranscriptDraft) (domain.Transcript, error)
	All(ctx context.Context) ([]domain.Transcript, error)
	ByMeeting(ctx context.Context, meetingID string) ([]domain.Transcript, error)
	ByID(ctx context.Context, id string) (domain.Transcript, error)
}

// memStore is the default backend when no database DSN is configured.
// Records live for the process lifetime only.
type memStore struct {
	mu      sync.RWMutex
	records map[string]domain.Transcript
	order   []string
}

func NewMemStore() Store {
	return &memStore{records: make(map[string]domain.Transcript)}
}

func (s *memStore) Create(_ context.Context, draft domain.TranscriptDraft) (domain.Transcript, error) {
	t := domain.Transcript{
		ID:           uuid.NewString(),
		MeetingID:    draft.MeetingID,
		Content:      draft.Content,
		Participants: normalizeParticipants(draft.Participants),
		CreatedAt:    time.Now().UTC(),
	}
	s.mu.Lock()
	s.records[t.ID] = t
	s.order = append(s.order, t.ID)
	s.mu.Unlock()
	return t, nil
}

func (s *memStore) All(_ context.Context) ([]domain.Transcript, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Transcript, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out, nil
}

func (s *memStore) ByMeeting(_ context.Context, meetingID string) ([]domain.Transcript, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Transcript, 0)
	for _, id := range s.order {
		if t := s.records[id]; t.MeetingID == meetingID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memStore) ByID(_ context.Context, id string) (domain.Transcript, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.records[id]
	if !ok {
		return domain.Transcript{}, ErrNotFound
	}
	return t, nil
}

// normalizeParticipants keeps the stored column valid JSON so reads can hand
// it back untouched.
func normalizeParticipants(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || !json.Valid(raw) {
		return json.RawMessage("[]")
	}
	return raw
}
