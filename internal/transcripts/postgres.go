package transcripts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/lexbridge/meetsync/internal/domain"
)

// pgStore keeps transcripts in the transcripts table:
//
//	id           varchar primary key default gen_random_uuid()
//	meeting_id   varchar not null
//	content      text not null
//	participants text not null   -- JSON array as string
//	created_at   timestamptz not null default now()
type pgStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) Store {
	return &pgStore{db: db}
}

func (s *pgStore) Create(ctx context.Context, draft domain.TranscriptDraft) (domain.Transcript, error) {
	t := domain.Transcript{
		MeetingID:    draft.MeetingID,
		Content:      draft.Content,
		Participants: normalizeParticipants(draft.Participants),
	}
	query := `
		INSERT INTO transcripts (meeting_id, content, participants)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := s.db.QueryRow(ctx, query, t.MeetingID, t.Content, string(t.Participants)).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		log.Error().Err(err).Str("module", "transcripts.pg").Msg("insert failed")
		return domain.Transcript{}, fmt.Errorf("create transcript: %w", err)
	}
	return t, nil
}

func (s *pgStore) All(ctx context.Context) ([]domain.Transcript, error) {
	query := `
		SELECT id, meeting_id, content, participants, created_at
		FROM transcripts
		ORDER BY created_at DESC
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	defer rows.Close()
	return scanTranscripts(rows)
}

func (s *pgStore) ByMeeting(ctx context.Context, meetingID string) ([]domain.Transcript, error) {
	query := `
		SELECT id, meeting_id, content, participants, created_at
		FROM transcripts
		WHERE meeting_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.db.Query(ctx, query, meetingID)
	if err != nil {
		return nil, fmt.Errorf("list transcripts for meeting: %w", err)
	}
	defer rows.Close()
	return scanTranscripts(rows)
}

func (s *pgStore) ByID(ctx context.Context, id string) (domain.Transcript, error) {
	query := `
		SELECT id, meeting_id, content, participants, created_at
		FROM transcripts
		WHERE id = $1
	`
	var (
		t            domain.Transcript
		participants string
	)
	err := s.db.QueryRow(ctx, query, id).
		Scan(&t.ID, &t.MeetingID, &t.Content, &participants, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Transcript{}, ErrNotFound
	}
	if err != nil {
		return domain.Transcript{}, fmt.Errorf("get transcript: %w", err)
	}
	t.Participants = normalizeParticipants([]byte(participants))
	return t, nil
}

func scanTranscripts(rows pgx.Rows) ([]domain.Transcript, error) {
	out := make([]domain.Transcript, 0)
	for rows.Next() {
		var (
			t            domain.Transcript
			participants string
		)
		if err := rows.Scan(&t.ID, &t.MeetingID, &t.Content, &participants, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		t.Participants = normalizeParticipants([]byte(participants))
		out = append(out, t)
	}
	return out, rows.Err()
}
