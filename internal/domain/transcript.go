package domain

import (
	"encoding/json"
	"time"
)

// TranscriptSegment is an ephemeral speech-to-text fragment. The server
// relays it verbatim between peers and stores nothing; the receiving client
// dedups by ID and sorts by Timestamp. IsFinal flips to true once the
// recognizer finalizes the fragment.
type TranscriptSegment struct {
	ID        string `json:"id"`
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
	IsFinal   bool   `json:"isFinal"`
}

// Transcript is a persisted meeting transcript. Participants is kept as raw
// JSON: the API accepts whatever roster shape the client assembled and hands
// it back unchanged.
type Transcript struct {
	ID           string          `json:"id"`
	MeetingID    string          `json:"meetingId"`
	Content      string          `json:"content"`
	Participants json.RawMessage `json:"participants"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// TranscriptDraft is the insert shape, before the store assigns ID and
// CreatedAt.
type TranscriptDraft struct {
	MeetingID    string          `json:"meetingId"`
	Content      string          `json:"content"`
	Participants json.RawMessage `json:"participants"`
}
