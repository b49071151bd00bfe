package gateway

import (
	"encoding/json"

	"github.com/lexbridge/meetsync/internal/domain"
)

// Wire event names, mirrored inbound/outbound.
const (
	EventJoin            = "join"
	EventUpdate          = "update"
	EventLeave           = "leave"
	EventGetParticipants = "getParticipants"
	EventParticipants    = "participants"      // server -> client(s)
	EventSegment         = "transcriptSegment" // relayed both directions
)

// Envelope frames every message on the socket. Inbound payloads stay raw
// until the handler for the type decodes them; outbound payloads are the
// concrete shapes below.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type JoinPayload struct {
	MeetingID   domain.MeetingID   `json:"meetingId"`
	Participant domain.Participant `json:"participant"`
}

type UpdatePayload struct {
	MeetingID     domain.MeetingID         `json:"meetingId"`
	ParticipantID domain.ParticipantID     `json:"participantId"`
	Updates       domain.ParticipantUpdate `json:"updates"`
}

type LeavePayload struct {
	MeetingID     domain.MeetingID     `json:"meetingId"`
	ParticipantID domain.ParticipantID `json:"participantId"`
}

type GetParticipantsPayload struct {
	MeetingID domain.MeetingID `json:"meetingId"`
}

type SegmentPayload struct {
	MeetingID domain.MeetingID         `json:"meetingId"`
	Segment   domain.TranscriptSegment `json:"segment"`
}

// marshalEvent builds a complete outbound frame. The participants event
// carries the bare roster array as its payload.
func marshalEvent(eventType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: eventType, Payload: raw})
}
