package gateway

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// dispatch routes one inbound frame. A malformed payload is logged and
// dropped; it never kills the socket and no error goes back to the client.
func (g *Gateway) dispatch(conn *wsConn, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "gateway").Str("conn", string(conn.id)).Msg("bad frame")
		return
	}

	switch env.Type {
	case EventJoin:
		g.handleJoin(conn, env.Payload)
	case EventUpdate:
		g.handleUpdate(conn, env.Payload)
	case EventLeave:
		g.handleLeave(conn, env.Payload)
	case EventGetParticipants:
		g.handleGetParticipants(conn, env.Payload)
	case EventSegment:
		g.handleSegment(conn, env.Payload)
	default:
		log.Debug().Str("module", "gateway").Str("type", env.Type).Msg("unknown event ignored")
	}
}

func (g *Gateway) handleJoin(conn *wsConn, raw json.RawMessage) {
	var p JoinPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Warn().Err(err).Str("module", "gateway").Msg("bad join payload")
		return
	}
	if p.MeetingID == "" || p.Participant.ID == "" {
		log.Warn().Str("module", "gateway").Str("conn", string(conn.id)).Msg("join missing meeting or participant id")
		return
	}

	conn.markJoined(p.MeetingID, p.Participant.ID)
	g.rosters.Upsert(p.MeetingID, p.Participant)
	g.tracker.Subscribe(p.MeetingID, conn.id)
	conn.markSubscribed(p.MeetingID)

	g.broadcastRoster(p.MeetingID)
	log.Info().Str("module", "gateway").Str("meeting", string(p.MeetingID)).Str("participant", string(p.Participant.ID)).Str("name", p.Participant.Name).Msg("join")
}

func (g *Gateway) handleUpdate(conn *wsConn, raw json.RawMessage) {
	var p UpdatePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Warn().Err(err).Str("module", "gateway").Msg("bad update payload")
		return
	}
	// Unknown meeting or participant is a silent miss: no mutation, no
	// broadcast. Racing leaves make this path ordinary, not an error.
	if !g.rosters.ApplyUpdate(p.MeetingID, p.ParticipantID, p.Updates) {
		return
	}
	g.broadcastRoster(p.MeetingID)
}

func (g *Gateway) handleLeave(conn *wsConn, raw json.RawMessage) {
	var p LeavePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Warn().Err(err).Str("module", "gateway").Msg("bad leave payload")
		return
	}
	if g.rosters.Remove(p.MeetingID, p.ParticipantID) {
		g.broadcastRoster(p.MeetingID)
		log.Info().Str("module", "gateway").Str("meeting", string(p.MeetingID)).Str("participant", string(p.ParticipantID)).Msg("leave")
	}
	g.tracker.Unsubscribe(p.MeetingID, conn.id)
	conn.markUnsubscribed(p.MeetingID)
}

func (g *Gateway) handleGetParticipants(conn *wsConn, raw json.RawMessage) {
	var p GetParticipantsPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Warn().Err(err).Str("module", "gateway").Msg("bad getParticipants payload")
		return
	}
	if p.MeetingID == "" {
		return
	}
	// Point query doubles as a subscription: observers get every later
	// roster broadcast without ever joining.
	g.tracker.Subscribe(p.MeetingID, conn.id)
	conn.markSubscribed(p.MeetingID)
	g.sendRoster(conn, p.MeetingID)
}

// handleSegment relays a transcript fragment verbatim to everyone else in
// the meeting. No registry mutation, no persistence, no ordering.
func (g *Gateway) handleSegment(conn *wsConn, raw json.RawMessage) {
	var p SegmentPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Warn().Err(err).Str("module", "gateway").Msg("bad transcriptSegment payload")
		return
	}
	// The relay asserts nothing about the segment itself; whatever the
	// sender supplied goes out verbatim.
	if p.MeetingID == "" {
		return
	}
	frame, err := marshalEvent(EventSegment, p)
	if err != nil {
		log.Error().Err(err).Str("module", "gateway").Msg("marshal segment")
		return
	}
	sent, dropped := g.fanOut(p.MeetingID, frame, conn.id)
	log.Debug().Str("module", "gateway").Str("meeting", string(p.MeetingID)).Str("speaker", p.Segment.Speaker).Int("sent", sent).Int("dropped", dropped).Msg("segment relayed")
}
