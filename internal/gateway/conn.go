package gateway

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lexbridge/meetsync/internal/core"
	"github.com/lexbridge/meetsync/internal/domain"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// wsConn wraps one websocket with a bounded outbound queue. Sends never
// block the event path: a full queue drops the frame and reports
// ErrBackpressure.
type wsConn struct {
	id   core.ConnID
	sock *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool

	// Session-local state written only by this connection's read loop.
	// Set on join and consumed by the disconnect cleanup; update/leave are
	// fully parameterized by their payloads and never read it.
	joinedMeeting     domain.MeetingID
	joinedParticipant domain.ParticipantID
	subscribed        map[domain.MeetingID]struct{}
}

func newWsConn(sock *websocket.Conn, buffer int) *wsConn {
	return &wsConn{
		id:         core.ConnID(uuid.NewString()),
		sock:       sock,
		send:       make(chan []byte, buffer),
		subscribed: make(map[domain.MeetingID]struct{}),
	}
}

func (c *wsConn) TrySend(frame []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- frame:
		return nil
	default:
		return ErrBackpressure
	}
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.sock.Close()
	c.mu.Unlock()
}

func (c *wsConn) markJoined(meeting domain.MeetingID, participant domain.ParticipantID) {
	c.joinedMeeting = meeting
	c.joinedParticipant = participant
}

func (c *wsConn) markSubscribed(meeting domain.MeetingID) {
	c.subscribed[meeting] = struct{}{}
}

func (c *wsConn) markUnsubscribed(meeting domain.MeetingID) {
	delete(c.subscribed, meeting)
}
