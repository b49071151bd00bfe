// Package gateway is the persistent-connection server binding inbound client
// events to roster/tracker mutations and outbound broadcasts. One Gateway
// serves all connections and all meetings.
package gateway

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/lexbridge/meetsync/internal/core"
	"github.com/lexbridge/meetsync/internal/domain"
)

type Options struct {
	ReadLimit  int64
	PingPeriod time.Duration
	SendBuffer int
}

func (o *Options) fill() {
	if o.ReadLimit <= 0 {
		o.ReadLimit = 32 << 10
	}
	if o.PingPeriod <= 0 {
		o.PingPeriod = 54 * time.Second
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 32
	}
}

type Gateway struct {
	rosters  core.RosterRegistry
	tracker  core.SubscriberTracker
	upgrader websocket.Upgrader
	opts     Options

	mu    sync.RWMutex
	conns map[core.ConnID]*wsConn
}

func New(rosters core.RosterRegistry, tracker core.SubscriberTracker, opts Options) *Gateway {
	opts.fill()
	return &Gateway{
		rosters: rosters,
		tracker: tracker,
		opts:    opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		conns: make(map[core.ConnID]*wsConn),
	}
}

// HandleSocket upgrades the request and runs the connection until it drops.
// Any prior join is cleaned up on the way out, graceful or not.
func (g *Gateway) HandleSocket(c *gin.Context) {
	sock, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("module", "gateway").Msg("ws upgrade failed")
		return
	}

	conn := newWsConn(sock, g.opts.SendBuffer)
	g.mu.Lock()
	g.conns[conn.id] = conn
	g.mu.Unlock()

	log.Info().Str("module", "gateway").Str("conn", string(conn.id)).Str("client", c.GetString("client_token")).Msg("connected")

	go g.writePump(conn)
	g.readPump(conn)

	g.mu.Lock()
	delete(g.conns, conn.id)
	g.mu.Unlock()
	g.cleanup(conn)
	conn.Close()

	log.Info().Str("module", "gateway").Str("conn", string(conn.id)).Msg("disconnected")
}

func (g *Gateway) readPump(conn *wsConn) {
	conn.sock.SetReadLimit(g.opts.ReadLimit)
	for {
		_, data, err := conn.sock.ReadMessage()
		if err != nil {
			return
		}
		g.dispatch(conn, data)
	}
}

func (g *Gateway) writePump(conn *wsConn) {
	ticker := time.NewTicker(g.opts.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-conn.send:
			if !ok {
				return
			}
			_ = conn.sock.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.sock.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Warn().Err(err).Str("module", "gateway").Str("conn", string(conn.id)).Msg("write failed")
				return
			}
		case <-ticker.C:
			_ = conn.sock.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		}
	}
}

// cleanup runs once after the read loop exits. Roster removal happens only
// when the connection had joined as a participant; bare observers just drop
// their subscriptions.
func (g *Gateway) cleanup(conn *wsConn) {
	for meeting := range conn.subscribed {
		g.tracker.Unsubscribe(meeting, conn.id)
	}
	if conn.joinedMeeting == "" || conn.joinedParticipant == "" {
		return
	}
	if g.rosters.Remove(conn.joinedMeeting, conn.joinedParticipant) {
		g.broadcastRoster(conn.joinedMeeting)
	}
}

// broadcastRoster pushes the full current roster to every subscriber of the
// meeting. Fire-and-forget: a slow consumer drops the frame rather than
// stalling the event path.
func (g *Gateway) broadcastRoster(meeting domain.MeetingID) {
	frame, err := marshalEvent(EventParticipants, g.rosters.Roster(meeting))
	if err != nil {
		log.Error().Err(err).Str("module", "gateway").Msg("marshal roster")
		return
	}
	sent, dropped := g.fanOut(meeting, frame, "")
	log.Debug().Str("module", "gateway").Str("meeting", string(meeting)).Int("sent", sent).Int("dropped", dropped).Msg("roster broadcast")
}

func (g *Gateway) fanOut(meeting domain.MeetingID, frame []byte, exclude core.ConnID) (sent, dropped int) {
	for _, id := range g.tracker.Subscribers(meeting) {
		if id == exclude {
			continue
		}
		g.mu.RLock()
		conn, ok := g.conns[id]
		g.mu.RUnlock()
		if !ok {
			continue
		}
		if err := conn.TrySend(frame); err != nil {
			dropped++
			continue
		}
		sent++
	}
	return sent, dropped
}

func (g *Gateway) sendRoster(conn *wsConn, meeting domain.MeetingID) {
	frame, err := marshalEvent(EventParticipants, g.rosters.Roster(meeting))
	if err != nil {
		log.Error().Err(err).Str("module", "gateway").Msg("marshal roster")
		return
	}
	if err := conn.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "gateway").Str("conn", string(conn.id)).Msg("roster send dropped")
	}
}
