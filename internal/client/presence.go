package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/lexbridge/meetsync/internal/domain"
	"github.com/lexbridge/meetsync/internal/gateway"
)

var ErrRetriesExhausted = errors.New("reconnect retries exhausted")

type Options struct {
	URL       string // ws endpoint, e.g. ws://host:8080/ws/meetings
	MeetingID domain.MeetingID

	// Reconnect policy: bounded retries with exponentially growing delay
	// capped at MaxDelay. The attempt counter resets on a successful dial.
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration

	OnRoster       func([]domain.Participant)
	OnSegment      func(domain.TranscriptSegment)
	OnConnectivity func(connected bool)
}

func (o *Options) fill() {
	if o.MaxRetries <= 0 {
		o.MaxRetries = 5
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = 500 * time.Millisecond
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 8 * time.Second
	}
}

// Adapter owns one connection to the session gateway for one meeting. All
// user actions apply optimistically to local state first, then go out as
// events; there is no round-trip acknowledgement to wait for.
type Adapter struct {
	opts   Options
	dialer *websocket.Dialer

	mu        sync.Mutex
	conn      *websocket.Conn
	rec       *Reconciler
	segments  *SegmentLog
	connected bool
}

func New(opts Options) *Adapter {
	opts.fill()
	return &Adapter{
		opts:     opts,
		dialer:   websocket.DefaultDialer,
		rec:      NewReconciler(),
		segments: NewSegmentLog(),
	}
}

// Run dials the gateway and keeps the connection alive until ctx is done or
// the retry budget runs out. It blocks; run it on its own goroutine.
func (a *Adapter) Run(ctx context.Context) error {
	attempts := 0
	for {
		conn, _, err := a.dialer.DialContext(ctx, a.opts.URL, nil)
		if err != nil {
			attempts++
			if attempts > a.opts.MaxRetries {
				a.setConnected(false)
				return fmt.Errorf("%w: %v", ErrRetriesExhausted, err)
			}
			delay := a.backoff(attempts)
			log.Warn().Err(err).Str("module", "client").Int("attempt", attempts).Dur("retry_in", delay).Msg("dial failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				continue
			}
		}
		attempts = 0

		a.mu.Lock()
		a.conn = conn
		a.mu.Unlock()
		a.setConnected(true)
		a.resync()

		a.readLoop(ctx, conn)

		a.mu.Lock()
		a.conn = nil
		a.mu.Unlock()
		a.setConnected(false)
		_ = conn.Close()

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// resync re-establishes server-side state after a (re)connect: subscribe to
// the meeting's broadcasts, and if a local participant record exists,
// re-join with it. The server keeps nothing across a dropped connection.
func (a *Adapter) resync() {
	a.emit(gateway.EventGetParticipants, gateway.GetParticipantsPayload{MeetingID: a.opts.MeetingID})
	if local := a.reconcilerLocal(); local != nil {
		a.emit(gateway.EventJoin, gateway.JoinPayload{MeetingID: a.opts.MeetingID, Participant: *local})
	}
}

// Join creates the local participant, applies it optimistically and emits
// the join event. The returned record carries the client-generated id.
func (a *Adapter) Join(name string, role domain.Role) (*domain.Participant, error) {
	p, err := domain.NewParticipant(name, role)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.rec.Join(*p)
	roster := a.rec.Roster()
	a.mu.Unlock()

	a.notifyRoster(roster)
	a.emit(gateway.EventJoin, gateway.JoinPayload{MeetingID: a.opts.MeetingID, Participant: *p})
	return p, nil
}

func (a *Adapter) Leave() {
	a.mu.Lock()
	local := a.rec.Local()
	a.rec.Leave()
	roster := a.rec.Roster()
	a.mu.Unlock()
	if local == nil {
		return
	}

	a.notifyRoster(roster)
	a.emit(gateway.EventLeave, gateway.LeavePayload{MeetingID: a.opts.MeetingID, ParticipantID: local.ID})
}

func (a *Adapter) SetMuted(muted bool) {
	a.update(domain.ParticipantUpdate{IsMuted: &muted})
}

func (a *Adapter) SetVideoOff(videoOff bool) {
	a.update(domain.ParticipantUpdate{IsVideoOff: &videoOff})
}

func (a *Adapter) update(upd domain.ParticipantUpdate) {
	a.mu.Lock()
	id, ok := a.rec.ApplyLocalUpdate(upd)
	roster := a.rec.Roster()
	a.mu.Unlock()
	if !ok {
		return
	}

	a.notifyRoster(roster)
	a.emit(gateway.EventUpdate, gateway.UpdatePayload{
		MeetingID:     a.opts.MeetingID,
		ParticipantID: id,
		Updates:       upd,
	})
}

// PublishSegment records the local speech fragment and relays it to the rest
// of the meeting. The relay never echoes it back to this connection.
func (a *Adapter) PublishSegment(seg domain.TranscriptSegment) {
	a.segments.Add(seg)
	a.emit(gateway.EventSegment, gateway.SegmentPayload{MeetingID: a.opts.MeetingID, Segment: seg})
}

func (a *Adapter) Roster() []domain.Participant {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rec.Roster()
}

func (a *Adapter) Segments() []domain.TranscriptSegment {
	return a.segments.Segments()
}

func (a *Adapter) JoinState() JoinState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rec.State()
}

func (a *Adapter) Connected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.connected
}

func (a *Adapter) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Warn().Err(err).Str("module", "client").Msg("read failed, connection lost")
			return
		}
		a.handleFrame(data)
	}
}

func (a *Adapter) handleFrame(data []byte) {
	var env gateway.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "client").Msg("bad frame")
		return
	}

	switch env.Type {
	case gateway.EventParticipants:
		var snapshot []domain.Participant
		if err := json.Unmarshal(env.Payload, &snapshot); err != nil {
			log.Warn().Err(err).Str("module", "client").Msg("bad participants payload")
			return
		}
		a.mu.Lock()
		merged := a.rec.ApplySnapshot(snapshot)
		a.mu.Unlock()
		a.notifyRoster(merged)
	case gateway.EventSegment:
		var p gateway.SegmentPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			log.Warn().Err(err).Str("module", "client").Msg("bad segment payload")
			return
		}
		if a.segments.Add(p.Segment) && a.opts.OnSegment != nil {
			a.opts.OnSegment(p.Segment)
		}
	default:
		log.Debug().Str("module", "client").Str("type", env.Type).Msg("unknown event ignored")
	}
}

// emit is fire-and-forget: with no live connection the event is dropped and
// the next resync repairs server-side state.
func (a *Adapter) emit(eventType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("module", "client").Str("type", eventType).Msg("marshal event")
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.conn == nil {
		return
	}
	_ = a.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := a.conn.WriteJSON(gateway.Envelope{Type: eventType, Payload: raw}); err != nil {
		log.Warn().Err(err).Str("module", "client").Str("type", eventType).Msg("emit failed")
	}
}

func (a *Adapter) reconcilerLocal() *domain.Participant {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rec.Local()
}

func (a *Adapter) setConnected(connected bool) {
	a.mu.Lock()
	changed := a.connected != connected
	a.connected = connected
	a.mu.Unlock()
	if changed && a.opts.OnConnectivity != nil {
		a.opts.OnConnectivity(connected)
	}
}

func (a *Adapter) notifyRoster(roster []domain.Participant) {
	if a.opts.OnRoster != nil {
		a.opts.OnRoster(roster)
	}
}

func (a *Adapter) backoff(attempt int) time.Duration {
	delay := a.opts.BaseDelay << (attempt - 1)
	if delay > a.opts.MaxDelay || delay <= 0 {
		delay = a.opts.MaxDelay
	}
	return delay
}
