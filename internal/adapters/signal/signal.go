// Package signal bridges a local UI over WebSocket: it accepts room commands
// and streams message, notice and rooms events back.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/bubble/internal/app/orch"
	"github.com/dkeye/bubble/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// Frame is one outbound event.
type Frame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type SignalWSController struct {
	Orch    *orch.Orchestrator
	Hub     *Hub
	Limiter *SendRateLimiter
}

func NewSignalWSController(o *orch.Orchestrator, hub *Hub, limiter *SendRateLimiter) *SignalWSController {
	return &SignalWSController{Orch: o, Hub: hub, Limiter: limiter}
}

type wsSignalConn struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func (c *wsSignalConn) TrySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- data:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsSignalConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
}

// Hub fans UI events out to every connected socket. It is the core.EventSink
// of the web bridge.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*wsSignalConn
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]*wsSignalConn)}
}

func (h *Hub) add(c *wsSignalConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c.id] = c
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, id)
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) broadcast(f Frame) {
	data, err := encodeFrame(f)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("broadcast marshal")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.conns {
		if err := c.TrySend(data); err != nil {
			log.Warn().Err(err).Str("module", "signal").Str("conn", id).Str("type", f.Type).Msg("dropping event")
		}
	}
}

func (h *Hub) OnMessage(m domain.Message) { h.broadcast(Frame{Type: "message", Payload: m}) }
func (h *Hub) OnNotice(n domain.Notice)   { h.broadcast(Frame{Type: "notice", Payload: n}) }

func (h *Hub) OnRooms(rooms []domain.RoomID) {
	h.broadcast(Frame{Type: "rooms", Payload: roomsPayload(rooms)})
}

func roomsPayload(rooms []domain.RoomID) gin.H {
	ids := make([]string, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, string(r))
	}
	return gin.H{"rooms": ids}
}

var upgrader = websocket.Upgrader{
	// The bridge listens on loopback for a local UI only.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &wsSignalConn{
		id:   uuid.NewString(),
		conn: ws,
		send: make(chan []byte, 32),
	}
	log.Info().Str("module", "signal").Str("conn", conn.id).Msg("new WS connection")
	ctl.Hub.add(conn)

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, conn)
	}()
}
