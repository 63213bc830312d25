package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/bubble/internal/app/orch"
	"github.com/dkeye/bubble/internal/domain"
)

func encodeFrame(f Frame) ([]byte, error) {
	return json.Marshal(f)
}

func (ctl *SignalWSController) writePump(ctx context.Context, c *wsSignalConn) {
	defer c.Close()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("conn", c.id).Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, c *wsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", c.id).Msg("readPump closing")
		ctl.Hub.remove(c.id)
		if ctl.Limiter != nil {
			ctl.Limiter.Forget(c.id)
		}
		c.Close()
	}()

	for {
		if ctx.Err() != nil {
			return
		}
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error().Err(err).Str("module", "signal").Str("conn", c.id).Msg("readPump read error")
			}
			return
		}
		ctl.handleSignal(ctx, c, data)
	}
}

type command struct {
	Type    string   `json:"type"`
	Room    string   `json:"room,omitempty"`
	Name    string   `json:"name,omitempty"`
	Message string   `json:"message,omitempty"`
	Servers []string `json:"servers,omitempty"`
}

type result struct {
	Command string `json:"command"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

func (ctl *SignalWSController) handleSignal(ctx context.Context, c *wsSignalConn, data []byte) {
	var cmd command
	if err := json.Unmarshal(data, &cmd); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad json")
		ctl.reply(c, cmd.Type, domain.NewError(domain.ErrorInvalidArgument, "bad json"))
		return
	}

	switch cmd.Type {
	case "enter_room":
		err := ctl.Orch.EnterRoom(ctx, orch.EnterRequest{Room: cmd.Room, Endpoints: cmd.Servers, User: cmd.Name})
		ctl.reply(c, cmd.Type, err)
	case "send_message":
		if ctl.Limiter != nil && !ctl.Limiter.Allow(c.id) {
			ctl.reply(c, cmd.Type, domain.NewError(domain.ErrorSend, "rate limited"))
			return
		}
		ctl.reply(c, cmd.Type, ctl.Orch.SendMessage(ctx, cmd.Name, cmd.Message))
	case "list_rooms", "hello":
		// Rooms reach every socket through the hub.
		_, err := ctl.Orch.ListRooms(ctx)
		ctl.reply(c, cmd.Type, err)
	case "leave_room":
		ctl.reply(c, cmd.Type, ctl.Orch.LeaveRoom(ctx))
	case "ping":
		ctl.send(c, Frame{Type: "pong"})
	default:
		log.Warn().Str("module", "signal").Str("type", cmd.Type).Msg("unknown signal")
		ctl.reply(c, cmd.Type, domain.NewError(domain.ErrorInvalidArgument, "unknown command"))
	}
}

func (ctl *SignalWSController) reply(c *wsSignalConn, cmdType string, err error) {
	res := result{Command: cmdType, OK: err == nil}
	if err != nil {
		res.Error = domain.CodeOf(err).String()
	}
	ctl.send(c, Frame{Type: "result", Payload: res})
}

func (ctl *SignalWSController) send(c *wsSignalConn, f Frame) {
	b, err := encodeFrame(f)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("send marshal")
		return
	}
	_ = c.TrySend(b)
}
