package app

import (
	"github.com/rs/zerolog"

	"github.com/dkeye/bubble/internal/core"
	"github.com/dkeye/bubble/internal/domain"
)

// MultiSink fans events out to several UI surfaces.
type MultiSink []core.EventSink

func NewMultiSink(sinks ...core.EventSink) MultiSink {
	out := make(MultiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m MultiSink) OnMessage(msg domain.Message) {
	for _, s := range m {
		s.OnMessage(msg)
	}
}

func (m MultiSink) OnNotice(n domain.Notice) {
	for _, s := range m {
		s.OnNotice(n)
	}
}

func (m MultiSink) OnRooms(rooms []domain.RoomID) {
	for _, s := range m {
		s.OnRooms(rooms)
	}
}

// LogSink records events in the structured log.
type LogSink struct {
	Logger zerolog.Logger
}

func (l LogSink) OnMessage(msg domain.Message) {
	l.Logger.Debug().Str("name", msg.Name).Int("len", len(msg.Message)).Msg("message")
}

func (l LogSink) OnNotice(n domain.Notice) {
	l.Logger.Warn().Str("notice", n.Message).Msg("notice")
}

func (l LogSink) OnRooms(rooms []domain.RoomID) {
	l.Logger.Info().Int("count", len(rooms)).Msg("rooms discovered")
}
