package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/bubble/internal/domain"
)

// messageMsg is a chat line stamped with its arrival time.
type messageMsg struct {
	domain.Message
	at time.Time
}

type noticeMsg domain.Notice

type roomsMsg []domain.RoomID

type closedMsg struct{}

// Sink queues controller events for the terminal program. It never blocks;
// events past the buffer are dropped.
type Sink struct {
	events chan tea.Msg
}

func NewSink(buffer int) *Sink {
	if buffer <= 0 {
		buffer = 128
	}
	return &Sink{events: make(chan tea.Msg, buffer)}
}

func (s *Sink) OnMessage(m domain.Message) {
	s.push(messageMsg{Message: m, at: time.Now()})
}

func (s *Sink) OnNotice(n domain.Notice)      { s.push(noticeMsg(n)) }
func (s *Sink) OnRooms(rooms []domain.RoomID) { s.push(roomsMsg(rooms)) }

func (s *Sink) push(msg tea.Msg) {
	select {
	case s.events <- msg:
	default:
		log.Warn().Str("module", "tui").Msg("event dropped, ui is behind")
	}
}

func waitEvent(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return ev
	}
}
