package testkit

import (
	"testing"
	"time"

	"github.com/dkeye/bubble/internal/domain"
)

// Sink records UI events on buffered channels.
type Sink struct {
	Messages chan domain.Message
	Notices  chan domain.Notice
	Rooms    chan []domain.RoomID
}

func NewSink() *Sink {
	return &Sink{
		Messages: make(chan domain.Message, 64),
		Notices:  make(chan domain.Notice, 64),
		Rooms:    make(chan []domain.RoomID, 16),
	}
}

func (s *Sink) OnMessage(m domain.Message)     { s.Messages <- m }
func (s *Sink) OnNotice(n domain.Notice)       { s.Notices <- n }
func (s *Sink) OnRooms(rooms []domain.RoomID) { s.Rooms <- rooms }

// WaitMessage fails the test if no message arrives within d.
func (s *Sink) WaitMessage(tb testing.TB, d time.Duration) domain.Message {
	tb.Helper()
	select {
	case m := <-s.Messages:
		return m
	case <-time.After(d):
		tb.Fatalf("no message within %s", d)
		return domain.Message{}
	}
}

// WaitNotice fails the test if no notice arrives within d.
func (s *Sink) WaitNotice(tb testing.TB, d time.Duration) domain.Notice {
	tb.Helper()
	select {
	case n := <-s.Notices:
		return n
	case <-time.After(d):
		tb.Fatalf("no notice within %s", d)
		return domain.Notice{}
	}
}

// NoMessage fails the test if a message arrives within d.
func (s *Sink) NoMessage(tb testing.TB, d time.Duration) {
	tb.Helper()
	select {
	case m := <-s.Messages:
		tb.Fatalf("unexpected message %+v", m)
	case <-time.After(d):
	}
}
