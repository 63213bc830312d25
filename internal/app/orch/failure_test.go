package orch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dkeye/bubble/internal/core"
	"github.com/dkeye/bubble/internal/domain"
	"github.com/dkeye/bubble/internal/testkit"
)

func newFakeClient(t *testing.T, fs *fakeSession, sink core.EventSink) *Orchestrator {
	t.Helper()
	o := New(Options{Sink: sink, Open: fs.opener(), Endpoints: []string{"tcp/fake:4222"}, Logger: &nop})
	t.Cleanup(func() { _ = o.Close() })
	return o
}

func TestSendFailureReportedOnce(t *testing.T) {
	fs := &fakeSession{putErr: errors.New("broker gone")}
	sink := testkit.NewSink()
	o := newFakeClient(t, fs, sink)
	enter(t, o, "lobby")

	err := o.SendMessage(context.Background(), "A", "hi")
	if !errors.Is(err, domain.ErrSend) {
		t.Fatalf("expected send error, got %v", err)
	}
	if n := sink.WaitNotice(t, wait); n.Message != domain.ErrorSend.Notice() {
		t.Fatalf("unexpected notice %q", n.Message)
	}
	select {
	case n := <-sink.Notices:
		t.Fatalf("expected a single notice, got another %q", n.Message)
	case <-time.After(100 * time.Millisecond):
	}
	if got := fs.putCount(); got != 1 {
		t.Fatalf("expected one publish attempt, got %d", got)
	}
	if room, state := o.Current(); room != "lobby" || state != StateActive {
		t.Fatalf("send failure must keep the room, got %q %s", room, state)
	}
}

func TestResponderFailureReleasesChannel(t *testing.T) {
	fs := &fakeSession{failQueryable: true}
	sink := testkit.NewSink()
	o := newFakeClient(t, fs, sink)

	err := o.EnterRoom(context.Background(), EnterRequest{Room: "lobby", User: "A"})
	if !errors.Is(err, domain.ErrSubscription) {
		t.Fatalf("expected subscription error, got %v", err)
	}
	if n := sink.WaitNotice(t, wait); n.Message != domain.ErrorSubscription.Notice() {
		t.Fatalf("unexpected notice %q", n.Message)
	}
	if room, state := o.Current(); room != "" || state != StateIdle {
		t.Fatalf("expected idle, got %q %s", room, state)
	}
	if len(fs.subs) != 1 || !fs.subs[0].isClosed() {
		t.Fatalf("subscriber not released")
	}
	if len(fs.pubs) != 1 || !fs.pubs[0].undeclared {
		t.Fatalf("publisher not released")
	}
}

func TestListRoomsOnClosedSession(t *testing.T) {
	fs := &fakeSession{queryErr: core.ErrClosed}
	sink := testkit.NewSink()
	o := newFakeClient(t, fs, sink)

	_, err := o.ListRooms(context.Background())
	if !errors.Is(err, domain.ErrConnection) {
		t.Fatalf("expected connection error, got %v", err)
	}
	if n := sink.WaitNotice(t, wait); n.Message != domain.ErrorConnection.Notice() {
		t.Fatalf("unexpected notice %q", n.Message)
	}
}
