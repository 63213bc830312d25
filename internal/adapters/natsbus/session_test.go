package natsbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dkeye/bubble/internal/core"
	"github.com/dkeye/bubble/internal/domain"
	"github.com/dkeye/bubble/internal/testkit"
)

func openTest(t *testing.T, endpoints ...string) *Session {
	t.Helper()
	s, err := Open(context.Background(), endpoints, DefaultOptions())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenSkipsInvalidEndpoints(t *testing.T) {
	b := testkit.StartBroker(t)
	s := openTest(t, "garbage", b.Endpoint(), "udp/1.2.3.4:7447")
	if eps := s.Endpoints(); len(eps) != 1 {
		t.Fatalf("expected only the valid endpoint, got %v", eps)
	}
}

func TestOpenOnlyInvalidEndpoints(t *testing.T) {
	_, err := Open(context.Background(), []string{"garbage", "tcp/nohost"}, DefaultOptions())
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestOpenUnreachable(t *testing.T) {
	opts := DefaultOptions()
	opts.ConnectTimeout = 500 * time.Millisecond
	_, err := Open(context.Background(), []string{"tcp/127.0.0.1:1"}, opts)
	if !errors.Is(err, domain.ErrConnection) {
		t.Fatalf("expected connection error, got %v", err)
	}
}

func TestPublishSubscribe(t *testing.T) {
	b := testkit.StartBroker(t)
	a := openTest(t, b.Endpoint())
	c := openTest(t, b.URL())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub, err := c.DeclareSubscriber(ctx, "bubble/message/lobby")
	if err != nil {
		t.Fatalf("declare subscriber: %v", err)
	}
	defer sub.Undeclare()
	pub, err := a.DeclarePublisher(ctx, "bubble/message/lobby")
	if err != nil {
		t.Fatalf("declare publisher: %v", err)
	}
	if err := pub.Put(ctx, []byte("one")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := pub.Put(ctx, []byte("two")); err != nil {
		t.Fatalf("put: %v", err)
	}
	for _, want := range []string{"one", "two"} {
		sample, err := sub.Recv(ctx)
		if err != nil {
			t.Fatalf("recv: %v", err)
		}
		if string(sample.Payload) != want || sample.Topic != "bubble/message/lobby" {
			t.Fatalf("unexpected sample %+v", sample)
		}
	}

	if err := pub.Undeclare(); err != nil {
		t.Fatalf("undeclare: %v", err)
	}
	if err := pub.Put(ctx, []byte("three")); !errors.Is(err, core.ErrClosed) {
		t.Fatalf("expected closed publisher, got %v", err)
	}
}

func TestQueryGathersReplies(t *testing.T) {
	b := testkit.StartBroker(t)
	responder := openTest(t, b.Endpoint())
	asker := openTest(t, b.Endpoint())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	q, err := responder.DeclareQueryable(ctx, domain.PresenceTopic)
	if err != nil {
		t.Fatalf("declare queryable: %v", err)
	}
	defer q.Undeclare()
	go func() {
		query, err := q.Recv(ctx)
		if err != nil {
			return
		}
		_ = query.Reply(ctx, []byte("lobby"))
	}()

	replies, err := asker.Query(ctx, domain.PresenceTopic, nil)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer replies.Close()
	got, err := replies.Recv(ctx)
	if err != nil {
		t.Fatalf("recv reply: %v", err)
	}
	if string(got) != "lobby" {
		t.Fatalf("unexpected reply %q", got)
	}
}

func TestQueryWithoutResponders(t *testing.T) {
	b := testkit.StartBroker(t)
	s := openTest(t, b.Endpoint())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	replies, err := s.Query(ctx, domain.PresenceTopic, nil)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer replies.Close()
	if _, err := replies.Recv(ctx); !errors.Is(err, core.ErrClosed) {
		t.Fatalf("expected closed replies, got %v", err)
	}
}

func TestRecvAfterClose(t *testing.T) {
	b := testkit.StartBroker(t)
	s := openTest(t, b.Endpoint())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sub, err := s.DeclareSubscriber(ctx, "bubble/message/x")
	if err != nil {
		t.Fatalf("declare subscriber: %v", err)
	}
	if err := sub.Undeclare(); err != nil {
		t.Fatalf("undeclare: %v", err)
	}
	if err := sub.Undeclare(); err != nil {
		t.Fatalf("second undeclare: %v", err)
	}
	if _, err := sub.Recv(ctx); !errors.Is(err, core.ErrClosed) {
		t.Fatalf("expected closed subscriber, got %v", err)
	}

	_ = s.Close()
	if _, err := s.DeclarePublisher(ctx, "bubble/message/x"); !errors.Is(err, core.ErrClosed) {
		t.Fatalf("expected closed session, got %v", err)
	}
}
