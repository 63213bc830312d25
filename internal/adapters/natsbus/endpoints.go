package natsbus

import (
	"context"
	"sync/atomic"

	"github.com/nats-io/nats.go"

	"github.com/dkeye/bubble/internal/core"
)

type publisher struct {
	s      *Session
	topic  string
	closed atomic.Bool
}

func (p *publisher) Topic() string { return p.topic }

func (p *publisher) Put(ctx context.Context, data []byte) error {
	if p.closed.Load() {
		return core.ErrClosed
	}
	if err := p.s.nc.Publish(p.topic, data); err != nil {
		return mapErr(err)
	}
	return p.s.flush(ctx)
}

func (p *publisher) Undeclare() error {
	p.closed.Store(true)
	return nil
}

type subscriber struct {
	s   *Session
	sub *nats.Subscription
}

func (s *subscriber) Topic() string { return s.sub.Subject }

func (s *subscriber) Recv(ctx context.Context) (core.Sample, error) {
	msg, err := s.sub.NextMsgWithContext(ctx)
	if err != nil {
		return core.Sample{}, mapErr(err)
	}
	return core.Sample{Topic: msg.Subject, Payload: msg.Data}, nil
}

func (s *subscriber) Undeclare() error { return s.s.unsubscribe(s.sub) }

type queryable struct {
	s   *Session
	sub *nats.Subscription
}

func (q *queryable) Topic() string { return q.sub.Subject }

func (q *queryable) Recv(ctx context.Context) (core.Query, error) {
	msg, err := q.sub.NextMsgWithContext(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return &query{msg: msg}, nil
}

func (q *queryable) Undeclare() error { return q.s.unsubscribe(q.sub) }

type query struct {
	msg *nats.Msg
}

func (q *query) Topic() string   { return q.msg.Subject }
func (q *query) Payload() []byte { return q.msg.Data }

func (q *query) Reply(_ context.Context, data []byte) error {
	return mapErr(q.msg.Respond(data))
}

type replies struct {
	s   *Session
	sub *nats.Subscription
}

// Recv returns core.ErrClosed when the broker reports that nobody is
// listening on the query topic.
func (r *replies) Recv(ctx context.Context) ([]byte, error) {
	msg, err := r.sub.NextMsgWithContext(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return msg.Data, nil
}

func (r *replies) Close() error { return r.s.unsubscribe(r.sub) }

// unsubscribe is idempotent and returns once the broker has dropped the
// interest, so no message published afterwards is routed here.
func (s *Session) unsubscribe(sub *nats.Subscription) error {
	if err := mapErr(sub.Unsubscribe()); err != nil {
		if err == core.ErrClosed {
			return nil
		}
		return err
	}
	if err := s.flush(context.Background()); err != nil && err != core.ErrClosed {
		return err
	}
	return nil
}
