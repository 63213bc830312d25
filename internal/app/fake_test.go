package app

import (
	"context"
	"errors"
	"sync"

	"github.com/dkeye/bubble/internal/core"
)

var errDeclare = errors.New("declare refused")

// fakeSession is an in-memory core.Session for failure-path tests.
type fakeSession struct {
	mu            sync.Mutex
	failPublisher bool
	failQueryable bool
	subs          []*fakeSub
	queryables    []*fakeQueryable
	puts          [][]byte
}

func (f *fakeSession) DeclarePublisher(ctx context.Context, topic string) (core.Publisher, error) {
	if f.failPublisher {
		return nil, errDeclare
	}
	return &fakePub{s: f, topic: topic}, nil
}

func (f *fakeSession) DeclareSubscriber(ctx context.Context, topic string) (core.Subscriber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub := &fakeSub{topic: topic, ch: make(chan core.Sample, 16), closed: make(chan struct{})}
	f.subs = append(f.subs, sub)
	return sub, nil
}

func (f *fakeSession) DeclareQueryable(ctx context.Context, topic string) (core.Queryable, error) {
	if f.failQueryable {
		return nil, errDeclare
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	q := &fakeQueryable{topic: topic, ch: make(chan core.Query, 4), closed: make(chan struct{})}
	f.queryables = append(f.queryables, q)
	return q, nil
}

func (f *fakeSession) Query(ctx context.Context, topic string, payload []byte) (core.Replies, error) {
	return nil, errDeclare
}

func (f *fakeSession) Close() error { return nil }

type fakePub struct {
	s     *fakeSession
	topic string
}

func (p *fakePub) Topic() string { return p.topic }

func (p *fakePub) Put(ctx context.Context, data []byte) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	p.s.puts = append(p.s.puts, data)
	return nil
}

func (p *fakePub) Undeclare() error { return nil }

type fakeSub struct {
	topic  string
	ch     chan core.Sample
	once   sync.Once
	closed chan struct{}
}

func (s *fakeSub) Topic() string { return s.topic }

func (s *fakeSub) Recv(ctx context.Context) (core.Sample, error) {
	select {
	case sample := <-s.ch:
		return sample, nil
	case <-s.closed:
		return core.Sample{}, core.ErrClosed
	case <-ctx.Done():
		return core.Sample{}, ctx.Err()
	}
}

func (s *fakeSub) Undeclare() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

func (s *fakeSub) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

type fakeQueryable struct {
	topic  string
	ch     chan core.Query
	once   sync.Once
	closed chan struct{}
}

func (q *fakeQueryable) Topic() string { return q.topic }

func (q *fakeQueryable) Recv(ctx context.Context) (core.Query, error) {
	select {
	case query := <-q.ch:
		return query, nil
	case <-q.closed:
		return nil, core.ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *fakeQueryable) Undeclare() error {
	q.once.Do(func() { close(q.closed) })
	return nil
}

type fakeQuery struct {
	replies chan []byte
	err     error
}

func (q *fakeQuery) Topic() string   { return "bubble/rooms" }
func (q *fakeQuery) Payload() []byte { return nil }

func (q *fakeQuery) Reply(ctx context.Context, data []byte) error {
	if q.err != nil {
		return q.err
	}
	q.replies <- data
	return nil
}
