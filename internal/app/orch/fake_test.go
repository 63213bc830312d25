package orch

import (
	"context"
	"errors"
	"sync"

	"github.com/dkeye/bubble/internal/core"
	"github.com/dkeye/bubble/internal/domain"
)

var errRefused = errors.New("declare refused")

// fakeSession is an in-memory Session that injects failures.
type fakeSession struct {
	mu            sync.Mutex
	putErr        error
	queryErr      error
	failQueryable bool
	puts          int
	pubs          []*fakePub
	subs          []*fakeSub
}

func (f *fakeSession) opener() Opener {
	return func(context.Context, []string) (Session, error) { return f, nil }
}

func (f *fakeSession) Endpoints() []domain.Endpoint {
	return []domain.Endpoint{{Protocol: "tcp", Host: "fake", Port: 4222}}
}

func (f *fakeSession) DeclarePublisher(ctx context.Context, topic string) (core.Publisher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &fakePub{s: f, topic: topic}
	f.pubs = append(f.pubs, p)
	return p, nil
}

func (f *fakeSession) DeclareSubscriber(ctx context.Context, topic string) (core.Subscriber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub := &fakeSub{topic: topic, closed: make(chan struct{})}
	f.subs = append(f.subs, sub)
	return sub, nil
}

func (f *fakeSession) DeclareQueryable(ctx context.Context, topic string) (core.Queryable, error) {
	if f.failQueryable {
		return nil, errRefused
	}
	return &fakeQueryable{topic: topic, closed: make(chan struct{})}, nil
}

func (f *fakeSession) Query(ctx context.Context, topic string, payload []byte) (core.Replies, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return nil, errRefused
}

func (f *fakeSession) Close() error { return nil }

func (f *fakeSession) putCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts
}

type fakePub struct {
	s          *fakeSession
	topic      string
	undeclared bool
}

func (p *fakePub) Topic() string { return p.topic }

func (p *fakePub) Put(ctx context.Context, data []byte) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	p.s.puts++
	return p.s.putErr
}

func (p *fakePub) Undeclare() error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	p.undeclared = true
	return nil
}

type fakeSub struct {
	topic  string
	once   sync.Once
	closed chan struct{}
}

func (s *fakeSub) Topic() string { return s.topic }

func (s *fakeSub) Recv(ctx context.Context) (core.Sample, error) {
	select {
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
	once   sync.Once
	closed chan struct{}
}

func (q *fakeQueryable) Topic() string { return q.topic }

func (q *fakeQueryable) Recv(ctx context.Context) (core.Query, error) {
	select {
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
