// Package core defines the transport-neutral contracts the room controller
// is written against.
package core

import (
	"context"
	"errors"
)

// ErrClosed is returned by Recv once the endpoint or its session is gone.
var ErrClosed = errors.New("endpoint closed")

// Sample is one payload received on a subscription.
type Sample struct {
	Topic   string
	Payload []byte
}

// Session is the single connection to the pub/sub network.
// Safe for concurrent use once opened.
type Session interface {
	DeclarePublisher(ctx context.Context, topic string) (Publisher, error)
	DeclareSubscriber(ctx context.Context, topic string) (Subscriber, error)
	DeclareQueryable(ctx context.Context, topic string) (Queryable, error)
	// Query broadcasts payload to every queryable on topic; replies stream
	// back until the returned Replies is closed.
	Query(ctx context.Context, topic string, payload []byte) (Replies, error)
	Close() error
}

type Publisher interface {
	Topic() string
	// Put publishes data and waits until the network accepted it.
	Put(ctx context.Context, data []byte) error
	Undeclare() error
}

type Subscriber interface {
	Topic() string
	Recv(ctx context.Context) (Sample, error)
	Undeclare() error
}

type Queryable interface {
	Topic() string
	Recv(ctx context.Context) (Query, error)
	Undeclare() error
}

// Query is an inbound presence request.
type Query interface {
	Topic() string
	Payload() []byte
	Reply(ctx context.Context, data []byte) error
}

type Replies interface {
	Recv(ctx context.Context) ([]byte, error)
	Close() error
}
