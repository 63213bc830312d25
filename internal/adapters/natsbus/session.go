// Package natsbus implements core.Session on top of a NATS connection.
package natsbus

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/bubble/internal/core"
	"github.com/dkeye/bubble/internal/domain"
)

// Options tunes how the session connects.
type Options struct {
	// Name identifies the client on the broker. Defaults to bubble-<uuid>.
	Name           string
	ConnectTimeout time.Duration
	// FlushTimeout bounds publish acknowledgement when the caller's context
	// has no deadline.
	FlushTimeout time.Duration
	Logger       *zerolog.Logger
}

func DefaultOptions() Options {
	return Options{
		ConnectTimeout: 5 * time.Second,
		FlushTimeout:   5 * time.Second,
	}
}

// Session owns one NATS connection.
type Session struct {
	nc           *nats.Conn
	endpoints    []domain.Endpoint
	flushTimeout time.Duration
	logger       zerolog.Logger
}

var _ core.Session = (*Session)(nil)

// Open connects to every endpoint that parses. Malformed entries are logged
// and skipped.
func Open(ctx context.Context, raw []string, opts Options) (*Session, error) {
	logger := log.With().Str("module", "natsbus").Logger()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("module", "natsbus").Logger()
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultOptions().ConnectTimeout
	}
	if opts.FlushTimeout <= 0 {
		opts.FlushTimeout = DefaultOptions().FlushTimeout
	}
	if opts.Name == "" {
		opts.Name = "bubble-" + uuid.NewString()
	}

	eps, errs := domain.ParseEndpoints(raw)
	for _, err := range errs {
		logger.Warn().Err(err).Msg("dropping endpoint")
	}
	if len(eps) == 0 {
		return nil, domain.NewError(domain.ErrorConfiguration, "no valid endpoints")
	}

	if err := ctx.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrorConnection, "open session", err)
	}
	timeout := opts.ConnectTimeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}

	urls := make([]string, 0, len(eps))
	for _, ep := range eps {
		urls = append(urls, ep.URL())
	}

	nc, err := nats.Connect(strings.Join(urls, ","),
		nats.Name(opts.Name),
		nats.Timeout(timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("reconnected")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			ev := logger.Error().Err(err)
			if sub != nil {
				ev = ev.Str("topic", sub.Subject)
			}
			ev.Msg("async error")
		}),
	)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorConnection, "open session", err)
	}

	logger.Info().Str("url", nc.ConnectedUrl()).Str("name", opts.Name).Int("endpoints", len(eps)).Msg("session opened")
	return &Session{
		nc:           nc,
		endpoints:    eps,
		flushTimeout: opts.FlushTimeout,
		logger:       logger,
	}, nil
}

// Endpoints returns the addresses the session was opened with.
func (s *Session) Endpoints() []domain.Endpoint {
	return append([]domain.Endpoint(nil), s.endpoints...)
}

func (s *Session) Close() error {
	if s.nc.IsClosed() {
		return nil
	}
	s.nc.Close()
	s.logger.Info().Msg("session closed")
	return nil
}

func (s *Session) DeclarePublisher(ctx context.Context, topic string) (core.Publisher, error) {
	if s.nc.IsClosed() {
		return nil, core.ErrClosed
	}
	return &publisher{s: s, topic: topic}, nil
}

func (s *Session) DeclareSubscriber(ctx context.Context, topic string) (core.Subscriber, error) {
	sub, err := s.subscribe(ctx, topic)
	if err != nil {
		return nil, err
	}
	return &subscriber{s: s, sub: sub}, nil
}

func (s *Session) DeclareQueryable(ctx context.Context, topic string) (core.Queryable, error) {
	sub, err := s.subscribe(ctx, topic)
	if err != nil {
		return nil, err
	}
	return &queryable{s: s, sub: sub}, nil
}

func (s *Session) Query(ctx context.Context, topic string, payload []byte) (core.Replies, error) {
	inbox := s.nc.NewInbox()
	sub, err := s.subscribe(ctx, inbox)
	if err != nil {
		return nil, err
	}
	if err := s.nc.PublishRequest(topic, inbox, payload); err != nil {
		_ = sub.Unsubscribe()
		return nil, mapErr(err)
	}
	if err := s.flush(ctx); err != nil {
		_ = sub.Unsubscribe()
		return nil, err
	}
	return &replies{s: s, sub: sub}, nil
}

// subscribe registers interest and waits until the broker has seen it, so
// a publish issued right after cannot race past the subscription.
func (s *Session) subscribe(ctx context.Context, topic string) (*nats.Subscription, error) {
	sub, err := s.nc.SubscribeSync(topic)
	if err != nil {
		return nil, mapErr(err)
	}
	if err := s.flush(ctx); err != nil {
		_ = sub.Unsubscribe()
		return nil, err
	}
	return sub, nil
}

func (s *Session) flush(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.flushTimeout)
		defer cancel()
	}
	return mapErr(s.nc.FlushWithContext(ctx))
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, nats.ErrConnectionClosed), errors.Is(err, nats.ErrBadSubscription):
		return core.ErrClosed
	case errors.Is(err, nats.ErrNoResponders):
		// Nobody serves the query topic; the reply stream is over.
		return core.ErrClosed
	default:
		return err
	}
}
