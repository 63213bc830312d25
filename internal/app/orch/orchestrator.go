// Package orch holds the room controller: it owns the transport session and
// the single active room membership, and drives both from UI commands.
package orch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/bubble/internal/adapters/natsbus"
	"github.com/dkeye/bubble/internal/app"
	"github.com/dkeye/bubble/internal/core"
	"github.com/dkeye/bubble/internal/domain"
)

// Session is a core.Session that remembers where it is connected.
type Session interface {
	core.Session
	Endpoints() []domain.Endpoint
}

// Opener creates the transport session.
type Opener func(ctx context.Context, endpoints []string) (Session, error)

// NATSOpener opens sessions with natsbus.
func NATSOpener(opts natsbus.Options) Opener {
	return func(ctx context.Context, endpoints []string) (Session, error) {
		s, err := natsbus.Open(ctx, endpoints, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

type Options struct {
	Sink core.EventSink
	// Endpoints are used when a command does not name its own servers.
	Endpoints        []string
	User             string
	DiscoveryTimeout time.Duration
	Open             Opener
	Logger           *zerolog.Logger
}

type Orchestrator struct {
	sink             core.EventSink
	open             Opener
	endpoints        []string
	discoveryTimeout time.Duration
	logger           zerolog.Logger

	mu      sync.Mutex
	session Session
	state   State
	member  *membership
	user    string
}

func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		sink:             opts.Sink,
		open:             opts.Open,
		endpoints:        append([]string(nil), opts.Endpoints...),
		discoveryTimeout: opts.DiscoveryTimeout,
		user:             opts.User,
	}
	if o.sink == nil {
		o.sink = app.NewMultiSink()
	}
	if o.open == nil {
		o.open = NATSOpener(natsbus.DefaultOptions())
	}
	if o.discoveryTimeout <= 0 {
		o.discoveryTimeout = app.DefaultDiscoveryTimeout
	}
	base := log.Logger
	if opts.Logger != nil {
		base = *opts.Logger
	}
	o.logger = base.With().Str("module", "orch").Logger()
	return o
}

// Current reports the active room, if any, and the controller state.
func (o *Orchestrator) Current() (domain.RoomID, State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.member == nil {
		return "", o.state
	}
	return o.member.room, o.state
}

// User returns the default sender name.
func (o *Orchestrator) User() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.user
}

// Connect opens the session up front. A session can be installed only once.
func (o *Orchestrator) Connect(ctx context.Context, endpoints []string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session != nil {
		return domain.NewError(domain.ErrorAlreadyInitialized, "session already open")
	}
	return o.openLocked(ctx, endpoints)
}

func (o *Orchestrator) openLocked(ctx context.Context, endpoints []string) error {
	if len(endpoints) == 0 {
		endpoints = o.endpoints
	}
	if len(endpoints) == 0 {
		return domain.NewError(domain.ErrorConfiguration, "no endpoints configured")
	}
	s, err := o.open(ctx, endpoints)
	if err != nil {
		return err
	}
	o.session = s
	o.logger.Info().Int("endpoints", len(s.Endpoints())).Msg("session installed")
	return nil
}

// Close leaves the active room and closes the session.
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.releaseLocked()
	if o.session == nil {
		return nil
	}
	err := o.session.Close()
	o.session = nil
	return err
}

func (o *Orchestrator) notify(err error) {
	o.logger.Warn().Err(err).Str("code", domain.CodeOf(err).String()).Msg("command failed")
	o.sink.OnNotice(domain.NoticeFor(err))
}
