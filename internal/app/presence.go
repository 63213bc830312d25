package app

import (
	"context"
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/dkeye/bubble/internal/core"
	"github.com/dkeye/bubble/internal/domain"
)

const DefaultDiscoveryTimeout = time.Second

// Responder answers presence queries with the id of the active room.
type Responder struct {
	room   domain.RoomID
	q      core.Queryable
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// StartResponder declares the presence queryable and serves it in the
// background until Stop.
func StartResponder(ctx context.Context, session core.Session, room domain.RoomID, logger *zerolog.Logger) (*Responder, error) {
	q, err := session.DeclareQueryable(ctx, domain.PresenceTopic)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorSubscription, "declare queryable "+domain.PresenceTopic, err)
	}
	runCtx, cancel := context.WithCancel(context.Background())
	r := &Responder{
		room:   room,
		q:      q,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go r.serve(runCtx, logger)
	return r, nil
}

func (r *Responder) serve(ctx context.Context, logger *zerolog.Logger) {
	defer close(r.done)
	payload := []byte(r.room)
	for {
		query, err := r.q.Recv(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, core.ErrClosed) {
				return
			}
			logger.Warn().Err(err).Str("room", string(r.room)).Msg("presence recv")
			continue
		}
		if err := query.Reply(ctx, payload); err != nil {
			logger.Warn().Err(err).Str("room", string(r.room)).Msg("presence reply")
			continue
		}
		logger.Debug().Str("room", string(r.room)).Msg("answered presence query")
	}
}

// Stop ends the serving goroutine and releases the queryable. Safe to call
// more than once.
func (r *Responder) Stop() error {
	var err error
	r.once.Do(func() {
		r.cancel()
		<-r.done
		err = r.q.Undeclare()
	})
	return err
}

// Directory discovers rooms by scatter-gather on the presence topic.
type Directory struct {
	Session core.Session
	// Timeout closes the collection window. Replies arriving later are lost.
	Timeout time.Duration
	Logger  *zerolog.Logger
}

// Discover returns every room announced within the collection window. The
// result is best effort: slow or offline responders are missed.
func (d *Directory) Discover(ctx context.Context) (domain.PresenceSet, error) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultDiscoveryTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	replies, err := d.Session.Query(ctx, domain.PresenceTopic, nil)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorSubscription, "query "+domain.PresenceTopic, err)
	}
	defer replies.Close()

	set := domain.NewPresenceSet()
	for {
		data, err := replies.Recv(ctx)
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, core.ErrClosed) && d.Logger != nil {
				d.Logger.Warn().Err(err).Msg("presence reply recv")
			}
			return set, nil
		}
		if !utf8.Valid(data) {
			continue
		}
		id := domain.RoomID(data)
		if id.Validate() != nil {
			continue
		}
		set.Add(id)
	}
}
