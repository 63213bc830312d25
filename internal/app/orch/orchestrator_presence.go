package orch

import (
	"context"
	"errors"

	"github.com/dkeye/bubble/internal/app"
	"github.com/dkeye/bubble/internal/core"
	"github.com/dkeye/bubble/internal/domain"
)

// ListRooms runs one discovery round, emits the full set to the sink and
// returns it.
func (o *Orchestrator) ListRooms(ctx context.Context) (domain.PresenceSet, error) {
	o.mu.Lock()
	if o.session == nil {
		if err := o.openLocked(ctx, nil); err != nil {
			o.mu.Unlock()
			if domain.CodeOf(err) != domain.ErrorConnection {
				err = domain.WrapError(domain.ErrorConnection, "open session", err)
			}
			o.notify(err)
			return nil, err
		}
	}
	session := o.session
	o.mu.Unlock()

	dir := app.Directory{Session: session, Timeout: o.discoveryTimeout, Logger: &o.logger}
	set, err := dir.Discover(ctx)
	if err != nil {
		if errors.Is(err, core.ErrClosed) {
			// The session was closed under the round.
			err = domain.WrapError(domain.ErrorConnection, "discover", err)
		}
		o.notify(err)
		return nil, err
	}
	o.logger.Debug().Int("rooms", len(set)).Msg("discovery round done")
	o.sink.OnRooms(set.Sorted())
	return set, nil
}

// Hello is the entrance prompt's name for ListRooms.
func (o *Orchestrator) Hello(ctx context.Context) (domain.PresenceSet, error) {
	return o.ListRooms(ctx)
}
