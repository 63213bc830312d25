package orch

import (
	"context"
	"strings"

	"github.com/dkeye/bubble/internal/app"
	"github.com/dkeye/bubble/internal/domain"
)

// EnterRequest carries the fields of the room entrance prompt.
type EnterRequest struct {
	Room string
	// Endpoints selects the servers for this entry; empty means configured.
	Endpoints []string
	User      string
}

// membership is everything owned by the active room.
type membership struct {
	room      domain.RoomID
	channel   *app.RoomChannel
	responder *app.Responder
	cancel    context.CancelFunc
	done      chan struct{}
}

// EnterRoom leaves the current room, if any, and joins req.Room.
func (o *Orchestrator) EnterRoom(ctx context.Context, req EnterRequest) error {
	room, err := domain.ParseRoomID(req.Room)
	if err != nil {
		o.notify(err)
		return err
	}
	var user string
	if strings.TrimSpace(req.User) != "" {
		if user, err = domain.NormalizeUsername(req.User); err != nil {
			err = domain.WrapError(domain.ErrorInvalidArgument, "user name", err)
			o.notify(err)
			return err
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.checkEndpointsLocked(req.Endpoints); err != nil {
		o.notify(err)
		return err
	}
	if o.member != nil {
		o.logger.Info().Str("from_room", string(o.member.room)).Str("to_room", string(room)).Msg("switching room")
		o.releaseLocked()
	}
	o.state = StateEntering

	if err := o.ensureSessionLocked(ctx, req.Endpoints); err != nil {
		o.state = StateIdle
		o.notify(err)
		return err
	}

	ch, err := app.JoinRoom(ctx, o.session, room)
	if err != nil {
		o.state = StateIdle
		o.notify(err)
		return err
	}
	responder, err := app.StartResponder(ctx, o.session, room, &o.logger)
	if err != nil {
		if cerr := ch.Close(); cerr != nil {
			o.logger.Warn().Err(cerr).Str("room", string(room)).Msg("release channel")
		}
		o.state = StateIdle
		o.notify(err)
		return err
	}

	listenCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		app.Listen(listenCtx, ch.Subscriber(), o.sink, &o.logger)
	}()

	o.member = &membership{
		room:      room,
		channel:   ch,
		responder: responder,
		cancel:    cancel,
		done:      done,
	}
	o.state = StateActive
	if user != "" {
		o.user = user
	}
	o.logger.Info().Str("room", string(room)).Str("user", o.user).Msg("entered room")
	return nil
}

// ensureSessionLocked opens the session on first use.
func (o *Orchestrator) ensureSessionLocked(ctx context.Context, endpoints []string) error {
	if o.session != nil {
		return nil
	}
	if err := o.openLocked(ctx, endpoints); err != nil {
		if domain.CodeOf(err) == domain.ErrorConnection {
			return err
		}
		return domain.WrapError(domain.ErrorConnection, "open session", err)
	}
	return nil
}

// checkEndpointsLocked refuses a request for a different server set while a
// session is open. It runs before anything is released, so a refused entry
// leaves the active room alone.
func (o *Orchestrator) checkEndpointsLocked(endpoints []string) error {
	if o.session == nil || len(endpoints) == 0 {
		return nil
	}
	eps, _ := domain.ParseEndpoints(endpoints)
	if len(eps) > 0 && !domain.SameEndpoints(eps, o.session.Endpoints()) {
		return domain.NewError(domain.ErrorAlreadyInitialized, "session open on other servers")
	}
	return nil
}

// SendMessage publishes body to the active room. An empty name falls back to
// the name given on entry.
func (o *Orchestrator) SendMessage(ctx context.Context, name, body string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.member == nil || o.state != StateActive {
		err := domain.NewError(domain.ErrorNotInRoom, "send message")
		o.notify(err)
		return err
	}
	if name == "" {
		name = o.user
	}
	if strings.TrimSpace(body) == "" {
		err := domain.NewError(domain.ErrorInvalidArgument, "empty message")
		o.notify(err)
		return err
	}
	if err := o.member.channel.Send(ctx, domain.Message{Name: name, Message: body}); err != nil {
		o.notify(err)
		return err
	}
	return nil
}

// LeaveRoom releases the active room.
func (o *Orchestrator) LeaveRoom(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.member == nil {
		err := domain.NewError(domain.ErrorNotInRoom, "leave room")
		o.notify(err)
		return err
	}
	o.releaseLocked()
	return nil
}

// releaseLocked stops the listener and responder of the active room and
// undeclares its endpoints.
func (o *Orchestrator) releaseLocked() {
	m := o.member
	if m == nil {
		return
	}
	o.member = nil
	o.state = StateIdle

	m.cancel()
	<-m.done
	if err := m.responder.Stop(); err != nil {
		o.logger.Warn().Err(err).Str("room", string(m.room)).Msg("stop responder")
	}
	if err := m.channel.Close(); err != nil {
		o.logger.Warn().Err(err).Str("room", string(m.room)).Msg("release channel")
	}
	o.logger.Info().Str("room", string(m.room)).Msg("left room")
}
