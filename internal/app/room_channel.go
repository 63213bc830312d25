package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/bubble/internal/codec"
	"github.com/dkeye/bubble/internal/core"
	"github.com/dkeye/bubble/internal/domain"
)

// RoomChannel pairs the publisher and subscriber of one room's message topic.
type RoomChannel struct {
	Room domain.RoomID
	pub  core.Publisher
	sub  core.Subscriber
}

// JoinRoom declares both endpoints or neither.
func JoinRoom(ctx context.Context, session core.Session, room domain.RoomID) (*RoomChannel, error) {
	topic := room.MessageTopic()

	sub, err := session.DeclareSubscriber(ctx, topic)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorSubscription, "declare subscriber "+topic, err)
	}
	pub, err := session.DeclarePublisher(ctx, topic)
	if err != nil {
		if uerr := sub.Undeclare(); uerr != nil {
			log.Warn().Err(uerr).Str("module", "app.channel").Str("topic", topic).Msg("release subscriber")
		}
		return nil, domain.WrapError(domain.ErrorSubscription, "declare publisher "+topic, err)
	}
	return &RoomChannel{Room: room, pub: pub, sub: sub}, nil
}

// Send encodes m and publishes it once.
func (rc *RoomChannel) Send(ctx context.Context, m domain.Message) error {
	data, err := codec.Encode(m)
	if err != nil {
		return domain.WrapError(domain.ErrorSend, "encode", err)
	}
	if err := rc.pub.Put(ctx, data); err != nil {
		return domain.WrapError(domain.ErrorSend, "publish "+rc.pub.Topic(), err)
	}
	return nil
}

func (rc *RoomChannel) Subscriber() core.Subscriber { return rc.sub }

// Close releases both endpoints.
func (rc *RoomChannel) Close() error {
	perr := rc.pub.Undeclare()
	serr := rc.sub.Undeclare()
	if perr != nil {
		return perr
	}
	return serr
}
