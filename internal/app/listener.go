package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/dkeye/bubble/internal/codec"
	"github.com/dkeye/bubble/internal/core"
	"github.com/dkeye/bubble/internal/domain"
)

// Listen forwards decoded messages from sub to sink until ctx is cancelled
// or the subscription is closed. Malformed payloads are dropped.
func Listen(ctx context.Context, sub core.Subscriber, sink core.EventSink, logger *zerolog.Logger) {
	for {
		sample, err := sub.Recv(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, core.ErrClosed) {
				logger.Debug().Str("topic", sub.Topic()).Msg("listener stopped")
				return
			}
			logger.Error().Err(err).Str("topic", sub.Topic()).Msg("listener recv")
			sink.OnNotice(domain.NewNotice("Message delivery was interrupted."))
			continue
		}
		msg, err := codec.Decode(sample.Payload)
		if err != nil {
			logger.Debug().Err(err).Str("topic", sample.Topic).Int("bytes", len(sample.Payload)).Msg("dropping malformed message")
			continue
		}
		sink.OnMessage(msg)
	}
}
