// Package testkit provides an in-process NATS broker for tests.
package testkit

import (
	"testing"

	"github.com/nats-io/nats-server/v2/server"
	natsserver "github.com/nats-io/nats-server/v2/test"
)

// Broker is a running embedded server.
type Broker struct {
	srv *server.Server
}

// StartBroker runs a broker on a random local port and stops it when the
// test ends.
func StartBroker(tb testing.TB) *Broker {
	tb.Helper()
	opts := natsserver.DefaultTestOptions
	opts.Port = server.RANDOM_PORT
	srv := natsserver.RunServer(&opts)
	tb.Cleanup(srv.Shutdown)
	return &Broker{srv: srv}
}

// Endpoint returns the broker address in "tcp/host:port" form.
func (b *Broker) Endpoint() string {
	return "tcp/" + b.srv.Addr().String()
}

// URL returns the broker address in "nats://host:port" form.
func (b *Broker) URL() string {
	return b.srv.ClientURL()
}

func (b *Broker) Shutdown() {
	b.srv.Shutdown()
}
