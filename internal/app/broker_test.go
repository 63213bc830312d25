package app

import (
	"context"
	"testing"

	"github.com/dkeye/bubble/internal/adapters/natsbus"
	"github.com/dkeye/bubble/internal/testkit"
)

func openSession(t *testing.T, b *testkit.Broker) *natsbus.Session {
	t.Helper()
	s, err := natsbus.Open(context.Background(), []string{b.Endpoint()}, natsbus.DefaultOptions())
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}
