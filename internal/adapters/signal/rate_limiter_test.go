package signal

import (
	"testing"
	"time"
)

func TestSendRateLimiter(t *testing.T) {
	now := time.Unix(1000, 0)
	rl := NewSendRateLimiter(2, time.Second)
	rl.now = func() time.Time { return now }

	if !rl.Allow("c1") || !rl.Allow("c1") {
		t.Fatalf("expected first two sends to pass")
	}
	if rl.Allow("c1") {
		t.Fatalf("expected third send to be limited")
	}
	if !rl.Allow("c2") {
		t.Fatalf("connections must not share a budget")
	}

	now = now.Add(1100 * time.Millisecond)
	if !rl.Allow("c1") {
		t.Fatalf("expected window to slide")
	}

	rl.Forget("c1")
	if _, ok := rl.history["c1"]; ok {
		t.Fatalf("expected history to be dropped")
	}
}

func TestSendRateLimiterDisabled(t *testing.T) {
	rl := NewSendRateLimiter(0, time.Second)
	for i := 0; i < 10; i++ {
		if !rl.Allow("c") {
			t.Fatalf("zero limit must disable limiting")
		}
	}
}
