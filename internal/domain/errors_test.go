package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesCode(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := WrapError(ErrorConnection, "open session", cause)
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("expected connection error")
	}
	if errors.Is(err, ErrSend) {
		t.Fatalf("unexpected send match")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause")
	}
}

func TestErrorChainKeepsInnerCode(t *testing.T) {
	inner := NewError(ErrorConfiguration, "no valid endpoints")
	outer := WrapError(ErrorConnection, "open session", inner)
	if !errors.Is(outer, ErrConfiguration) || !errors.Is(outer, ErrConnection) {
		t.Fatalf("expected both codes in chain")
	}
	if CodeOf(fmt.Errorf("ctx: %w", outer)) != ErrorConnection {
		t.Fatalf("expected outermost code")
	}
}

func TestNoticeFor(t *testing.T) {
	if got := NoticeFor(NewError(ErrorNotInRoom, "send")); got.Message != ErrorNotInRoom.Notice() {
		t.Fatalf("unexpected notice %q", got.Message)
	}
	if got := NoticeFor(errors.New("plain")); got.Message != ErrorUnknown.Notice() {
		t.Fatalf("unexpected notice %q", got.Message)
	}
	if ErrorCode(99).String() != "unknown_code_99" {
		t.Fatalf("unexpected string for unknown code")
	}
}
