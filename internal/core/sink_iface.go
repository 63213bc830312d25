package core

import "github.com/dkeye/bubble/internal/domain"

//go:generate mockgen -source=sink_iface.go -destination=mocks/sink_mock.go -package=mocks

// EventSink is the UI boundary. Implementations must not block for long:
// they are called from background listener goroutines.
type EventSink interface {
	OnMessage(domain.Message)
	OnNotice(domain.Notice)
	OnRooms([]domain.RoomID)
}
