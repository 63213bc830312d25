package orch

// State is the room controller's position in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateEntering
	StateActive
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEntering:
		return "entering"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}
