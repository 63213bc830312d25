// Package domain holds the value types shared by the transport, the room
// controller and the UI adapters. Nothing here touches the network.
package domain

// Message is a chat line. The room is implied by the topic it travels on.
type Message struct {
	Name    string `json:"name" cbor:"name"`
	Message string `json:"message" cbor:"message"`
}

// Notice is a user-visible error report.
type Notice struct {
	Message string `json:"message"`
}

func NewNotice(message string) Notice {
	return Notice{Message: message}
}
