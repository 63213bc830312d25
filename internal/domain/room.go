package domain

import (
	"strings"
	"unicode"
)

const (
	// PresenceTopic is shared by every room; queries on it are answered by
	// each active member with the id of its room.
	PresenceTopic = "bubble/rooms"

	messageTopicPrefix = "bubble/message/"

	MaxRoomIDLen = 128
)

type RoomID string

// MessageTopic is the pub/sub key carrying chat messages for the room.
func (id RoomID) MessageTopic() string {
	return messageTopicPrefix + string(id)
}

// Validate rejects ids that would not map onto a single literal topic.
func (id RoomID) Validate() error {
	if id == "" {
		return NewError(ErrorInvalidArgument, "room id empty")
	}
	if len(id) > MaxRoomIDLen {
		return NewError(ErrorInvalidArgument, "room id too long")
	}
	if strings.ContainsAny(string(id), ".*>") {
		return NewError(ErrorInvalidArgument, "room id contains reserved character")
	}
	for _, r := range string(id) {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return NewError(ErrorInvalidArgument, "room id contains whitespace")
		}
	}
	return nil
}

// ParseRoomID trims and validates raw user input.
func ParseRoomID(raw string) (RoomID, error) {
	id := RoomID(strings.TrimSpace(raw))
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}
