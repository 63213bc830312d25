package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies failures by how the UI should react to them.
type ErrorCode int

const (
	ErrorUnknown ErrorCode = iota
	// ErrorConfiguration means no usable endpoint was configured.
	ErrorConfiguration
	// ErrorConnection means the transport session could not be opened.
	ErrorConnection
	// ErrorSubscription means a publish, subscribe or queryable declaration failed.
	ErrorSubscription
	// ErrorSend means a publish failed while a room was active.
	ErrorSend
	// ErrorDecode means an inbound payload was malformed.
	ErrorDecode
	ErrorNotInRoom
	ErrorAlreadyInitialized
	ErrorInvalidArgument
)

func (e ErrorCode) String() string {
	switch e {
	case ErrorUnknown:
		return "unknown"
	case ErrorConfiguration:
		return "configuration_error"
	case ErrorConnection:
		return "connection_error"
	case ErrorSubscription:
		return "subscription_error"
	case ErrorSend:
		return "send_error"
	case ErrorDecode:
		return "decode_error"
	case ErrorNotInRoom:
		return "not_in_room"
	case ErrorAlreadyInitialized:
		return "already_initialized"
	case ErrorInvalidArgument:
		return "invalid_argument"
	default:
		return fmt.Sprintf("unknown_code_%d", e)
	}
}

// Notice returns the user-facing text shown for this class of failure.
func (e ErrorCode) Notice() string {
	switch e {
	case ErrorConfiguration:
		return "No valid server is configured."
	case ErrorConnection:
		return "Cannot connect to server."
	case ErrorSubscription:
		return "Cannot enter the room."
	case ErrorSend:
		return "Failed to send message."
	case ErrorNotInRoom:
		return "Enter a room first."
	case ErrorAlreadyInitialized:
		return "Already connected to another server."
	case ErrorInvalidArgument:
		return "Invalid input."
	default:
		return "Something went wrong."
	}
}

// Error is a coded error; errors.Is compares codes.
type Error struct {
	Code    ErrorCode
	Message string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Wrapped: err}
}

// Sentinels for errors.Is.
var (
	ErrConfiguration      = NewError(ErrorConfiguration, "")
	ErrConnection         = NewError(ErrorConnection, "")
	ErrSubscription       = NewError(ErrorSubscription, "")
	ErrSend               = NewError(ErrorSend, "")
	ErrDecode             = NewError(ErrorDecode, "")
	ErrNotInRoom          = NewError(ErrorNotInRoom, "")
	ErrAlreadyInitialized = NewError(ErrorAlreadyInitialized, "")
	ErrInvalidArgument    = NewError(ErrorInvalidArgument, "")
)

// CodeOf returns the code of the outermost coded error in err's chain.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrorUnknown
}

// NoticeFor converts err into the notice shown to the user.
func NoticeFor(err error) Notice {
	return NewNotice(CodeOf(err).Notice())
}
