package session

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthRequired is returned by Connect when no token is available.
	// Nothing is dialed and the session state does not change.
	ErrAuthRequired = errors.New("session: auth token required")

	// ErrNotConnected is returned by publish operations attempted before
	// the handshake completed.
	ErrNotConnected = errors.New("session: not connected")
)

// ConnectError is a terminal connection failure: a rejected handshake, an
// ERROR frame from the server or a handshake timeout.
type ConnectError struct {
	Code    string
	Message string
}

func (e *ConnectError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("session: connect failed (%s): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("session: connect failed: %s", e.Message)
}

// MalformedPayloadError is a recoverable error: a broadcast arrived on a
// subscribed topic but its body could not be decoded. The session stays
// connected and the message log is unchanged.
type MalformedPayloadError struct {
	Topic string
	Err   error
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("session: malformed payload on %s: %v", e.Topic, e.Err)
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }
