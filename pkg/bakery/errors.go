package bakery

import "fmt"

// InitializationError reports a failed session initialization: the init
// call did not complete, or completed without the expected confirmation.
type InitializationError struct {
	SessionID string
	// Message is the confirmation text the agent actually returned, when
	// the call itself succeeded.
	Message string
	err     error
}

func (e *InitializationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("bakery: initialize session %s: %v", e.SessionID, e.err)
	}
	return fmt.Sprintf("bakery: initialize session %s: unexpected confirmation %q", e.SessionID, e.Message)
}

func (e *InitializationError) Unwrap() error { return e.err }

// ErrorKind classifies a chat failure.
type ErrorKind string

const (
	// ErrTransport means the HTTP request itself failed.
	ErrTransport ErrorKind = "transport"
	// ErrStatus means the agent answered with a non-success HTTP status.
	ErrStatus ErrorKind = "status"
	// ErrPayload means the response body was malformed or the response
	// field was missing or not a string.
	ErrPayload ErrorKind = "payload"
	// ErrApp means the agent returned an application-level error field.
	ErrApp ErrorKind = "application"
)

// DownstreamError reports a failed chat exchange with the agent.
type DownstreamError struct {
	Kind ErrorKind
	// Status is the HTTP status code, when a response was received.
	Status int
	// Message is the agent's error text for ErrApp, or a short diagnostic
	// for the other kinds.
	Message string
	err     error
}

func (e *DownstreamError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("bakery: chat %s error: %s: %v", e.Kind, e.Message, e.err)
	}
	return fmt.Sprintf("bakery: chat %s error: %s", e.Kind, e.Message)
}

func (e *DownstreamError) Unwrap() error { return e.err }
