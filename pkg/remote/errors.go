package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotConfigured is returned before any request is attempted when the
// server address or API key is missing.
var ErrNotConfigured = errors.New("remote server is not configured")

// Error is a non-success response from the remote server. Message is kept
// verbatim so it can be shown to users and written to history.
type Error struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: remote server responded %d: %s", e.Op, e.StatusCode, e.Message)
}

// TransportError is a timeout or connection failure; no response was read.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsMethodNotAllowed reports whether err is a 405 from the remote server.
func IsMethodNotAllowed(err error) bool {
	var remoteErr *Error

	return errors.As(err, &remoteErr) && remoteErr.StatusCode == http.StatusMethodNotAllowed
}

// IsRemoteFailure reports whether err came from talking to the remote server,
// either a rejection or a transport failure.
func IsRemoteFailure(err error) bool {
	var (
		remoteErr    *Error
		transportErr *TransportError
	)

	return errors.As(err, &remoteErr) || errors.As(err, &transportErr)
}

// Message extracts the user-facing message of err: the remote message when
// the server rejected the call, otherwise err.Error().
func Message(err error) string {
	if err == nil {
		return ""
	}

	var remoteErr *Error
	if errors.As(err, &remoteErr) {
		return remoteErr.Message
	}

	return err.Error()
}
