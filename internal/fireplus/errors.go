package fireplus

import (
	"errors"
	"fmt"
)

// ErrAPI matches every error returned by this package via errors.Is.
var ErrAPI = errors.New("fireplus api error")

// CommunicationError reports a timeout, name resolution failure or any other
// transport-level failure. Callers may retry.
type CommunicationError struct {
	Method string
	URL    string
	Err    error
}

func (e *CommunicationError) Error() string {
	return fmt.Sprintf("communicating with fire+ (%s %s): %v", e.Method, e.URL, e.Err)
}

func (e *CommunicationError) Unwrap() error { return e.Err }

func (e *CommunicationError) Is(target error) bool { return target == ErrAPI }

// InvalidResponseError reports payloads that could not be decoded. It usually
// means a firmware the decoder does not know.
type InvalidResponseError struct {
	Panel         string
	Configuration string
	Err           error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("parsing responses from fire+: %q and %q: %v", e.Panel, e.Configuration, e.Err)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }

func (e *InvalidResponseError) Is(target error) bool { return target == ErrAPI }

// APIError wraps any other unexpected failure.
type APIError struct {
	Msg string
	Err error
}

func (e *APIError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *APIError) Unwrap() error { return e.Err }

func (e *APIError) Is(target error) bool { return target == ErrAPI }
