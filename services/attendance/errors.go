package attendanced

import (
	"attendance-backend/lib/scrapers/webpros"
	"errors"
)

type ErrorKind string

const (
	KindInvalidCredentials   ErrorKind = "invalid_credentials"
	KindAuthenticationFailed ErrorKind = "authentication_failed"
	KindFetch                ErrorKind = "fetch_failed"
	KindParse                ErrorKind = "parse_failed"
	KindQueue                ErrorKind = "queue_failed"
)

var ErrQueueStopped = errors.New("attendance queue has stopped")

// Error is the failure a retrieval resolves to, Message is safe to show
// to whoever submitted the request.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func loginError(err error) *Error {
	kind := KindAuthenticationFailed
	if errors.Is(err, webpros.ErrInvalidCredentials) {
		kind = KindInvalidCredentials
	}
	return &Error{Kind: kind, Message: err.Error(), Err: err}
}

func stoppedError() *Error {
	return &Error{Kind: KindQueue, Message: ErrQueueStopped.Error(), Err: ErrQueueStopped}
}
