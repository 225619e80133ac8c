package webpros

import (
	"errors"
	"fmt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrAuthenticationFailed = errors.New("authentication failed")

// AuthError is returned by Session.Login. Err is ErrInvalidCredentials when
// the portal rejected the credentials, ErrAuthenticationFailed when the
// portal never reached its post-login page, or the underlying failure.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

type FetchError struct {
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError means the report did not have the expected structure.
type ParseError struct {
	Cause string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse attendance report: %s", e.Cause)
}
