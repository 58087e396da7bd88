package api

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrEmptyData    = errors.New("response carries no data")
)

// BackendError is a well-formed envelope with success=false.
type BackendError struct {
	Code    string
	Message string
}

func (e *BackendError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (code %s)", e.Message, e.Code)
}

// StatusError is a non-2xx response whose body is not an envelope.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// CaptchaError is a captcha reply with a repCode other than "0000".
type CaptchaError struct {
	Code    string
	Message string
}

func (e *CaptchaError) Error() string {
	return fmt.Sprintf("captcha %s: %s", e.Code, e.Message)
}

// MessageOr returns the backend message carried by err, or fallback when err
// carries none.
func MessageOr(err error, fallback string) string {
	var be *BackendError
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	return fallback
}
