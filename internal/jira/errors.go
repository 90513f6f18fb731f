package jira

import (
	"errors"
	"fmt"
)

// ConfigError indicates the client cannot be built from the given settings.
// It is always returned before any request is attempted.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("jira config error (%s): %s", e.Field, e.Message)
}

// TransportError wraps a network-level failure (DNS, refused connection,
// timeout, cancelled context) for a single request.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError is returned when Jira answers with an unexpected HTTP status.
// Payload holds the decoded JSON error body, or the raw text when the body
// is not valid JSON.
type ProtocolError struct {
	Method     string
	URL        string
	StatusCode int
	Payload    any
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf(
		"jira API returned %d on %s %s: %v",
		e.StatusCode, e.Method, e.URL, e.Payload,
	)
}

// IsConfigError reports whether err (or any error in its chain) is a ConfigError.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}

// IsTransportError reports whether err (or any error in its chain) is a
// TransportError.
func IsTransportError(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}

// AsProtocolError extracts a ProtocolError from err's chain.
func AsProtocolError(err error) (*ProtocolError, bool) {
	var pErr *ProtocolError
	if errors.As(err, &pErr) {
		return pErr, true
	}
	return nil, false
}
