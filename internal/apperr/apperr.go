// Package apperr defines the tagged error type used across the vocabulary
// core. Every failure surfaced to a caller is an *Error with a Kind, so
// callers dispatch on the tag instead of on concrete error types, and the
// UI boundary maps kinds to user-facing message keys exhaustively.
package apperr

import (
	"errors"
	"fmt"
)

// Kind tags the class of a failure.
type Kind string

const (
	// KindNetwork is a transport-level failure (DNS, connection reset).
	KindNetwork Kind = "network"
	// KindTimeout means an attempt exceeded its deadline.
	KindTimeout Kind = "timeout"
	// KindAPI is a non-2xx response after the retry policy is exhausted.
	KindAPI Kind = "api"
	// KindConfig means required configuration is absent.
	KindConfig Kind = "config"
	// KindCrypto is an encryption or decryption failure.
	KindCrypto Kind = "crypto"
	// KindValidation is malformed user input, detected before any I/O.
	KindValidation Kind = "validation"
)

// Error is the single error type surfaced by the core components.
type Error struct {
	// Kind классифицирует ошибку для диспетчеризации.
	Kind Kind
	// Msg is a short operator-facing description.
	Msg string
	// StatusCode is the final HTTP status, set only for KindAPI.
	StatusCode int
	// Endpoint is the request path, set for KindAPI and KindNetwork.
	Endpoint string
	// MsgKey identifies a user-facing message, set for KindValidation.
	MsgKey string
	// Err is the wrapped cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Kind == KindAPI {
		return fmt.Sprintf("%s: %s returned status %d", e.Kind, e.Endpoint, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.Err }

// Network wraps a transport-level failure for the given endpoint.
func Network(endpoint string, err error) *Error {
	return &Error{Kind: KindNetwork, Msg: "request failed", Endpoint: endpoint, Err: err}
}

// Timeout reports an attempt that exceeded its deadline.
func Timeout(endpoint string, err error) *Error {
	return &Error{Kind: KindTimeout, Msg: "deadline exceeded", Endpoint: endpoint, Err: err}
}

// API reports a terminal non-2xx response.
func API(endpoint string, statusCode int) *Error {
	return &Error{Kind: KindAPI, Endpoint: endpoint, StatusCode: statusCode}
}

// Config reports missing or unusable configuration.
func Config(msg string) *Error {
	return &Error{Kind: KindConfig, Msg: msg}
}

// Crypto wraps an encryption or decryption failure.
func Crypto(msg string, err error) *Error {
	return &Error{Kind: KindCrypto, Msg: msg, Err: err}
}

// Validation reports malformed user input. msgKey identifies the
// user-facing message; raw input text is never embedded.
func Validation(msgKey string) *Error {
	return &Error{Kind: KindValidation, Msg: "invalid input", MsgKey: msgKey}
}

// KindOf returns the Kind of err, or the empty Kind if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}

// MessageKey maps an error to the identifier of its user-facing message.
// The mapping is exhaustive over Kind; unknown errors map to a generic key.
func MessageKey(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "error.unknown"
	}
	switch e.Kind {
	case KindNetwork:
		return "error.network"
	case KindTimeout:
		return "error.timeout"
	case KindAPI:
		return "error.api"
	case KindConfig:
		return "error.config"
	case KindCrypto:
		return "error.crypto"
	case KindValidation:
		if e.MsgKey != "" {
			return e.MsgKey
		}
		return "error.validation"
	default:
		return "error.unknown"
	}
}
