package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can decide whether to retry, skip or abort.
type Kind int

const (
	KindUnknown Kind = iota
	KindAuth
	KindRateLimit
	KindUnavailable
	KindConnectivity
	KindNotFound
	KindParse
	KindStorage
	KindFetch
	KindValidation
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindRateLimit:
		return "rate_limit"
	case KindUnavailable:
		return "unavailable"
	case KindConnectivity:
		return "connectivity"
	case KindNotFound:
		return "not_found"
	case KindParse:
		return "parse"
	case KindStorage:
		return "storage"
	case KindFetch:
		return "fetch"
	case KindValidation:
		return "validation"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Retryable reports whether an operation failing with this kind may succeed on a later attempt.
func (k Kind) Retryable() bool {
	return k == KindRateLimit || k == KindUnavailable
}

// Error is the tagged failure value shared by the remote client, the pipelines and the repos.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status when the failure came from a response, 0 otherwise
	Message string // short human-readable summary
	Detail  string // server-provided description or extra context
	Err     error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
