package report

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a fetch failure.
type ErrorKind int

const (
	// KindTransient is a network or server error; retryable.
	KindTransient ErrorKind = iota
	// KindRateLimited means the backend signalled quota exhaustion.
	KindRateLimited
	// KindFatal is a malformed request; backoff alone will not fix it.
	KindFatal
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindRateLimited:
		return "rate_limited"
	case KindFatal:
		return "fatal"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// FetchError is a classified fetch failure.
type FetchError struct {
	Kind ErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return e.Kind.String() + " fetch error"
	}
	return e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// RateLimited wraps err as a quota failure.
func RateLimited(err error) error { return &FetchError{Kind: KindRateLimited, Err: err} }

// Transient wraps err as a retryable failure.
func Transient(err error) error { return &FetchError{Kind: KindTransient, Err: err} }

// Fatal wraps err as a non-retryable request failure.
func Fatal(err error) error { return &FetchError{Kind: KindFatal, Err: err} }

// KindOf returns the kind of err. Unclassified errors are transient.
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindTransient
}
