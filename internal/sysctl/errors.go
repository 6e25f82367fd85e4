package sysctl

import (
	"errors"
	"fmt"
)

// Kind classifies reconciliation failures by the phase that produced them.
type Kind string

const (
	KindCoherence     Kind = "coherence"
	KindConfiguration Kind = "configuration"
	KindPrecondition  Kind = "precondition"
	KindIO            Kind = "io"
	KindPostcondition Kind = "postcondition"
	KindReload        Kind = "reload"
)

var (
	ErrNameRequired    = errors.New("name is required")
	ErrValueRequired   = errors.New("value is required when state is present")
	ErrValueWithAbsent = errors.New("value must be empty when state is absent")
	ErrAfterNeedsLoad  = errors.New("checks after/both require reload to be enabled")
	ErrKeyPathInvalid  = errors.New("key path invalid")
	ErrKeyUnreadable   = errors.New("key unreadable")
	ErrKeyReadOnly     = errors.New("key read-only")
	ErrValueNotApplied = errors.New("value not applied")
	ErrReloadFailed    = errors.New("reload failed")
)

// Error carries the failure kind and the key it concerns.
type Error struct {
	Kind Kind
	Key  string
	Err  error
}

func newError(kind Kind, key string, err error) *Error {
	return &Error{Kind: kind, Key: key, Err: err}
}

// NewError wraps err with a reconciliation kind.
func NewError(kind Kind, key string, err error) error {
	if err == nil {
		return nil
	}
	return newError(kind, key, err)
}

func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorKind satisfies the classifier shape used by callers that map errors
// to exit statuses or journal outcomes.
func (e *Error) ErrorKind() string { return string(e.Kind) }

// KindOf returns the kind of the first *Error in err's chain, or "" when err
// carries none.
func KindOf(err error) Kind {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	return ""
}

// Mutates reports whether a failure of this kind can happen after the
// configuration file was replaced.
func (k Kind) Mutates() bool {
	return k == KindPostcondition || k == KindReload
}

// WithKey returns err with its key set when it is an *Error without one.
func WithKey(err error, key string) error {
	var target *Error
	if !errors.As(err, &target) || target.Key != "" {
		return err
	}
	return newError(target.Kind, key, target.Err)
}
