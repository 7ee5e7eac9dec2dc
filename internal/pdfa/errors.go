// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfa

import (
	"errors"
	"fmt"
)

// Kind classifies conversion failures.
type Kind string

const (
	KindInvalidInput        Kind = "invalid input"
	KindInvalidOption       Kind = "invalid option"
	KindParseFailure        Kind = "parse failure"
	KindTemplateMissing     Kind = "template missing"
	KindOutputIntentFailure Kind = "output intent failure"
	KindSerializeFailure    Kind = "serialize failure"
	KindOutputWriteFailure  Kind = "output write failure"
	KindOutputNotCreated    Kind = "output not created"
)

// Sentinel errors for use with errors.Is. Every *Error matches the sentinel
// of its kind.
var (
	ErrInvalidInput        = &Error{Kind: KindInvalidInput}
	ErrInvalidOption       = &Error{Kind: KindInvalidOption}
	ErrParseFailure        = &Error{Kind: KindParseFailure}
	ErrTemplateMissing     = &Error{Kind: KindTemplateMissing}
	ErrOutputIntentFailure = &Error{Kind: KindOutputIntentFailure}
	ErrSerializeFailure    = &Error{Kind: KindSerializeFailure}
	ErrOutputWriteFailure  = &Error{Kind: KindOutputWriteFailure}
	ErrOutputNotCreated    = &Error{Kind: KindOutputNotCreated}
)

// Error is the single error type returned by the converter.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or "" if
// there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
