// Package apperr defines the error kinds surfaced by complaint operations.
//
// Every failure returned by the core is an *Error carrying a Kind. Callers
// match kinds with errors.Is against the package sentinels:
//
//	if errors.Is(err, apperr.ErrInvalidState) { ... }
package apperr

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	KindInfrastructure Kind = iota
	KindValidation
	KindAuthorization
	KindInvalidState
	KindNotFound
	KindAlreadyProvided
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation error"
	case KindAuthorization:
		return "not authorized"
	case KindInvalidState:
		return "invalid state"
	case KindNotFound:
		return "not found"
	case KindAlreadyProvided:
		return "already provided"
	default:
		return "internal error"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels (errors with no message and no cause) by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Message != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrAuthorization   = &Error{Kind: KindAuthorization}
	ErrInvalidState    = &Error{Kind: KindInvalidState}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrAlreadyProvided = &Error{Kind: KindAlreadyProvided}
	ErrInfrastructure  = &Error{Kind: KindInfrastructure}
)

func Validation(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized never says why, so it cannot be used to probe for entities
// outside the caller's scope.
func Unauthorized() error {
	return &Error{Kind: KindAuthorization, Message: "not authorized"}
}

func NotFound(what string) error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func InvalidState(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func AlreadyProvided(format string, args ...interface{}) error {
	return &Error{Kind: KindAlreadyProvided, Message: fmt.Sprintf(format, args...)}
}

// Infrastructure wraps a storage or transport failure. A nil err yields nil.
func Infrastructure(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: KindInfrastructure, Message: op, Err: err}
}

// KindOf reports the kind of err. Errors that are not *Error count as
// infrastructure failures.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInfrastructure
}

// PublicMessage is the text safe to show to a caller. Infrastructure causes
// are not exposed.
func PublicMessage(err error) string {
	var ae *Error
	if !errors.As(err, &ae) || ae.Kind == KindInfrastructure {
		return "internal error"
	}
	if ae.Message == "" {
		return ae.Kind.String()
	}
	return ae.Message
}
