package service

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindForbidden    Kind = "forbidden"
	KindUnauthorized Kind = "unauthorized"
	KindInternal     Kind = "internal"
)

// Error is the only error type the service returns. Message is safe to
// show to a caller; Err holds the cause and is only ever logged.
type Error struct {
	Kind    Kind
	Message string
	// Fields maps input field names to what is wrong with them. Only set
	// for KindValidation.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf classifies err. Anything that is not a *Error is internal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func notFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func conflict(msg string, err error) *Error {
	return &Error{Kind: KindConflict, Message: msg, Err: err}
}

func invalid(field, problem string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: "validation failed",
		Fields:  map[string]string{field: problem},
	}
}

// fieldErrors collects validation problems so a caller sees all of them
// at once.
type fieldErrors map[string]string

func (f fieldErrors) add(field, problem string) {
	if _, exists := f[field]; !exists {
		f[field] = problem
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: f}
}
