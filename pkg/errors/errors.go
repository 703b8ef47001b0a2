package errors

import (
	"errors"
	"fmt"
)

// Code represents a stable error code for programmatic handling.
type Code string

const (
	CodeUnknown            Code = "unknown"
	CodeInvalid            Code = "invalid"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeConstraint         Code = "constraint_violated"
	CodeInternal           Code = "internal"
	CodeUnavailable        Code = "unavailable"
	CodeDeadline           Code = "deadline_exceeded"
	CodeMigrationOrder     Code = "migration_order"
	CodeMigrationFailed    Code = "migration_failed"
	CodeMigrationUnknownID Code = "migration_unknown"
)

// Meta keys shared by the storage and migration layers.
const (
	MetaConstraint = "constraint"
	MetaTable      = "table"
	MetaMigration  = "migration"
	MetaStep       = "step"
)

// AppError is a structured error type that carries a code, message, and optional metadata.
type AppError struct {
	Code    Code
	Message string
	Err     error
	Meta    map[string]any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *AppError) Unwrap() error { return e.Err }

// WithMeta attaches metadata to the error.
func (e *AppError) WithMeta(k string, v any) *AppError {
	if e.Meta == nil {
		e.Meta = map[string]any{}
	}
	e.Meta[k] = v
	return e
}

// New creates a new AppError with code and message.
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap wraps an existing error with code and message.
func Wrap(err error, code Code, message string) *AppError {
	if err == nil {
		return New(code, message)
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// Constraint builds a constraint_violated error naming the constraint that failed.
func Constraint(name, message string) *AppError {
	return New(CodeConstraint, message).WithMeta(MetaConstraint, name)
}

// IsCode checks if an error has the provided code (through unwrapping).
func IsCode(err error, code Code) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// CodeOf returns the code of the outermost AppError in the chain, or CodeUnknown.
func CodeOf(err error) Code {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// ConstraintName returns the name of the violated constraint carried by err, if any.
func ConstraintName(err error) string {
	return metaString(err, MetaConstraint)
}

// MetaString looks up a string metadata value anywhere in the AppError chain.
func MetaString(err error, key string) string {
	return metaString(err, key)
}

func metaString(err error, key string) string {
	for err != nil {
		var ae *AppError
		if !errors.As(err, &ae) {
			return ""
		}
		if v, ok := ae.Meta[key].(string); ok {
			return v
		}
		err = ae.Err
	}
	return ""
}
