package domain

import (
	"errors"
	"fmt"
)

// ErrorType classifies a DomainError.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeResource   ErrorType = "resource"
	ErrorTypeEngine     ErrorType = "engine"
	ErrorTypeAsset      ErrorType = "asset"
	ErrorTypeAuth       ErrorType = "auth"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeIO         ErrorType = "io"
)

// DomainError represents a domain-specific error with context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Description is the human readable part of the error, without the type tag.
func (e *DomainError) Description() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// NewError creates a new domain error
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Common error constructors

// ValidationError reports bad caller input (unsupported suffix, missing file).
func ValidationError(message string, err error) *DomainError {
	return NewError(ErrorTypeValidation, message, err)
}

// ResourceError reports that per-request storage could not be allocated.
func ResourceError(message string, err error) *DomainError {
	return NewError(ErrorTypeResource, message, err)
}

// EngineError reports a classification, analysis or pipeline fault.
func EngineError(message string, err error) *DomainError {
	return NewError(ErrorTypeEngine, message, err)
}

// AssetError reports a single unreadable image asset.
func AssetError(message string, err error) *DomainError {
	return NewError(ErrorTypeAsset, message, err)
}

// AuthError reports a rejected bearer token.
func AuthError(message string, err error) *DomainError {
	return NewError(ErrorTypeAuth, message, err)
}

func ConfigError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfig, message, err)
}

func IOError(message string, err error) *DomainError {
	return NewError(ErrorTypeIO, message, err)
}

// IsType reports whether any error in err's chain is a DomainError of type t.
func IsType(err error, t ErrorType) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type == t
	}
	return false
}

// Describe returns the message used in failure results: the description of a
// DomainError, or the plain error text for anything else.
func Describe(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Description()
	}
	return err.Error()
}
