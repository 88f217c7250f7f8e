package models

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrDefinitionParse ErrorType = iota
	ErrMissingParseURL
	ErrFetch
	ErrPattern
	ErrInvalidConfig
)

// Exit codes reported by the aer binary
const (
	ExitOK              = 0
	ExitFailure         = 1
	ExitMissingParseURL = 5
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrDefinitionParse:
		return "DefinitionParse"
	case ErrMissingParseURL:
		return "MissingParseURL"
	case ErrFetch:
		return "Fetch"
	case ErrPattern:
		return "Pattern"
	case ErrInvalidConfig:
		return "InvalidConfig"
	default:
		return "Unknown"
	}
}

// AerError represents an error while updating a package
type AerError struct {
	Type    ErrorType
	Package string
	Err     error
}

// Error implements the error interface
func (e *AerError) Error() string {
	if e.Package != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Package, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *AerError) Unwrap() error {
	return e.Err
}

// IsType reports whether err carries an AerError of the given type.
func IsType(err error, t ErrorType) bool {
	var aerErr *AerError
	if errors.As(err, &aerErr) {
		return aerErr.Type == t
	}
	return false
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if IsType(err, ErrMissingParseURL) {
		return ExitMissingParseURL
	}
	return ExitFailure
}
