package models

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrResolve ErrorType = iota
	ErrFetch
	ErrDecode
	ErrStore
	ErrSubprocess
	ErrConfigRead
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrResolve:
		return "Resolve"
	case ErrFetch:
		return "Fetch"
	case ErrDecode:
		return "Decode"
	case ErrStore:
		return "Store"
	case ErrSubprocess:
		return "Subprocess"
	case ErrConfigRead:
		return "ConfigRead"
	default:
		return "Unknown"
	}
}

// IndexError represents an error during cache synchronization or resolution
type IndexError struct {
	Type   ErrorType
	Source string
	Err    error
}

// Error implements the error interface
func (e *IndexError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Source, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *IndexError) Unwrap() error {
	return e.Err
}

// IsErrType reports whether err or any error it wraps is an IndexError of
// the given type.
func IsErrType(err error, t ErrorType) bool {
	var ie *IndexError
	for errors.As(err, &ie) {
		if ie.Type == t {
			return true
		}
		err = ie.Err
	}
	return false
}
