package ndarray

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrInvalidMagic  = errors.New("invalid magic bytes")
	ErrCountMismatch = errors.New("key count does not match ndarray count")
	ErrDuplicateKey  = errors.New("duplicate tensor key")
	ErrUnknownDType  = errors.New("unknown dtype flag")
	ErrTooManyItems  = errors.New("item count exceeds sanity bound")
)

// FormatError provides detailed information about a malformed params file.
type FormatError struct {
	Path    string // File being read or written
	Index   int    // Array/key index involved, -1 if not applicable
	Details string // Additional details
	Err     error  // Underlying sentinel or I/O error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: entry %d: %s: %v", e.Path, e.Index, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Details, e.Err)
}

// Unwrap returns the underlying error.
func (e *FormatError) Unwrap() error {
	return e.Err
}
