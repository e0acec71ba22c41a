package declaration

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuarter is returned for quarters outside 1-4.
	ErrInvalidQuarter = errors.New("quarter must be between 1 and 4")

	// ErrInvalidTransition is returned when a status change is not allowed.
	ErrInvalidTransition = errors.New("invalid declaration status transition")

	// ErrDeclarationLocked is returned when figures of a non-draft declaration would change.
	ErrDeclarationLocked = errors.New("declaration is no longer a draft")

	// ErrLedgerUnavailable is returned when one or more ledgers could not be read.
	ErrLedgerUnavailable = errors.New("ledger unavailable")
)

// DeclarationError adds the failed operation and declaration to an underlying error.
type DeclarationError struct {
	// Op is the operation that failed (e.g. "Collect", "Transition").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string

	// DeclarationID is set when the failure concerns an existing declaration.
	DeclarationID string
}

// Error implements the error interface.
func (e *DeclarationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("declaration: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	if e.DeclarationID != "" {
		return fmt.Sprintf("declaration: %s failed (id: %s): %v", e.Op, e.DeclarationID, e.Err)
	}
	return fmt.Sprintf("declaration: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *DeclarationError) Unwrap() error {
	return e.Err
}

// Is matches against the underlying error.
func (e *DeclarationError) Is(target error) bool {
	return errors.Is(e.Err, target)
}
