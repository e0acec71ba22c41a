package invoice

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownMode is returned when a calculation mode name is not recognised.
	ErrUnknownMode = errors.New("unknown calculation mode")

	// ErrUnknownEdit is returned when an edited field name is not recognised.
	ErrUnknownEdit = errors.New("unknown edited field")

	// ErrNoUsedLines is returned when a document has no line with a product name.
	ErrNoUsedLines = errors.New("invoice has no used lines")
)

// ParseMode converts user input into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeTotal, ModeQuantity:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// ParseEdit converts a field name into an Edit.
func ParseEdit(s string) (Edit, error) {
	switch Edit(s) {
	case EditedQuantity, EditedUnitPrice, EditedTotal:
		return Edit(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEdit, s)
}
