package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrColumnNotFound = fmt.Errorf("%w: column", ErrNotFound)
	ErrSheetNotFound  = fmt.Errorf("%w: sheet", ErrNotFound)

	// Input validation errors
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmptyDataset       = fmt.Errorf("%w: dataset is empty", ErrInvalidInput)
	ErrTooFewParticipants = fmt.Errorf("%w: at least 2 participants are required", ErrInvalidInput)
	ErrNonFiniteValue     = fmt.Errorf("%w: non-finite difference value", ErrInvalidInput)
	ErrEmptyParticipant   = fmt.Errorf("%w: empty participant identifier", ErrInvalidInput)
	ErrUnparsableValue    = fmt.Errorf("%w: difference value is not a number", ErrInvalidInput)

	// Degenerate data: the within-participant variance has zero degrees of freedom
	ErrDegenerateData = errors.New("degenerate data: every participant has exactly one observation")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, resource, id)
}

func NewSheetNotFoundError(sheet string) error {
	return fmt.Errorf("%w %q", ErrSheetNotFound, sheet)
}

func NewColumnNotFoundError(column string, available []string) error {
	return fmt.Errorf("%w %q (available: %v)", ErrColumnNotFound, column, available)
}

func NewTooFewParticipantsError(found int) error {
	return fmt.Errorf("%w, found %d", ErrTooFewParticipants, found)
}

func NewNonFiniteError(row int, participant ParticipantID, value float64) error {
	return fmt.Errorf("%w at row %d (participant %s): %v", ErrNonFiniteValue, row, participant, value)
}

func NewEmptyParticipantError(row int) error {
	return fmt.Errorf("%w at row %d", ErrEmptyParticipant, row)
}

func NewUnparsableValueError(row int, raw string) error {
	return fmt.Errorf("%w at row %d: %q", ErrUnparsableValue, row, raw)
}

func NewDegenerateDataError(participants int) error {
	return fmt.Errorf("%w (%d participants, N - m = 0)", ErrDegenerateData, participants)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsDegenerateDataError(err error) bool {
	return errors.Is(err, ErrDegenerateData)
}
