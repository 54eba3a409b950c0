package ledger

import (
	"errors"
	"fmt"

	"github.com/uilacceb/splitter/internal/storage"
)

// Sentinel errors for ledger operations. Callers classify with errors.Is.
var (
	ErrInvalidExpense = errors.New("ledger: invalid expense")
	ErrStorageFailure = errors.New("ledger: storage failure")
	ErrUnauthorized   = errors.New("ledger: unauthorized")
	ErrNotFound       = errors.New("ledger: not found")
)

// ValidationError represents a validation failure with details.
// It matches ErrInvalidExpense under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("ledger: validation failed for %s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error {
	return ErrInvalidExpense
}

// storageError classifies an error returned by the store.
func storageError(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s: %w", ErrNotFound, op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrStorageFailure, op, err)
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, storage.ErrNotFound)
}
