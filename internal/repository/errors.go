package repository

import (
	"errors"
	"fmt"

	"github.com/Raisondetr3/tasktango/internal/storage"
)

var (
	ErrCorruptState = errors.New("persisted task collection is malformed")
	ErrStorage      = errors.New("storage unavailable")
)

type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RepositoryError{Op: op, Err: err}
}

// HandleStorageError classifies a backend error; the original error stays in
// the chain for errors.Is/As.
func HandleStorageError(op string, err error) error {
	if err == nil {
		return nil
	}

	var se *storage.StorageError
	if errors.As(err, &se) {
		return WrapError(op, fmt.Errorf("%w: %w", ErrStorage, err))
	}

	return WrapError(op, err)
}

func IsCorruptState(err error) bool {
	return errors.Is(err, ErrCorruptState)
}

func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorage)
}
