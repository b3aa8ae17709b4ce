package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDataUnavailable    = errors.New("catalog data unavailable")
	ErrStorageReadCorrupt = errors.New("stored data is corrupt")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrStorageWrite       = errors.New("storage write failed")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrMissingField       = errors.New("missing required field")
	ErrInvalidInput       = errors.New("invalid input")
)

// StorageWriteError reports a failed persistence write for a storage key.
type StorageWriteError struct {
	Key string
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("write %q: %v", e.Key, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrStorageWrite) match any StorageWriteError.
func (e *StorageWriteError) Is(target error) bool { return target == ErrStorageWrite }

// MissingFieldError names the checkout fields that were left blank.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required fields: %v", e.Fields)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }
