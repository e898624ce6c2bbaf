package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAuthentication  = errors.New("authentication failed")
	ErrUnauthenticated = errors.New("no active session")
	ErrValidation      = errors.New("validation failed")
	ErrStoreOperation  = errors.New("store operation failed")
	ErrNotFound        = errors.New("record not found")
	ErrGeneration      = errors.New("text generation failed")
)

// ValidationError reports an out-of-range form value.
type ValidationError struct {
	Field string
	Value any
	Min   any
	Max   any
}

func (e *ValidationError) Error() string {
	if e.Min == nil && e.Max == nil {
		return fmt.Sprintf("%s=%v is invalid", e.Field, e.Value)
	}
	return fmt.Sprintf("%s=%v out of range [%v, %v]", e.Field, e.Value, e.Min, e.Max)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// StoreError is a failed call against the record store.
type StoreError struct {
	Op  string
	ID  int64
	Err error
}

func (e *StoreError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s id=%d: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreOperation }
