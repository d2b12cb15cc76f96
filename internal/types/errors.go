package types

import (
	"errors"
	"fmt"
)

// The closed error set crossing the repository and service boundaries.
// The handler layer maps these to HTTP status codes; nothing else does.

// NotFoundError reports that a named resource does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// InvalidInputError reports a request that failed validation before
// touching storage.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return e.Reason
}

// StorageError wraps an unexpected failure from the storage engine.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func InvalidInput(reason string) error {
	return &InvalidInputError{Reason: reason}
}

func Storage(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsInvalidInput(err error) bool {
	var ii *InvalidInputError
	return errors.As(err, &ii)
}
