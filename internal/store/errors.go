package store

import "errors"

// Repository errors. Services translate these into coded domain errors.
var (
	// ErrNotFound means the addressed row does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists means a UNIQUE constraint rejected the write.
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrReferenced means the row is still referenced and cannot be deleted.
	ErrReferenced = errors.New("resource is referenced")
	// ErrParentNotFound means an insert named a parent row that does not exist.
	ErrParentNotFound = errors.New("parent resource not found")
)
