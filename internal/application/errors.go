package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateCategory = errors.New("duplicate category")
	ErrInvalidMerge      = errors.New("invalid merge")
	ErrInvalidSplit      = errors.New("invalid split")
	ErrPersistence       = errors.New("persistence unavailable")
)

// NotFoundError marks an item that vanished between suggestion and sync.
// Sync classifies it as skipped, not failed.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("item %s: not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StoreOperationError represents a create/move call rejected by the bookmark
// store.
type StoreOperationError struct {
	Op  string
	ID  string
	Err error
}

func (e *StoreOperationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
}

func (e *StoreOperationError) Unwrap() error {
	return e.Err
}

// DuplicateCategoryError rejects a rename whose target name is already a
// canonical category.
type DuplicateCategoryError struct {
	Name string
}

func (e *DuplicateCategoryError) Error() string {
	return fmt.Sprintf("category %q already exists", e.Name)
}

func (e *DuplicateCategoryError) Is(target error) bool {
	return target == ErrDuplicateCategory
}

// InvalidMergeError rejects a merge whose preconditions do not hold.
type InvalidMergeError struct {
	Reason string
}

func (e *InvalidMergeError) Error() string {
	return fmt.Sprintf("cannot merge: %s", e.Reason)
}

func (e *InvalidMergeError) Is(target error) bool {
	return target == ErrInvalidMerge
}

// InvalidSplitError rejects a split whose preconditions do not hold.
type InvalidSplitError struct {
	Reason string
}

func (e *InvalidSplitError) Error() string {
	return fmt.Sprintf("cannot split: %s", e.Reason)
}

func (e *InvalidSplitError) Is(target error) bool {
	return target == ErrInvalidSplit
}

// PersistenceError wraps a failed state-store call. The learner logs and
// swallows these; in-memory state stays authoritative for the session.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
