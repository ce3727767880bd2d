package utils

import (
	"errors"
	"fmt"
)

var ErrorRecordNotFound = errors.New("record not found")

// NotFoundError reports a failed document scan. It carries the full search
// key and how many files were inspected so an operator can locate the
// underlying document by hand; there is no automated recovery path.
type NotFoundError struct {
	Resource     string
	SearchKey    string
	FilesScanned int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found for %s (scanned %d files)", e.Resource, e.SearchKey, e.FilesScanned)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrorRecordNotFound
}

// ValidationError rejects malformed caller input before any storage I/O.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// InsufficientQuantityError rejects a deduction that would drive an
// inventory line negative.
type InsufficientQuantityError struct {
	SearchKey string
	Available string
	Requested string
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("insufficient quantity for %s: available %s, requested %s", e.SearchKey, e.Available, e.Requested)
}

// PersistError wraps a store write that failed after a match was already
// found. Writes preceding it in the same plan are NOT rolled back; the
// caller decides whether to retry.
type PersistError struct {
	Key string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist %s: %v", e.Key, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// RollMismatchError fails a roll transfer whose requested roll numbers are
// missing from the group or sitting at the wrong warehouse. The whole
// transfer is rejected; no roll is moved.
type RollMismatchError struct {
	FabricType     string
	Color          string
	Lot            int
	OffendingRolls []int
}

func (e *RollMismatchError) Error() string {
	return fmt.Sprintf("roll transfer rejected for %s/%s lot %d: offending rolls %v", e.FabricType, e.Color, e.Lot, e.OffendingRolls)
}
