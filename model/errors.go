package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iamteem/redisco/field"
)

// ErrMissingID is returned when an operation that requires a persisted
// instance (Delete, RelatedSet) is attempted on a new one.
var ErrMissingID = errors.New("model: instance has no id")

// ErrAttributeNotIndexed is returned when Filter, or one of the range
// predicates (Lt, Le, Gt, Ge, Between, Eq), names a field that was not
// registered with Indexed: true.
var ErrAttributeNotIndexed = errors.New("model: attribute not indexed")

// ErrUnknownRelation is returned by RelatedSet for an unregistered
// relatedName, or when the source model of a reverse accessor was never
// registered.
var ErrUnknownRelation = errors.New("model: unknown relation")

// ErrNotFound is returned by GetByID and Query.At when no record matches.
var ErrNotFound = errors.New("model: not found")

// FieldValidationError aggregates every field.FieldError raised by a
// failed IsValid call, mirroring the source's ValidationError(errors).
type FieldValidationError struct {
	Model  string
	Errors []field.FieldError
}

func (e *FieldValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Error()
	}
	return fmt.Sprintf("model %s: validation failed: %s", e.Model, strings.Join(parts, "; "))
}

// StorageError wraps an underlying client/transport failure encountered
// while talking to Redis, keeping the failing operation's name attached.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("model: %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

func wrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
