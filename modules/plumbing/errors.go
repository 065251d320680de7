package plumbing

import (
	"errors"
	"fmt"
)

// IoError wraps an underlying filesystem/IO failure so callers can
// distinguish "object not found" from "disk unreadable" without peeling
// apart os.PathError themselves.
type IoError struct {
	Err error
}

func NewErrIo(err error) error {
	return &IoError{Err: err}
}

func (e *IoError) Error() string { return fmt.Sprintf("io error: %v", e.Err) }
func (e *IoError) Unwrap() error { return e.Err }

func IsErrIo(err error) bool {
	var e *IoError
	return errors.As(err, &e)
}

// NotFoundError reports that an oid is not present in the object store.
type NotFoundError struct {
	Oid Hash
}

func NewErrNotFound(oid Hash) error {
	return &NotFoundError{Oid: oid}
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("object not found: %s", e.Oid) }

func IsErrNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// TypeMismatchError reports that an object was decoded expecting one type
// but its stored type prefix names another.
type TypeMismatchError struct {
	Oid      Hash
	Expected string
	Actual   string
}

func NewErrTypeMismatch(oid Hash, expected, actual string) error {
	return &TypeMismatchError{Oid: oid, Expected: expected, Actual: actual}
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("object %s: expected %s, got %s", e.Oid, e.Expected, e.Actual)
}

func IsErrTypeMismatch(err error) bool {
	var e *TypeMismatchError
	return errors.As(err, &e)
}

// MalformedObjectError reports that an object's payload could not be
// parsed as its declared type.
type MalformedObjectError struct {
	Oid    Hash
	Reason string
}

func NewErrMalformedObject(oid Hash, reason string) error {
	return &MalformedObjectError{Oid: oid, Reason: reason}
}

func (e *MalformedObjectError) Error() string {
	return fmt.Sprintf("malformed object %s: %s", e.Oid, e.Reason)
}

func IsErrMalformedObject(err error) bool {
	var e *MalformedObjectError
	return errors.As(err, &e)
}

// UnknownNameError reports that a name could not be resolved to an oid by
// any of the name resolution rules (HEAD, ref, short ref, raw hex oid).
type UnknownNameError struct {
	Name string
}

func NewErrUnknownName(name string) error {
	return &UnknownNameError{Name: name}
}

func (e *UnknownNameError) Error() string { return fmt.Sprintf("unknown name: %q", e.Name) }

func IsErrUnknownName(err error) bool {
	var e *UnknownNameError
	return errors.As(err, &e)
}

// InvalidStateError reports that an operation was attempted while the
// repository is in a state that forbids it (e.g. resetting a detached HEAD,
// or pushing an update that is not a fast-forward).
type InvalidStateError struct {
	Reason string
}

func NewErrInvalidState(reason string) error {
	return &InvalidStateError{Reason: reason}
}

func (e *InvalidStateError) Error() string { return fmt.Sprintf("invalid state: %s", e.Reason) }

func IsErrInvalidState(err error) bool {
	var e *InvalidStateError
	return errors.As(err, &e)
}

// NoCommonAncestorError reports that two commits share no common ancestor,
// making a merge-base (and therefore a three-way merge) impossible.
type NoCommonAncestorError struct {
	A, B Hash
}

func NewErrNoCommonAncestor(a, b Hash) error {
	return &NoCommonAncestorError{A: a, B: b}
}

func (e *NoCommonAncestorError) Error() string {
	return fmt.Sprintf("no common ancestor between %s and %s", e.A, e.B)
}

func IsErrNoCommonAncestor(err error) bool {
	var e *NoCommonAncestorError
	return errors.As(err, &e)
}
