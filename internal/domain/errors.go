package domain

import (
	"errors"
	"fmt"
)

// Codes name the invariant or validation rule that rejected an operation so
// callers can render an actionable message.
const (
	CodeRequired            = "required"
	CodeInvalidAadhar       = "invalid_aadhar"
	CodeInvalidPhone        = "invalid_phone"
	CodeInvalidPrice        = "invalid_price"
	CodeInvalidDate         = "invalid_date"
	CodeInvalidBeds         = "invalid_beds"
	CodeInvalidAmount       = "invalid_amount"
	CodeInvalidStatus       = "invalid_status"
	CodeDuplicatePhone      = "duplicate_phone"
	CodeDuplicateAadhar     = "duplicate_aadhar"
	CodeDuplicateRoomNumber = "duplicate_room_number"
	CodeRoomNotFound        = "room_not_found"
	CodeBedNotFound         = "bed_not_found"
	CodeHostlerNotFound     = "hostler_not_found"
	CodePaymentNotFound     = "payment_not_found"
	CodeUserNotFound        = "user_not_found"
	CodeBedUnavailable      = "bed_unavailable"
	CodeBedOccupied         = "bed_occupied"
	CodeAllocationConflict  = "allocation_conflict"
	CodePaymentNotPending   = "payment_not_pending"
	CodeStoreUnavailable    = "store_unavailable"
	CodeInvalidCredentials  = "invalid_credentials"
	CodePaymentNotApproved  = "payment_not_approved"
)

// DomainError keeps backward compatibility for generic codes.
type DomainError struct {
	Code string
	Err  error
}

func (e DomainError) Error() string {
	if e.Err == nil {
		return e.Code
	}
	if e.Code == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e DomainError) Unwrap() error {
	return e.Err
}

type NotFoundError struct {
	Resource string
	Code     string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Code  string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Code     string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// UnavailableError wraps a transport or backing-store failure. It is
// surfaced as-is to the caller.
type UnavailableError struct {
	Op  string
	Err error
}

func (e UnavailableError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("store unavailable: %v", e.Err)
	}
	return fmt.Sprintf("store unavailable (%s): %v", e.Op, e.Err)
}

func (e UnavailableError) Unwrap() error { return e.Err }

// UnauthorizedError rejects a sign-in or a missing/invalid token.
type UnauthorizedError struct {
	Msg string
}

func (e UnauthorizedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "unauthorized"
}

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsUnavailable(err error) bool {
	var target UnavailableError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

// CodeOf returns the machine code carried by the first typed error in the chain.
func CodeOf(err error) string {
	var (
		nf NotFoundError
		ve ValidationError
		ce ConflictError
		ue UnavailableError
		au UnauthorizedError
		de DomainError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Code
	case errors.As(err, &nf):
		return nf.Code
	case errors.As(err, &ce):
		return ce.Code
	case errors.As(err, &ue):
		return CodeStoreUnavailable
	case errors.As(err, &au):
		return CodeInvalidCredentials
	case errors.As(err, &de):
		return de.Code
	}
	return ""
}

// Shorthand constructors for the errors the engine raises most.

func ErrRoomNotFound() error {
	return NotFoundError{Resource: "room", Code: CodeRoomNotFound}
}

func ErrBedNotFound(bedNo string) error {
	return NotFoundError{Resource: fmt.Sprintf("bed %q", bedNo), Code: CodeBedNotFound}
}

func ErrHostlerNotFound() error {
	return NotFoundError{Resource: "hostler", Code: CodeHostlerNotFound}
}

func ErrPaymentNotFound() error {
	return NotFoundError{Resource: "payment", Code: CodePaymentNotFound}
}

func ErrBedUnavailable(bedNo string) error {
	return ConflictError{Resource: "bed", Code: CodeBedUnavailable, Msg: fmt.Sprintf("bed %s is already occupied", bedNo)}
}

func ErrAllocationConflict() error {
	return ConflictError{Resource: "bed", Code: CodeAllocationConflict, Msg: "bed was modified concurrently, reload and retry"}
}
