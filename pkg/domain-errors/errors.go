// Package domainerrors carries coded, transport-agnostic domain failures.
//
// Services return these (usually through New or Wrap) so that every rejected
// ledger operation surfaces a discriminated reason. Transports translate the
// Code into a status; the Category groups codes into the failure taxonomy
// callers reason about (policy, authorization, precondition, invariant).
package domainerrors

import (
	"errors"
	"fmt"
)

// Code is the discriminated reason of a failure.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeValidation         Code = "validation_error"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal_error"
	CodeInvariantViolation Code = "invariant_violation"

	// Access gate
	CodeNotOperational      Code = "not_operational"
	CodeNotOwner            Code = "not_owner"
	CodeCallerNotAuthorized Code = "caller_not_authorized"
	CodeReentrancy          Code = "reentrant_call"

	// Registry and ledger preconditions
	CodeAlreadyExists     Code = "already_exists"
	CodeAlreadyRegistered Code = "already_registered"
	CodeNotRegistered     Code = "not_registered"
	CodeDuplicateVote     Code = "duplicate_vote"
	CodeInsufficientFunds Code = "insufficient_funds"
	CodeNotPurchasable    Code = "record_not_purchasable"
	CodeNotPayable        Code = "record_not_payable"

	// Post-condition failures
	CodeVoteBookkeeping Code = "vote_bookkeeping_error"
)

// Category groups codes into the failure taxonomy.
type Category string

const (
	CategoryPolicyViolation      Category = "policy_violation"
	CategoryAuthorizationFailure Category = "authorization_failure"
	CategoryPreconditionFailure  Category = "precondition_failure"
	CategoryInvariantViolation   Category = "invariant_violation"
	CategoryValidation           Category = "validation"
	CategoryInternal             Category = "internal"
)

var codeCategories = map[Code]Category{
	CodeNotOperational: CategoryPolicyViolation,
	CodeReentrancy:     CategoryPolicyViolation,

	CodeNotOwner:            CategoryAuthorizationFailure,
	CodeCallerNotAuthorized: CategoryAuthorizationFailure,
	CodeUnauthorized:        CategoryAuthorizationFailure,
	CodeForbidden:           CategoryAuthorizationFailure,

	CodeNotFound:          CategoryPreconditionFailure,
	CodeConflict:          CategoryPreconditionFailure,
	CodeAlreadyExists:     CategoryPreconditionFailure,
	CodeAlreadyRegistered: CategoryPreconditionFailure,
	CodeNotRegistered:     CategoryPreconditionFailure,
	CodeDuplicateVote:     CategoryPreconditionFailure,
	CodeInsufficientFunds: CategoryPreconditionFailure,
	CodeNotPurchasable:    CategoryPreconditionFailure,
	CodeNotPayable:        CategoryPreconditionFailure,

	CodeInvariantViolation: CategoryInvariantViolation,
	CodeVoteBookkeeping:    CategoryInvariantViolation,

	CodeBadRequest:   CategoryValidation,
	CodeInvalidInput: CategoryValidation,
	CodeValidation:   CategoryValidation,
}

// Category returns the taxonomy class of the code. Unknown codes are internal.
func (c Code) Category() Category {
	if cat, ok := codeCategories[c]; ok {
		return cat
	}
	return CategoryInternal
}

// Error is a coded domain error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code, so callers can compare against
// a freshly built error: errors.Is(err, New(CodeDuplicateVote, "")).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New builds a coded error.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) error {
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether the outermost domain error in err's chain has code.
func HasCode(err error, code Code) bool {
	var de *Error
	if !errors.As(err, &de) {
		return false
	}
	return de.Code == code
}

// Is is shorthand for HasCode.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the outermost code in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// CategoryOf returns the taxonomy class of err.
func CategoryOf(err error) Category {
	return CodeOf(err).Category()
}
