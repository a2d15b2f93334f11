package errors

import "fmt"

// FieldInvalid reports a field-level invariant violation. The message always
// names the field, e.g. "latitude must be between -90 and 90".
func FieldInvalid(field, constraint string) *Error {
	return New(CodeValidation, fmt.Sprintf("%s %s", field, constraint)).
		WithDetails(map[string]any{"field": field, "constraint": constraint})
}

// NotFound reports a missing entity, naming the exact reference that failed.
func NotFound(kind, id string) *Error {
	return New(CodeNotFound, fmt.Sprintf("%s %s not found", kind, id)).
		WithDetails(map[string]any{"entity": kind, "id": id})
}

// Uniqueness reports a value that is already taken by another record.
func Uniqueness(kind, field, value string) *Error {
	return New(CodeConflict, fmt.Sprintf("%s %s already in use", kind, field)).
		WithDetails(map[string]any{"entity": kind, "field": field, "value": value})
}

func Forbidden(reason string) *Error {
	return New(CodeForbidden, reason)
}

func Unauthenticated(reason string) *Error {
	return New(CodeUnauthorized, reason)
}

func InvalidCredentials() *Error {
	return New(CodeInvalidCreds, "invalid credentials")
}

func SelfReview() *Error {
	return New(CodeSelfReview, "you cannot review your own place")
}

func DuplicateReview() *Error {
	return New(CodeDuplicate, "you have already reviewed this place")
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}
