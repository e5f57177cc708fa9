package users

import (
	stderrors "errors"
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeMailTaken        = "account_mail_taken"
	TextCodeAccountNotFound  = "account_not_found"
	TextCodeSessionNotFound  = "session_binding_not_found"
	TextCodeAdminRequired    = "admin_capability_required"
	TextCodeMailChange       = "mail_change_not_implemented"
	TextCodeInvalidCreds     = "invalid_credentials"
	TextCodeEmptyCredential  = "credential_empty"
	TextCodeSessionUndecoded = "session_not_decoded"
	TextCodeSessionBadClaims = "session_bad_claims"
)

// ErrMailTaken is returned when the mail address is already bound to an account.
var ErrMailTaken = errors.New("mail address already registered", errors.CategoryConflict).
	WithTextCode(TextCodeMailTaken).
	WithCode(errors.CodeConflict)

// ErrAccountNotFound is the error we return for non found accounts
var ErrAccountNotFound = errors.New("account not found", errors.CategoryNotFound).
	WithTextCode(TextCodeAccountNotFound).
	WithCode(errors.CodeNotFound)

// ErrNoSessionBinding is returned when the caller's session maps to no account.
var ErrNoSessionBinding = errors.New("no account bound to session", errors.CategoryAuth).
	WithTextCode(TextCodeSessionNotFound).
	WithCode(errors.CodeUnauthorized)

// ErrAdminRequired is returned when a caller lacks the administrative capability.
var ErrAdminRequired = errors.New("administrative capability required", errors.CategoryAuthz).
	WithTextCode(TextCodeAdminRequired).
	WithCode(errors.CodeForbidden)

// ErrMailChangeNotImplemented is the fixed failure of the mail change path.
// The operation is defined but intentionally unimplemented; callers must
// receive this error rather than a silent success.
var ErrMailChangeNotImplemented = errors.New("mail change is not implemented", errors.CategoryOperation).
	WithTextCode(TextCodeMailChange)

// ErrMismatchedHashAndPassword is returned when a credential check fails
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString is returned when a credential primitive gets an empty value
var ErrNoEmptyString = errors.New("value cannot be an empty string", errors.CategoryBadInput).
	WithTextCode(TextCodeEmptyCredential).
	WithCode(errors.CodeBadRequest)

// ErrUnableToDecodeSession unable to decode token from session context
var ErrUnableToDecodeSession = errors.New("unable to decode session", errors.CategoryAuth).
	WithTextCode(TextCodeSessionUndecoded).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToMapClaims unable to get claims from session token
var ErrUnableToMapClaims = errors.New("unable to map claims", errors.CategoryAuth).
	WithTextCode(TextCodeSessionBadClaims).
	WithCode(errors.CodeUnauthorized)

// IsUniqueViolation will check for unique constraint store errors. The mail
// column carries a unique constraint so concurrent registrations that pass
// the availability pre-check still fail here instead of persisting twice.
// The repository layer wraps driver errors with its own message, so we walk
// the whole chain rather than matching the top-level text.
func IsUniqueViolation(err error) bool {
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		msg := e.Error()
		if strings.Contains(msg, "UNIQUE constraint failed") ||
			strings.Contains(msg, "duplicate key value") ||
			strings.Contains(msg, "Duplicate entry") {
			return true
		}
	}
	return false
}
