package idp

import "errors"

// Code is the provider's machine-readable error code, as returned by
// the identity toolkit API.
type Code string

const (
	CodeEmailExists         Code = "EMAIL_EXISTS"
	CodeInvalidEmail        Code = "INVALID_EMAIL"
	CodeOperationNotAllowed Code = "OPERATION_NOT_ALLOWED"
	CodeWeakPassword        Code = "WEAK_PASSWORD"
	CodeUserDisabled        Code = "USER_DISABLED"
	CodeUserNotFound        Code = "EMAIL_NOT_FOUND"
	CodeWrongPassword       Code = "INVALID_PASSWORD"
	CodeInvalidCredentials  Code = "INVALID_LOGIN_CREDENTIALS"
	CodeTooManyAttempts     Code = "TOO_MANY_ATTEMPTS_TRY_LATER"
	// CodeNetwork is not a provider code: it marks transport failures
	// on the way to the provider.
	CodeNetwork Code = "NETWORK_REQUEST_FAILED"
)

// Error is a failed provider operation. The raw code and message must
// never reach a user untranslated; usermsg.ForCode maps codes to
// localized messages.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}

	return string(e.Code) + ": " + e.Message
}

// AsError returns the provider error inside err, if any.
func AsError(err error) (*Error, bool) {
	var perr *Error
	if errors.As(err, &perr) {
		return perr, true
	}

	return nil, false
}
