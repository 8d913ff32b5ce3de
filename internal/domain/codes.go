package domain

import "errors"

// ErrorCode is the closed set of machine-readable failure codes returned by
// the registration and verification flows. Clients map each code to a
// user-facing message via MessageFor; a raw code is never shown as-is.
type ErrorCode string

const (
	CodeEmailAlreadyExists ErrorCode = "EMAIL_ALREADY_EXISTS"
	CodeInvalidAuthCode    ErrorCode = "INVALID_AUTH_CODE"
	CodeAuthCodeExpired    ErrorCode = "AUTH_CODE_EXPIRED"
	CodeOTPExpired         ErrorCode = "OTP_EXPIRED"
	CodeOTPInvalid         ErrorCode = "OTP_INVALID"
	CodeOTPMaxAttempts     ErrorCode = "OTP_MAX_ATTEMPTS"
	CodeWeakPassword       ErrorCode = "WEAK_PASSWORD"
	CodeRateLimited        ErrorCode = "RATE_LIMITED"
	CodeServerError        ErrorCode = "SERVER_ERROR"
	CodeDOBUnderage        ErrorCode = "DOB_UNDERAGE"
	CodeInvalidMobile      ErrorCode = "INVALID_MOBILE"
)

// ErrorCodes lists every code. Kept in sync with the constants above; the
// message map is tested for totality against this slice.
var ErrorCodes = []ErrorCode{
	CodeEmailAlreadyExists,
	CodeInvalidAuthCode,
	CodeAuthCodeExpired,
	CodeOTPExpired,
	CodeOTPInvalid,
	CodeOTPMaxAttempts,
	CodeWeakPassword,
	CodeRateLimited,
	CodeServerError,
	CodeDOBUnderage,
	CodeInvalidMobile,
}

var messages = map[ErrorCode]string{
	CodeEmailAlreadyExists: "An account with this email already exists. Try signing in instead.",
	CodeInvalidAuthCode:    "The authorization code is invalid. Please check and try again.",
	CodeAuthCodeExpired:    "The authorization code has expired. Please request a new one.",
	CodeOTPExpired:         "The verification code has expired. Please request a new one.",
	CodeOTPInvalid:         "Invalid verification code. Please check and try again.",
	CodeOTPMaxAttempts:     "Too many attempts. Please wait before trying again.",
	CodeWeakPassword:       "Your password does not meet the requirements.",
	CodeRateLimited:        "Too many requests. Please wait a moment and try again.",
	CodeServerError:        "Something went wrong on our end. Please try again later.",
	CodeDOBUnderage:        "You must be at least 13 years old to create an account.",
	CodeInvalidMobile:      "Please enter a valid mobile number in E.164 format.",
}

// MessageFor returns the user-facing message for a code. Unknown codes fall
// back to the SERVER_ERROR message so no raw code ever reaches a client.
func MessageFor(code ErrorCode) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return messages[CodeServerError]
}

// CodedError pairs an ErrorCode with one of the domain sentinels so handlers
// can derive both the HTTP status and the response code from a single error.
type CodedError struct {
	Code ErrorCode
	err  error
}

// NewError builds a CodedError wrapping the given sentinel.
func NewError(code ErrorCode, sentinel error) *CodedError {
	return &CodedError{Code: code, err: sentinel}
}

func (e *CodedError) Error() string { return string(e.Code) + ": " + MessageFor(e.Code) }

func (e *CodedError) Unwrap() error { return e.err }

// CodeOf extracts the ErrorCode from an error chain. The second return is
// false when no CodedError is present.
func CodeOf(err error) (ErrorCode, bool) {
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.Code, true
	}
	return "", false
}
