package prerr

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

const (
	CodeNotFound             = "NOT_FOUND"
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeConflict             = "CONFLICT"
	CodePasswordMismatch     = "PASSWORD_MISMATCH"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeEmailNotVerified     = "EMAIL_NOT_VERIFIED"
	CodeAccountDisabled      = "ACCOUNT_DISABLED"
	CodeInvalidCode          = "INVALID_CODE"
	CodeCodeExpired          = "CODE_EXPIRED"
	CodeTooManyAttempts      = "TOO_MANY_ATTEMPTS"
	CodeListingLimitReached  = "LISTING_LIMIT_REACHED"
	CodeListingRejected      = "LISTING_REJECTED"
	CodeSubscriptionRequired = "SUBSCRIPTION_REQUIRED"
	CodePaymentProvider      = "PAYMENT_PROVIDER_ERROR"
	CodeTooManyRequests      = "TOO_MANY_REQUESTS"
	CodeInternalError        = "INTERNAL_ERROR"
)

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = New(fiber.StatusNotFound, CodeNotFound, "resource not found with given parameters")

	// ErrInvalidReq is returned when a request is invalid.
	ErrInvalidReq = New(fiber.StatusBadRequest, CodeInvalidRequest, "invalid request: some or all request parameters are invalid")

	// ErrUnauthorized is returned when the request carries no valid credentials.
	ErrUnauthorized = New(fiber.StatusUnauthorized, CodeUnauthorized, "authentication required")

	// ErrForbidden is returned when the authenticated user may not perform the operation.
	ErrForbidden = New(fiber.StatusForbidden, CodeForbidden, "you are not allowed to perform this operation")

	// ErrConflict is returned when a unique resource already exists.
	ErrConflict = New(fiber.StatusConflict, CodeConflict, "resource already exists")

	ErrPasswordMismatch   = New(fiber.StatusBadRequest, CodePasswordMismatch, "passwords do not match")
	ErrInvalidCredentials = New(fiber.StatusUnauthorized, CodeInvalidCredentials, "invalid email or password")
	ErrEmailNotVerified   = New(fiber.StatusForbidden, CodeEmailNotVerified, "email address has not been verified yet")
	ErrAccountDisabled    = New(fiber.StatusForbidden, CodeAccountDisabled, "this account has been disabled")

	ErrInvalidCode     = New(fiber.StatusBadRequest, CodeInvalidCode, "verification code is invalid")
	ErrCodeExpired     = New(fiber.StatusBadRequest, CodeCodeExpired, "verification code has expired, please request a new one")
	ErrTooManyAttempts = New(fiber.StatusTooManyRequests, CodeTooManyAttempts, "too many attempts, please request a new code")

	ErrListingLimitReached  = New(fiber.StatusForbidden, CodeListingLimitReached, "your subscription does not allow more active listings")
	ErrListingRejected      = New(fiber.StatusUnprocessableEntity, CodeListingRejected, "listing was rejected by moderation rules")
	ErrSubscriptionRequired = New(fiber.StatusPaymentRequired, CodeSubscriptionRequired, "an active subscription is required")
	ErrPaymentProvider      = New(fiber.StatusBadGateway, CodePaymentProvider, "payment provider is unavailable, please try again")

	ErrTooManyRequests = New(fiber.StatusTooManyRequests, CodeTooManyRequests, "your client is sending requests too frequently, please slow down")

	// ErrInternalError is returned when an internal error occurs.
	ErrInternalError = New(fiber.StatusInternalServerError, CodeInternalError, "internal server error occurred")
)

type Extras map[string]any

type Error struct {
	StatusCode int     `json:"-" example:"400"`
	ErrorCode  string  `json:"code" example:"INVALID_REQUEST"`
	Message    string  `json:"message" example:"invalid request: some or all request parameters are invalid"`
	Extras     *Extras `json:"-"`
}

func New(statusCode int, errorCode string, message string) *Error {
	return &Error{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

func (e Error) Msg(format string, parts ...any) *Error {
	e.Message = fmt.Sprintf(format, parts...)
	return &e
}

func (e Error) WithExtras(extras Extras) *Error {
	e.Extras = &extras
	return &e
}

func NewInvalidViolations(violations any) *Error {
	// copy ErrInvalidReq as e
	e := *ErrInvalidReq
	e.Extras = &Extras{
		"violations": violations,
	}
	return &e
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrorCode, e.Message)
}

// Is reports whether target carries the same error code, so that copies made
// through Msg or WithExtras still match their sentinel with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.ErrorCode == t.ErrorCode
}
