// Package apperr описывает таксономию ошибок бизнес-логики:
// каждая ошибка имеет вид (Kind) и стабильный машиночитаемый код (Code),
// по которым транспортный слой выбирает HTTP-статус и тело ответа.
package apperr

import (
	"errors"
	"fmt"
)

// Kind вид ошибки.
type Kind int

const (
	// KindStorage неожиданная ошибка хранилища или инфраструктуры.
	KindStorage Kind = iota
	// KindValidation некорректные или отсутствующие входные данные.
	KindValidation
	// KindAuth ошибки аутентификации и авторизации.
	KindAuth
	// KindForbidden доступ к чужим данным.
	KindForbidden
	// KindNotFound сущность не найдена.
	KindNotFound
	// KindConflict конфликт состояния.
	KindConflict
	// KindRateLimited превышен лимит запросов.
	KindRateLimited
	// KindUpstream недоступна внешняя система.
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	case KindUpstream:
		return "upstream"
	default:
		return "storage"
	}
}

// Error ошибка бизнес-логики.
type Error struct {
	Kind Kind
	Code string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по коду, поэтому errors.Is работает и для ошибок,
// созданных конструкторами, и для обёрнутых через Wrap.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap возвращает копию ошибки с причиной.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// Validation создаёт ошибку валидации.
func Validation(code, msg string) *Error {
	return &Error{Kind: KindValidation, Code: code, Msg: msg}
}

// NotFound создаёт ошибку отсутствия сущности.
func NotFound(code, msg string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Msg: msg}
}

// Storage оборачивает неожиданную ошибку хранилища.
func Storage(cause error) *Error {
	return ErrInternal.Wrap(cause)
}

// Коды и эталонные ошибки.
var (
	ErrInvalidCredentials   = &Error{Kind: KindAuth, Code: "INVALID_CREDENTIALS", Msg: "Invalid email or password."}
	ErrDuplicateEmail       = &Error{Kind: KindConflict, Code: "DUPLICATE_EMAIL", Msg: "Email is already registered."}
	ErrUnauthorized         = &Error{Kind: KindAuth, Code: "UNAUTHORIZED", Msg: "Authentication required."}
	ErrForbidden            = &Error{Kind: KindForbidden, Code: "FORBIDDEN", Msg: "Access to this resource is forbidden."}
	ErrNoUpdates            = Validation("NO_UPDATES", "No valid fields to update.")
	ErrNoUpdateFields       = Validation("NO_UPDATE_FIELDS", "At least one field (name or image) must be provided.")
	ErrInvalidStatus        = Validation("INVALID_STATUS", "Status must be one of: active, cancelled, expired.")
	ErrInvalidDelta         = Validation("INVALID_DELTA", "Usage delta must be between 0 and 2147483647.")
	ErrUsageOverflow        = Validation("USAGE_OVERFLOW", "Usage counter would exceed its maximum value.")
	ErrInvalidMonth         = Validation("INVALID_MONTH", "Month must be in YYYY-MM format.")
	ErrInvalidID            = Validation("INVALID_ID", "Valid ID is required.")
	ErrActiveConflict       = &Error{Kind: KindConflict, Code: "ACTIVE_CONFLICT", Msg: "Another active subscription was created concurrently."}
	ErrSubscriptionNotFound = NotFound("NOT_FOUND", "Subscription not found.")
	ErrUserNotFound         = NotFound("USER_NOT_FOUND", "User not found.")
	ErrPlanNotFound         = NotFound("PLAN_NOT_FOUND", "Subscription plan not found.")
	ErrServiceNotFound      = NotFound("SERVICE_NOT_FOUND", "Service not found.")
	ErrInternal             = &Error{Kind: KindStorage, Code: "INTERNAL_ERROR", Msg: "Internal server error."}

	ErrMissingFields      = Validation("MISSING_FIELDS", "Name, email, and password are required.")
	ErrMissingCredentials = Validation("MISSING_CREDENTIALS", "Email and password are required.")
	ErrPasswordTooShort   = Validation("PASSWORD_TOO_SHORT", "Password must be at least 8 characters long.")
	ErrPasswordTooLong    = Validation("PASSWORD_TOO_LONG", "Password must be at most 72 bytes long.")
	ErrInvalidName        = Validation("INVALID_NAME", "Name cannot be empty.")
	ErrInvalidPlanID      = Validation("INVALID_PLAN_ID", "Plan ID must be a positive integer.")
	ErrInvalidPrice       = Validation("INVALID_PRICE", "Price must be zero or positive.")
	ErrInvalidFeatures    = Validation("INVALID_FEATURES", "Features must be a non-empty list of strings.")
	ErrInvalidLimit       = Validation("INVALID_MONTHLY_LIMIT", "Monthly limit must be a positive integer.")
	ErrInvalidCategory    = Validation("INVALID_CATEGORY", "Category cannot be empty.")
	ErrInvalidDescription = Validation("INVALID_DESCRIPTION", "Description cannot be empty.")
	ErrMissingStartedAt   = Validation("MISSING_STARTED_AT", "Started date is required.")
	ErrDuplicateName      = &Error{Kind: KindConflict, Code: "DUPLICATE_NAME", Msg: "An entry with this name already exists."}
	ErrRateLimited        = &Error{Kind: KindRateLimited, Code: "RATE_LIMITED", Msg: "Too many requests. Please try again later."}
	ErrCaptchaFailed      = &Error{Kind: KindForbidden, Code: "CAPTCHA_FAILED", Msg: "reCAPTCHA verification failed."}
	ErrCaptchaLowScore    = &Error{Kind: KindForbidden, Code: "CAPTCHA_LOW_SCORE", Msg: "Request flagged as suspicious."}
	ErrUpstreamFailed     = &Error{Kind: KindUpstream, Code: "UPSTREAM_FAILED", Msg: "Message could not be delivered. Please try again later."}
)

// From извлекает *Error из цепочки. Любая другая ошибка считается ошибкой хранилища.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Storage(err)
}

// KindOf возвращает вид ошибки.
func KindOf(err error) Kind {
	return From(err).Kind
}
