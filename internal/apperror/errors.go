// Package apperror описывает типизированные ошибки приложения.
// Каждый Kind имеет стабильный машиночитаемый код и HTTP-статус,
// поэтому транспортный слой не разбирает текст ошибок.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	Internal Kind = iota
	TokenMissing
	TokenInvalid
	TokenExpired
	TokenBlacklisted
	InvalidCredentials
	Unauthorized
	AccountLocked
	UserInactive
	RefreshInvalid
	RefreshExpired
	RefreshRevoked
	Forbidden
	NotFound
	Conflict
	Validation
	CSRFMissing
	CSRFInvalid
	RateLimited
)

var kindInfo = map[Kind]struct {
	code   string
	status int
}{
	Internal:           {"INTERNAL_ERROR", http.StatusInternalServerError},
	TokenMissing:       {"TOKEN_MISSING", http.StatusUnauthorized},
	TokenInvalid:       {"TOKEN_INVALID", http.StatusUnauthorized},
	TokenExpired:       {"TOKEN_EXPIRED", http.StatusUnauthorized},
	TokenBlacklisted:   {"TOKEN_BLACKLISTED", http.StatusUnauthorized},
	InvalidCredentials: {"INVALID_CREDENTIALS", http.StatusUnauthorized},
	Unauthorized:       {"UNAUTHORIZED", http.StatusUnauthorized},
	AccountLocked:      {"ACCOUNT_LOCKED", http.StatusLocked},
	UserInactive:       {"USER_INACTIVE", http.StatusForbidden},
	RefreshInvalid:     {"REFRESH_TOKEN_INVALID", http.StatusBadRequest},
	RefreshExpired:     {"REFRESH_TOKEN_EXPIRED", http.StatusUnauthorized},
	RefreshRevoked:     {"REFRESH_TOKEN_REVOKED", http.StatusUnauthorized},
	Forbidden:          {"FORBIDDEN", http.StatusForbidden},
	NotFound:           {"NOT_FOUND", http.StatusNotFound},
	Conflict:           {"CONFLICT", http.StatusConflict},
	Validation:         {"VALIDATION_ERROR", http.StatusBadRequest},
	CSRFMissing:        {"CSRF_MISSING", http.StatusForbidden},
	CSRFInvalid:        {"CSRF_INVALID", http.StatusForbidden},
	RateLimited:        {"RATE_LIMITED", http.StatusTooManyRequests},
}

// Code : стабильный код ошибки для клиента
func (k Kind) Code() string {
	if info, ok := kindInfo[k]; ok {
		return info.code
	}
	return kindInfo[Internal].code
}

func (k Kind) HTTPStatus() int {
	if info, ok := kindInfo[k]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

func (k Kind) String() string {
	return k.Code()
}

// Error : ошибка приложения
// CodeOverride уточняет код внутри одного Kind (например EMAIL_DUPLICATED для Conflict).
type Error struct {
	Kind         Kind
	Message      string
	CodeOverride string
	Err          error
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

func (e *Error) Code() string {
	if e.CodeOverride != "" {
		return e.CodeOverride
	}
	return e.Kind.Code()
}

func (e *Error) HTTPStatus() int {
	return e.Kind.HTTPStatus()
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithCode : ошибка с уточненным кодом
func WithCode(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Message: message, CodeOverride: code}
}

// As достает *Error из цепочки. Для нетипизированных ошибок возвращает false.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf : Kind ошибки, Internal для нетипизированных
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return Internal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
