package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrConflict            = errors.New("conflict")
	ErrEmailNotVerified    = errors.New("email not verified")
	ErrRateLimited         = errors.New("rate limited")
	ErrBackendUnavailable  = errors.New("backend unavailable")
	ErrProviderNotReady    = errors.New("identity provider not ready")
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrWalletNotConnected  = errors.New("wallet not connected")
	ErrInvalidTransition   = errors.New("invalid state transition")
	ErrFlowNotFound        = errors.New("flow not found")
	ErrExpiredActionCode   = errors.New("expired action code")
	ErrInvalidActionCode   = errors.New("invalid action code")
	ErrWeakPassword        = errors.New("weak password")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)

// Kind classifies a failure by how the UI must react to it.
type Kind string

const (
	KindNetwork      Kind = "network"
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindRateLimited  Kind = "rate_limited"
	KindProvider     Kind = "provider"
	KindUnauthorized Kind = "unauthorized"
	KindNotVerified  Kind = "not_verified"
	KindInvalidState Kind = "invalid_state"
	KindNotFound     Kind = "not_found"
	KindRejected     Kind = "rejected"
	KindUnknown      Kind = "unknown"
)

// Error codes shared with the backend and provider.
const (
	CodeEmailNotVerified   = "EMAIL_NOT_VERIFIED"
	CodeWalletConflict     = "WALLET_ALREADY_LINKED"
	CodeValidation         = "VALIDATION_ERROR"
	CodeRateLimited        = "RATE_LIMITED"
	CodeNetwork            = "NETWORK_ERROR"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeExpiredActionCode  = "EXPIRED_OOB_CODE"
	CodeInvalidActionCode  = "INVALID_OOB_CODE"
	CodeWeakPassword       = "WEAK_PASSWORD"
	CodeTooManyAttempts    = "TOO_MANY_ATTEMPTS_TRY_LATER"
	CodeInvalidState       = "INVALID_STATE"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeRejected           = "VERIFICATION_REJECTED"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeProviderNotReady   = "PROVIDER_NOT_READY"
)

// Human copy for each failure class. Raw backend payloads never reach the UI.
const (
	MsgNetwork         = "Network error. Please check your connection and try again."
	MsgWalletConflict  = "This wallet is already linked to another account. Please sign in with that account."
	MsgRateLimited     = "Too many requests. Please wait a few minutes before trying again."
	MsgExpiredCode     = "This link has expired. Please request a new one."
	MsgInvalidCode     = "This link is invalid or has already been used."
	MsgWeakPassword    = "Password is too weak. Use at least 8 characters with letters and numbers."
	MsgNotVerified     = "Please verify your email address before signing in."
	MsgUnauthorized    = "Your session has ended. Please sign in again."
	MsgInvalidLogin    = "Invalid email or password."
	MsgVerificationNo  = "Verification failed. Please try again."
	MsgProviderNoReady = "Still connecting to the sign-in service. Please try again in a moment."
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, kind Kind, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func Validation(message string) *AppError {
	return NewAppError(http.StatusBadRequest, KindValidation, CodeValidation, message, ErrInvalidInput)
}

func Network(err error) *AppError {
	return NewAppError(http.StatusBadGateway, KindNetwork, CodeNetwork, MsgNetwork, errors.Join(ErrBackendUnavailable, err))
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, KindConflict, CodeWalletConflict, message, ErrConflict)
}

func RateLimited(err error) *AppError {
	return NewAppError(http.StatusTooManyRequests, KindRateLimited, CodeRateLimited, MsgRateLimited, errors.Join(ErrRateLimited, err))
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, KindUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func NotVerified() *AppError {
	return NewAppError(http.StatusForbidden, KindNotVerified, CodeEmailNotVerified, MsgNotVerified, ErrEmailNotVerified)
}

func InvalidState(message string) *AppError {
	return NewAppError(http.StatusConflict, KindInvalidState, CodeInvalidState, message, ErrInvalidTransition)
}

func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, KindNotFound, CodeNotFound, message, ErrNotFound)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, KindUnknown, CodeInternalError, "Something went wrong. Please try again.", err)
}

func ProviderNotReady() *AppError {
	return NewAppError(http.StatusServiceUnavailable, KindInvalidState, CodeProviderNotReady, MsgProviderNoReady, ErrProviderNotReady)
}

func Rejected(message string) *AppError {
	if message == "" {
		message = MsgVerificationNo
	}
	return NewAppError(http.StatusUnprocessableEntity, KindRejected, CodeRejected, message, nil)
}

// Provider maps an identity-provider failure code to distinct copy.
func Provider(code string, err error) *AppError {
	switch code {
	case CodeExpiredActionCode:
		return NewAppError(http.StatusBadRequest, KindProvider, code, MsgExpiredCode, errors.Join(ErrExpiredActionCode, err))
	case CodeInvalidActionCode:
		return NewAppError(http.StatusBadRequest, KindProvider, code, MsgInvalidCode, errors.Join(ErrInvalidActionCode, err))
	case CodeWeakPassword:
		return NewAppError(http.StatusBadRequest, KindValidation, code, MsgWeakPassword, errors.Join(ErrWeakPassword, err))
	case CodeTooManyAttempts:
		return RateLimited(err)
	case "INVALID_PASSWORD", "EMAIL_NOT_FOUND", "INVALID_LOGIN_CREDENTIALS":
		return NewAppError(http.StatusUnauthorized, KindProvider, CodeInvalidCredentials, MsgInvalidLogin, errors.Join(ErrInvalidCredentials, err))
	}
	return NewAppError(http.StatusBadGateway, KindProvider, code, "Sign-in service error. Please try again.", errors.Join(ErrProviderUnavailable, err))
}

// As returns the AppError in err's chain, if any.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf classifies err. Errors that are not AppErrors are treated as network
// failures, which is what an unexplained transport error is from the UI's view.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindNetwork
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.Status
	}
	return 0
}

// IsConflict reports whether err is the wallet-already-linked conflict.
func IsConflict(err error) bool {
	return StatusOf(err) == http.StatusConflict && KindOf(err) == KindConflict
}

// UserMessage returns copy safe to show in the UI.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := As(err); ok && appErr.Message != "" {
		return appErr.Message
	}
	return MsgNetwork
}
