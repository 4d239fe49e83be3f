// Package apierror defines the error kinds handlers return and how each one
// is rendered as an HTTP response.
package apierror

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Kind int

const (
	KindBadRequest Kind = iota + 1
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindStorage
)

// Status is the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindBadRequest, KindConflict:
		return http.StatusBadRequest
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func BadRequest(msg string) *Error {
	return &Error{Kind: KindBadRequest, Message: msg}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Conflict is a business-rule rejection that carries per-item details.
func Conflict(msg string, details any) *Error {
	return &Error{Kind: KindConflict, Message: msg, Details: details}
}

// Storage wraps a persistence failure. Callers roll back before returning it.
// Respond marks it as retryable.
func Storage(msg string, err error) *Error {
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

// From converts any error into an *Error. Unknown errors become storage errors.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Error{Kind: KindNotFound, Message: "record not found", Err: err}
	}
	return Storage("storage error", err)
}

const retryHint = ", please retry"

// Respond writes err as a JSON body and aborts the chain.
func Respond(c *gin.Context, err error) {
	apiErr := From(err)

	if apiErr.Kind == KindStorage {
		level := slog.LevelError
		if errors.Is(err, context.Canceled) {
			level = slog.LevelWarn
		}
		slog.Log(c.Request.Context(), level, "request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Any("error", err),
		)
	}
	if apiErr.Kind == KindUnauthenticated {
		c.Header("WWW-Authenticate", "Bearer")
	}

	msg := apiErr.Message
	if apiErr.Kind == KindStorage {
		msg += retryHint
	}
	body := gin.H{"error": msg}
	if apiErr.Details != nil {
		body["details"] = apiErr.Details
	}
	c.AbortWithStatusJSON(apiErr.Kind.Status(), body)
}
