package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind classifies an application error. Validation and empty-cart failures
// are local and never retried; storage and publish failures are surfaced so
// the surrounding channel's redelivery policy applies.
type Kind string

const (
	KindValidation Kind = "validation_error"
	KindEmptyCart  Kind = "empty_cart_error"
	KindStorage    Kind = "storage_error"
	KindPublish    Kind = "publish_error"
	KindInternal   Kind = "internal_error"
)

// Error represents an application error
type Error struct {
	Kind    Kind   `json:"kind"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind so sentinel comparisons survive wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	if stderrors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// JSON returns the error as a JSON string
func (e *Error) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// New creates a new Error
func New(kind Kind, code int, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation builds a client-side failure for a missing or malformed field.
func Validation(message string) *Error {
	return New(KindValidation, http.StatusBadRequest, message, nil)
}

// EmptyCart builds the failure returned when checkout hits a missing or
// empty cart.
func EmptyCart(userName string) *Error {
	return New(KindEmptyCart, http.StatusBadRequest, fmt.Sprintf("no items in cart for user %s", userName), nil)
}

// Storage wraps a store read/write/delete failure.
func Storage(op string, err error) *Error {
	return New(KindStorage, http.StatusInternalServerError, op+" failed", err)
}

// Publish wraps a channel publish failure.
func Publish(op string, err error) *Error {
	return New(KindPublish, http.StatusInternalServerError, op+" failed", err)
}

// Sentinels for errors.Is checks.
var (
	ErrValidation = &Error{Kind: KindValidation, Code: http.StatusBadRequest, Message: "Validation error"}
	ErrEmptyCart  = &Error{Kind: KindEmptyCart, Code: http.StatusBadRequest, Message: "Empty cart"}
	ErrStorage    = &Error{Kind: KindStorage, Code: http.StatusInternalServerError, Message: "Storage error"}
	ErrPublish    = &Error{Kind: KindPublish, Code: http.StatusInternalServerError, Message: "Publish error"}

	ErrInternalServer = &Error{Kind: KindInternal, Code: http.StatusInternalServerError, Message: "Internal server error"}
)

// AsError coerces any error into an *Error, defaulting to an internal one.
func AsError(err error) *Error {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return New(KindInternal, http.StatusInternalServerError, "Internal server error", err)
}

// HandleError writes an error as a structured JSON response.
func HandleError(w http.ResponseWriter, err error) {
	appErr := AsError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Code)
	w.Write([]byte(appErr.JSON()))
}

// ErrorMiddleware converts errors attached to the gin context into a
// structured failure payload with kind and message.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			appErr := AsError(c.Errors.Last().Err)
			c.JSON(appErr.Code, appErr)
			c.Abort()
		}
	}
}
