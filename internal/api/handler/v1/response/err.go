package response

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Stable error kinds returned to clients.
const (
	KindValidation        = "ValidationError"
	KindUserNotFound      = "UserNotFound"
	KindTicketNotFound    = "TicketNotFound"
	KindRewardNotFound    = "RewardNotFound"
	KindInsufficientFunds = "InsufficientFunds"
	KindTicketUnavailable = "TicketUnavailable"
	KindAlreadyClaimed    = "AlreadyClaimed"
	KindCapacityExhausted = "CapacityExhausted"
	KindStoreError        = "StoreError"
	KindUnauthorized      = "Unauthorized"
	KindPermissionDenied  = "PermissionDenied"
	KindEmailExists       = "EmailExists"
	KindWrongCredentials  = "WrongCredentials"
)

type Err struct {
	HTTPStatusCode int    `json:"-"`
	Kind           string `json:"kind" example:"ValidationError"`
	Message        string `json:"message" example:"quantity: must be no less than 1."`

	cause error
}

func (e *Err) Error() string {
	return e.Message
}

func (e *Err) Unwrap() error {
	return e.cause
}

func RenderErr(ctx *gin.Context, e *Err) {
	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("request_id", requestid.Get(ctx)),
			zap.String("path", ctx.FullPath()),
			zap.Error(e.cause),
		)
	}

	ctx.JSON(e.HTTPStatusCode, e)
}

// New builds an error body of the given kind; the message is err's text.
func New(status int, kind string, err error) *Err {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}

	return &Err{
		HTTPStatusCode: status,
		Kind:           kind,
		Message:        msg,
		cause:          err,
	}
}

func ErrBadRequest(err error) *Err {
	return New(http.StatusBadRequest, KindValidation, err)
}

func ErrNotFound(resource, field string, value any) *Err {
	kind := map[string]string{
		"user":   KindUserNotFound,
		"ticket": KindTicketNotFound,
		"reward": KindRewardNotFound,
	}[resource]

	return New(http.StatusNotFound, kind, fmt.Errorf("%s with %s %v not found", resource, field, value))
}

func ErrUnauthorized(err error) *Err {
	return New(http.StatusUnauthorized, KindUnauthorized, err)
}

func ErrWrongCredentials(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusUnauthorized,
		Kind:           KindWrongCredentials,
		Message:        "email or password is incorrect",
		cause:          err,
	}
}

func ErrPermissionDenied(err error) *Err {
	return New(http.StatusForbidden, KindPermissionDenied, err)
}

// ErrInternalServerError hides err from the client; it is only logged.
func ErrInternalServerError(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusInternalServerError,
		Kind:           KindStoreError,
		Message:        "something went wrong",
		cause:          err,
	}
}
