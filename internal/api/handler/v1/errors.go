package v1

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/service"
)

// serviceErrs maps service failures to client errors. Detailed entries show the wrapped
// message; the rest show only the sentinel text.
var serviceErrs = []struct {
	target   error
	status   int
	kind     string
	detailed bool
}{
	{service.ErrValidation, http.StatusBadRequest, response.KindValidation, true},
	{service.ErrPriceMismatch, http.StatusBadRequest, response.KindValidation, false},
	{service.ErrUserNotFound, http.StatusNotFound, response.KindUserNotFound, false},
	{service.ErrTicketNotFound, http.StatusNotFound, response.KindTicketNotFound, false},
	{service.ErrRewardNotFound, http.StatusNotFound, response.KindRewardNotFound, false},
	{service.ErrInsufficientFunds, http.StatusPaymentRequired, response.KindInsufficientFunds, false},
	{service.ErrTicketUnavailable, http.StatusConflict, response.KindTicketUnavailable, false},
	{service.ErrTicketNotSold, http.StatusConflict, response.KindTicketUnavailable, false},
	{service.ErrAlreadyClaimed, http.StatusConflict, response.KindAlreadyClaimed, false},
	{service.ErrUserEmailExists, http.StatusConflict, response.KindEmailExists, false},
	{service.ErrCapacityExhausted, http.StatusServiceUnavailable, response.KindCapacityExhausted, true},
}

func renderServiceErr(ctx *gin.Context, err error, where string) {
	for _, e := range serviceErrs {
		if !errors.Is(err, e.target) {
			continue
		}

		msg := e.target
		if e.detailed {
			msg = err
		}
		response.RenderErr(ctx, response.New(e.status, e.kind, msg))
		return
	}

	response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%s -> %w", where, err)))
}

func parseIDParam(ctx *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}

	return uint(id), nil
}
