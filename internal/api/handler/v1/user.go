package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/api/handler/v1/request"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/domain"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/service"
)

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreditWallet(ctx context.Context, id uint, amount decimal.Decimal) (decimal.Decimal, error)
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

// HandleGetMe godoc
// @Summary      Get the authenticated user
// @Tags         users
// @Produce      json
// @Success      200      {object}   domain.User
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /users/me [get]
// @Security BearerAuth
func (h *UserHandler) HandleGetMe(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.svc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ctx.JSON(http.StatusOK, user)
}

// HandleListUsers godoc
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Success      200      {array}    domain.User
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/users [get]
// @Security BearerAuth
func (h *UserHandler) HandleListUsers(ctx *gin.Context) {
	users, err := h.svc.ListUsers(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, err, "v1.HandleListUsers -> h.svc.ListUsers")
		return
	}

	ctx.JSON(http.StatusOK, users)
}

// HandleCreditWallet godoc
// @Summary      Top up a user's wallet
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        uid       path      int  true  "user ID"
// @Param        request   body      request.CreditWalletRequest true "request body"
// @Success      200      {object}   response.WalletResponse
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/users/{uid}/wallet [post]
// @Security BearerAuth
func (h *UserHandler) HandleCreditWallet(ctx *gin.Context) {
	userID, err := parseIDParam(ctx, "uid")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.CreditWalletRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	wallet, err := h.svc.CreditWallet(ctx.Request.Context(), userID, req.Amount)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("user", "uid", userID))
			return
		}

		renderServiceErr(ctx, err, "v1.HandleCreditWallet -> h.svc.CreditWallet")
		return
	}

	ctx.JSON(http.StatusOK, response.WalletResponse{UserID: userID, Wallet: wallet})
}
