package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/api/handler/v1/request"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/domain"
)

type AdminService interface {
	Allocate(ctx context.Context, quantity int, price decimal.Decimal) ([]domain.Ticket, error)
	CreateReward(ctx context.Context, rewardType string, money decimal.Decimal) (domain.Reward, error)
	AssignReward(ctx context.Context, ticketID, rewardID uint) error
	RewardedTickets(ctx context.Context) ([]domain.RewardedTicket, error)
	Reset(ctx context.Context) (domain.ResetSummary, error)
}

type AdminHandler struct {
	svc AdminService
}

func NewAdminHandler(svc AdminService) *AdminHandler {
	return &AdminHandler{
		svc: svc,
	}
}

// HandleCreateLottos godoc
// @Summary      Issue a batch of tickets
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateLottosRequest  true  "request body"
// @Success      201  {array}   domain.Ticket
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Failure      503  {object}  response.Err
// @Router       /admin/lottos [post]
// @Security BearerAuth
func (h *AdminHandler) HandleCreateLottos(ctx *gin.Context) {
	var req request.CreateLottosRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	tickets, err := h.svc.Allocate(ctx.Request.Context(), req.Quantity, req.Price)
	if err != nil {
		renderServiceErr(ctx, err, "v1.HandleCreateLottos -> h.svc.Allocate")
		return
	}

	ctx.JSON(http.StatusCreated, tickets)
}

// HandleCreateReward godoc
// @Summary      Create a reward tier
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateRewardRequest  true  "request body"
// @Success      201  {object}  domain.Reward
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/rewards [post]
// @Security BearerAuth
func (h *AdminHandler) HandleCreateReward(ctx *gin.Context) {
	var req request.CreateRewardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	reward, err := h.svc.CreateReward(ctx.Request.Context(), req.Type, req.Money)
	if err != nil {
		renderServiceErr(ctx, err, "v1.HandleCreateReward -> h.svc.CreateReward")
		return
	}

	ctx.JSON(http.StatusCreated, reward)
}

// HandleAssignReward godoc
// @Summary      Attach a reward to a ticket
// @Description  Replaces any earlier reward. Claimed tickets cannot be changed.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        lid      path      int                          true  "ticket ID"
// @Param        request  body      request.AssignRewardRequest  true  "request body"
// @Success      200  {object}  response.MessageResponse
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/lottos/{lid}/reward [post]
// @Security BearerAuth
func (h *AdminHandler) HandleAssignReward(ctx *gin.Context) {
	ticketID, err := parseIDParam(ctx, "lid")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.AssignRewardRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = h.svc.AssignReward(ctx.Request.Context(), ticketID, req.RewardID); err != nil {
		renderServiceErr(ctx, err, "v1.HandleAssignReward -> h.svc.AssignReward")
		return
	}

	ctx.JSON(http.StatusOK, response.MessageResponse{Message: "reward assigned"})
}

// HandleRewardedLottos godoc
// @Summary      List winning tickets with their holders
// @Tags         admin
// @Produce      json
// @Success      200  {array}   domain.RewardedTicket
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/lottos/rewarded [get]
// @Security BearerAuth
func (h *AdminHandler) HandleRewardedLottos(ctx *gin.Context) {
	tickets, err := h.svc.RewardedTickets(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, err, "v1.HandleRewardedLottos -> h.svc.RewardedTickets")
		return
	}

	ctx.JSON(http.StatusOK, tickets)
}

// HandleReset godoc
// @Summary      Reset the system
// @Description  Deletes every ticket and every non-admin user and restarts ticket numbering.
// @Tags         admin
// @Produce      json
// @Success      200  {object}  domain.ResetSummary
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/reset [post]
// @Security BearerAuth
func (h *AdminHandler) HandleReset(ctx *gin.Context) {
	summary, err := h.svc.Reset(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, err, "v1.HandleReset -> h.svc.Reset")
		return
	}

	ctx.JSON(http.StatusOK, summary)
}
