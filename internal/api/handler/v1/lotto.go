package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/api/handler/v1/request"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/domain"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/service"
)

type LottoService interface {
	Allocate(ctx context.Context, quantity int, price decimal.Decimal) ([]domain.Ticket, error)
	ListTickets(ctx context.Context) ([]domain.Ticket, error)
	SearchTickets(ctx context.Context, fragment string) ([]domain.Ticket, error)
	GetTicket(ctx context.Context, id uint) (domain.Ticket, error)
	Purchase(ctx context.Context, userID, ticketID uint, price decimal.Decimal) (domain.WalletUpdate, error)
	MyTickets(ctx context.Context, userID uint) ([]domain.Ticket, error)
	Claim(ctx context.Context, ticketID uint) (domain.PayoutReceipt, error)
	Results(ctx context.Context) ([]domain.Ticket, error)
}

type LottoHandler struct {
	svc  LottoService
	uSvc UserService
}

func NewLottoHandler(svc LottoService, uSvc UserService) *LottoHandler {
	return &LottoHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleListLottos godoc
// @Summary      List all tickets
// @Tags         lottos
// @Produce      json
// @Success      200  {array}   domain.Ticket
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /lottos [get]
// @Security BearerAuth
func (h *LottoHandler) HandleListLottos(ctx *gin.Context) {
	tickets, err := h.svc.ListTickets(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, err, "v1.HandleListLottos -> h.svc.ListTickets")
		return
	}

	ctx.JSON(http.StatusOK, tickets)
}

// HandleSearchLottos godoc
// @Summary      Search tickets by a fragment of their number
// @Tags         lottos
// @Accept       json
// @Produce      json
// @Param        request  body      request.SearchLottosRequest  true  "request body"
// @Success      200  {array}   domain.Ticket
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /lottos/search [post]
// @Security BearerAuth
func (h *LottoHandler) HandleSearchLottos(ctx *gin.Context) {
	var req request.SearchLottosRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	tickets, err := h.svc.SearchTickets(ctx.Request.Context(), req.Number)
	if err != nil {
		renderServiceErr(ctx, err, "v1.HandleSearchLottos -> h.svc.SearchTickets")
		return
	}

	ctx.JSON(http.StatusOK, tickets)
}

// HandlePurchase godoc
// @Summary      Buy a ticket
// @Description  Debits the caller's wallet by the ticket price. The price sent must match the ticket's price.
// @Tags         lottos
// @Accept       json
// @Produce      json
// @Param        lid      path      int                      true  "ticket ID"
// @Param        request  body      request.PurchaseRequest  true  "request body"
// @Success      200  {object}  domain.WalletUpdate
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      402  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /lottos/{lid}/purchase [post]
// @Security BearerAuth
func (h *LottoHandler) HandlePurchase(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ticketID, err := parseIDParam(ctx, "lid")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.PurchaseRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	update, err := h.svc.Purchase(ctx.Request.Context(), user.ID, ticketID, req.Price)
	if err != nil {
		renderServiceErr(ctx, err, "v1.HandlePurchase -> h.svc.Purchase")
		return
	}

	ctx.JSON(http.StatusOK, update)
}

// HandleMyLottos godoc
// @Summary      List the caller's tickets with their rewards
// @Tags         lottos
// @Produce      json
// @Success      200  {array}   domain.Ticket
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /lottos/mine [get]
// @Security BearerAuth
func (h *LottoHandler) HandleMyLottos(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	tickets, err := h.svc.MyTickets(ctx.Request.Context(), user.ID)
	if err != nil {
		renderServiceErr(ctx, err, "v1.HandleMyLottos -> h.svc.MyTickets")
		return
	}

	ctx.JSON(http.StatusOK, tickets)
}

// HandleClaim godoc
// @Summary      Claim the reward of an owned ticket
// @Tags         lottos
// @Produce      json
// @Param        lid      path      int  true  "ticket ID"
// @Success      200  {object}  domain.PayoutReceipt
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /lottos/{lid}/claim [post]
// @Security BearerAuth
func (h *LottoHandler) HandleClaim(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ticketID, err := parseIDParam(ctx, "lid")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	ticket, err := h.svc.GetTicket(ctx.Request.Context(), ticketID)
	if err != nil {
		if errors.Is(err, service.ErrTicketNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("ticket", "lid", ticketID))
			return
		}

		renderServiceErr(ctx, err, "v1.HandleClaim -> h.svc.GetTicket")
		return
	}

	if ticket.OwnerID != nil && *ticket.OwnerID != user.ID {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v does not own ticket %v", user.ID, ticketID)))
		return
	}

	receipt, err := h.svc.Claim(ctx.Request.Context(), ticketID)
	if err != nil {
		renderServiceErr(ctx, err, "v1.HandleClaim -> h.svc.Claim")
		return
	}

	ctx.JSON(http.StatusOK, receipt)
}

// HandleResults godoc
// @Summary      List winning tickets
// @Tags         lottos
// @Produce      json
// @Success      200  {array}   domain.Ticket
// @Failure      500  {object}  response.Err
// @Router       /lottos/results [get]
func (h *LottoHandler) HandleResults(ctx *gin.Context) {
	tickets, err := h.svc.Results(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, err, "v1.HandleResults -> h.svc.Results")
		return
	}

	ctx.JSON(http.StatusOK, tickets)
}
