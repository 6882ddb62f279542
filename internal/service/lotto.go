package service

import (
	"context"
	"errors"
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/config"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/domain"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/repository"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrCapacityExhausted = errors.New("ticket number space is exhausted")

	ErrTicketNotFound    = repository.ErrTicketNotFound
	ErrTicketUnavailable = repository.ErrTicketUnavailable
	ErrTicketNotSold     = repository.ErrTicketNotSold
	ErrAlreadyClaimed    = repository.ErrAlreadyClaimed
	ErrInsufficientFunds = repository.ErrInsufficientFunds
	ErrPriceMismatch     = repository.ErrPriceMismatch
	ErrRewardNotFound    = repository.ErrRewardNotFound
)

type LottoRepository interface {
	CreateUnique(ctx context.Context, number string, price decimal.Decimal) (domain.Ticket, bool, error)
	Count(ctx context.Context) (int64, error)
	FindByID(ctx context.Context, id uint) (domain.Ticket, error)
	FindAll(ctx context.Context) ([]domain.Ticket, error)
	SearchByNumber(ctx context.Context, fragment string) ([]domain.Ticket, error)
	FindByOwner(ctx context.Context, userID uint) ([]domain.Ticket, error)
	FindRewarded(ctx context.Context) ([]domain.Ticket, error)
	FindRewardedWithOwner(ctx context.Context) ([]domain.RewardedTicket, error)
	Purchase(ctx context.Context, userID, ticketID uint, price decimal.Decimal) (decimal.Decimal, error)
	CreateReward(ctx context.Context, reward domain.Reward) (domain.Reward, error)
	AssignReward(ctx context.Context, ticketID, rewardID uint) error
	Claim(ctx context.Context, ticketID uint) (domain.PayoutReceipt, error)
	Reset(ctx context.Context) (int64, int64, error)
}

// LottoService covers the ticket life cycle: allocation, sale, reward and payout.
type LottoService struct {
	repo   LottoRepository
	mirror Mirror
	conf   config.LottoConfig
	draw   func() int
}

func NewLottoService(repo LottoRepository, mirror Mirror, conf *config.LottoConfig) *LottoService {
	c := config.LottoConfig{
		MaxBatch:        1000,
		MinNumber:       100000,
		MaxNumber:       999999,
		Saturation:      0.8,
		MaxDrawAttempts: 50,
	}
	if conf != nil {
		c = *conf
	}

	s := &LottoService{
		repo:   repo,
		mirror: orNop(mirror),
		conf:   c,
	}
	s.draw = func() int {
		return s.conf.MinNumber + rand.Intn(s.conf.NumberSpace())
	}

	return s
}
