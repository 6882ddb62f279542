package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/domain"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/repository/dao"
)

var (
	ErrTicketNotFound    = dao.ErrTicketNotFound
	ErrTicketUnavailable = dao.ErrTicketUnavailable
	ErrTicketNotSold     = dao.ErrTicketNotSold
	ErrAlreadyClaimed    = dao.ErrAlreadyClaimed
	ErrInsufficientFunds = dao.ErrInsufficientFunds
	ErrPriceMismatch     = dao.ErrPriceMismatch
	ErrRewardNotFound    = dao.ErrRewardNotFound
)

type LottoDAO interface {
	InsertUnique(ctx context.Context, number string, price decimal.Decimal) (dao.Ticket, bool, error)
	Count(ctx context.Context) (int64, error)
	FindByID(ctx context.Context, id uint) (dao.Ticket, error)
	FindAll(ctx context.Context) ([]dao.Ticket, error)
	SearchByNumber(ctx context.Context, fragment string) ([]dao.Ticket, error)
	FindByOwner(ctx context.Context, userID uint) ([]dao.Ticket, error)
	FindRewarded(ctx context.Context) ([]dao.Ticket, error)
	FindRewardedWithOwner(ctx context.Context) ([]dao.Ticket, error)
	Purchase(ctx context.Context, userID, ticketID uint, price decimal.Decimal) (decimal.Decimal, error)
	InsertReward(ctx context.Context, reward dao.Reward) (dao.Reward, error)
	AssignReward(ctx context.Context, ticketID, rewardID uint) error
	Claim(ctx context.Context, ticketID uint) (dao.ClaimResult, error)
	Reset(ctx context.Context) (dao.ResetResult, error)
}

type LottoRepository struct {
	dao LottoDAO
}

func NewLottoRepository(dao LottoDAO) *LottoRepository {
	return &LottoRepository{
		dao: dao,
	}
}

// CreateUnique returns ok=false when the number is already taken by another ticket.
func (r *LottoRepository) CreateUnique(ctx context.Context, number string, price decimal.Decimal) (domain.Ticket, bool, error) {
	created, ok, err := r.dao.InsertUnique(ctx, number, price)
	if err != nil {
		return domain.Ticket{}, false, fmt.Errorf("r.dao.InsertUnique -> %w", err)
	}

	if !ok {
		return domain.Ticket{}, false, nil
	}

	return r.ticketDaoToDomain(created), true, nil
}

func (r *LottoRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.dao.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("r.dao.Count -> %w", err)
	}

	return count, nil
}

func (r *LottoRepository) FindByID(ctx context.Context, id uint) (domain.Ticket, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.ticketDaoToDomain(found), nil
}

func (r *LottoRepository) FindAll(ctx context.Context) ([]domain.Ticket, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	return r.ticketsDaoToDomain(found), nil
}

func (r *LottoRepository) SearchByNumber(ctx context.Context, fragment string) ([]domain.Ticket, error) {
	found, err := r.dao.SearchByNumber(ctx, fragment)
	if err != nil {
		return nil, fmt.Errorf("r.dao.SearchByNumber -> %w", err)
	}

	return r.ticketsDaoToDomain(found), nil
}

func (r *LottoRepository) FindByOwner(ctx context.Context, userID uint) ([]domain.Ticket, error) {
	found, err := r.dao.FindByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByOwner -> %w", err)
	}

	return r.ticketsDaoToDomain(found), nil
}

func (r *LottoRepository) FindRewarded(ctx context.Context) ([]domain.Ticket, error) {
	found, err := r.dao.FindRewarded(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindRewarded -> %w", err)
	}

	return r.ticketsDaoToDomain(found), nil
}

func (r *LottoRepository) FindRewardedWithOwner(ctx context.Context) ([]domain.RewardedTicket, error) {
	found, err := r.dao.FindRewardedWithOwner(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindRewardedWithOwner -> %w", err)
	}

	rewarded := make([]domain.RewardedTicket, len(found))
	for i, t := range found {
		rewarded[i] = domain.RewardedTicket{Ticket: r.ticketDaoToDomain(t)}
		if t.Owner != nil {
			rewarded[i].OwnerName = t.Owner.Name
			rewarded[i].OwnerEmail = t.Owner.Email
		}
	}

	return rewarded, nil
}

func (r *LottoRepository) Purchase(ctx context.Context, userID, ticketID uint, price decimal.Decimal) (decimal.Decimal, error) {
	balance, err := r.dao.Purchase(ctx, userID, ticketID, price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("r.dao.Purchase -> %w", err)
	}

	return balance, nil
}

func (r *LottoRepository) CreateReward(ctx context.Context, reward domain.Reward) (domain.Reward, error) {
	created, err := r.dao.InsertReward(ctx, dao.Reward{
		Type:  reward.Type,
		Money: reward.Money,
	})
	if err != nil {
		return domain.Reward{}, fmt.Errorf("r.dao.InsertReward -> %w", err)
	}

	return r.rewardDaoToDomain(created), nil
}

func (r *LottoRepository) AssignReward(ctx context.Context, ticketID, rewardID uint) error {
	if err := r.dao.AssignReward(ctx, ticketID, rewardID); err != nil {
		return fmt.Errorf("r.dao.AssignReward -> %w", err)
	}

	return nil
}

func (r *LottoRepository) Claim(ctx context.Context, ticketID uint) (domain.PayoutReceipt, error) {
	claim, err := r.dao.Claim(ctx, ticketID)
	if err != nil {
		return domain.PayoutReceipt{}, fmt.Errorf("r.dao.Claim -> %w", err)
	}

	receipt := domain.PayoutReceipt{
		TicketID:   claim.TicketID,
		Number:     claim.Number,
		RewardType: claim.RewardType,
		Amount:     claim.Money,
		Wallet:     claim.Wallet,
	}
	if claim.OwnerID != nil {
		receipt.OwnerID = *claim.OwnerID
	}

	return receipt, nil
}

func (r *LottoRepository) Reset(ctx context.Context) (int64, int64, error) {
	res, err := r.dao.Reset(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("r.dao.Reset -> %w", err)
	}

	return res.TicketsDeleted, res.UsersDeleted, nil
}

func (r *LottoRepository) ticketsDaoToDomain(tickets []dao.Ticket) []domain.Ticket {
	domainTickets := make([]domain.Ticket, len(tickets))
	for i, t := range tickets {
		domainTickets[i] = r.ticketDaoToDomain(t)
	}
	return domainTickets
}

func (r *LottoRepository) ticketDaoToDomain(t dao.Ticket) domain.Ticket {
	ticket := domain.Ticket{
		ID:       t.ID,
		Number:   t.Number,
		Price:    t.Price,
		Status:   domain.TicketStatus(t.Status),
		OwnerID:  t.OwnerID,
		RewardID: t.RewardID,
	}

	if t.Reward != nil {
		reward := r.rewardDaoToDomain(*t.Reward)
		ticket.Reward = &reward
	}

	return ticket
}

func (r *LottoRepository) rewardDaoToDomain(rw dao.Reward) domain.Reward {
	return domain.Reward{
		ID:    rw.ID,
		Type:  rw.Type,
		Money: rw.Money,
	}
}
