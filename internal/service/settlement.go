package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/domain"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/replica"
)

func (s *LottoService) CreateReward(ctx context.Context, rewardType string, money decimal.Decimal) (domain.Reward, error) {
	rewardType = strings.TrimSpace(rewardType)
	if rewardType == "" {
		return domain.Reward{}, fmt.Errorf("%w: reward_type is required", ErrValidation)
	}
	if !money.IsPositive() {
		return domain.Reward{}, fmt.Errorf("%w: reward_money must be greater than 0", ErrValidation)
	}

	reward, err := s.repo.CreateReward(ctx, domain.Reward{Type: rewardType, Money: money})
	if err != nil {
		return domain.Reward{}, fmt.Errorf("s.repo.CreateReward -> %w", err)
	}

	return reward, nil
}

// AssignReward links rewardID to ticketID, replacing any earlier reward.
// A claimed ticket keeps the reward it was paid out for.
func (s *LottoService) AssignReward(ctx context.Context, ticketID, rewardID uint) error {
	if ticketID == 0 || rewardID == 0 {
		return fmt.Errorf("%w: lid and rid are required", ErrValidation)
	}

	if err := s.repo.AssignReward(ctx, ticketID, rewardID); err != nil {
		return fmt.Errorf("s.repo.AssignReward -> %w", err)
	}

	s.mirror.Mirror(ctx, replica.KindTicket, ticketID, replica.Fields{"rid": rewardID})

	return nil
}

// Claim pays the reward of a sold ticket to its owner exactly once.
func (s *LottoService) Claim(ctx context.Context, ticketID uint) (domain.PayoutReceipt, error) {
	if ticketID == 0 {
		return domain.PayoutReceipt{}, fmt.Errorf("%w: lid is required", ErrValidation)
	}

	receipt, err := s.repo.Claim(ctx, ticketID)
	if err != nil {
		return domain.PayoutReceipt{}, fmt.Errorf("s.repo.Claim -> %w", err)
	}

	s.mirror.Mirror(ctx, replica.KindTicket, ticketID, replica.Fields{"status": string(domain.TicketClaimed)})
	s.mirror.Mirror(ctx, replica.KindUser, receipt.OwnerID, replica.Fields{"wallet": receipt.Wallet})

	return receipt, nil
}

// Results lists every ticket that has a reward attached.
func (s *LottoService) Results(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.repo.FindRewarded(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindRewarded -> %w", err)
	}

	return tickets, nil
}

func (s *LottoService) RewardedTickets(ctx context.Context) ([]domain.RewardedTicket, error) {
	tickets, err := s.repo.FindRewardedWithOwner(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindRewardedWithOwner -> %w", err)
	}

	return tickets, nil
}
