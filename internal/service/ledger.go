package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/domain"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/replica"
)

// Purchase sells an unsold ticket to userID for price, debiting the wallet in the same
// transaction. The replica is updated only after the sale is committed.
func (s *LottoService) Purchase(ctx context.Context, userID, ticketID uint, price decimal.Decimal) (domain.WalletUpdate, error) {
	switch {
	case userID == 0:
		return domain.WalletUpdate{}, fmt.Errorf("%w: uid is required", ErrValidation)
	case ticketID == 0:
		return domain.WalletUpdate{}, fmt.Errorf("%w: lid is required", ErrValidation)
	case !price.IsPositive():
		return domain.WalletUpdate{}, fmt.Errorf("%w: price must be greater than 0", ErrValidation)
	}

	wallet, err := s.repo.Purchase(ctx, userID, ticketID, price)
	if err != nil {
		return domain.WalletUpdate{}, fmt.Errorf("s.repo.Purchase -> %w", err)
	}

	s.mirror.Mirror(ctx, replica.KindUser, userID, replica.Fields{"wallet": wallet})
	s.mirror.Mirror(ctx, replica.KindTicket, ticketID, replica.Fields{
		"status": string(domain.TicketSold),
		"uid":    userID,
	})

	return domain.WalletUpdate{
		UserID:   userID,
		TicketID: ticketID,
		Wallet:   wallet,
	}, nil
}

func (s *LottoService) MyTickets(ctx context.Context, userID uint) ([]domain.Ticket, error) {
	tickets, err := s.repo.FindByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByOwner -> %w", err)
	}

	return tickets, nil
}
