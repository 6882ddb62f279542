package service

import (
	"context"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/domain"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/replica"
)

var numberFragmentExp = regexp.MustCompile(`^[0-9]{1,6}$`)

// Allocate creates quantity unsold tickets with fresh random numbers. Each ticket is stored as
// soon as its number is drawn; on failure the tickets created so far are returned with the error.
func (s *LottoService) Allocate(ctx context.Context, quantity int, price decimal.Decimal) ([]domain.Ticket, error) {
	if quantity < 1 || quantity > s.conf.MaxBatch {
		return nil, fmt.Errorf("%w: quantity must be between 1 and %d", ErrValidation, s.conf.MaxBatch)
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be greater than 0", ErrValidation)
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.Count -> %w", err)
	}

	limit := int64(float64(s.conf.NumberSpace()) * s.conf.Saturation)
	if count+int64(quantity) > limit {
		return nil, fmt.Errorf("%w: %d tickets exist, at most %d allowed", ErrCapacityExhausted, count, limit)
	}

	tickets := make([]domain.Ticket, 0, quantity)
	for i := 0; i < quantity; i++ {
		ticket, err := s.allocateOne(ctx, price)
		if err != nil {
			return tickets, err
		}

		tickets = append(tickets, ticket)
		s.mirror.Mirror(ctx, replica.KindTicket, ticket.ID, ticketFields(ticket))
	}

	return tickets, nil
}

func (s *LottoService) allocateOne(ctx context.Context, price decimal.Decimal) (domain.Ticket, error) {
	for attempt := 0; attempt < s.conf.MaxDrawAttempts; attempt++ {
		number := fmt.Sprintf("%06d", s.draw())

		ticket, ok, err := s.repo.CreateUnique(ctx, number, price)
		if err != nil {
			return domain.Ticket{}, fmt.Errorf("s.repo.CreateUnique -> %w", err)
		}
		if ok {
			return ticket, nil
		}
	}

	return domain.Ticket{}, fmt.Errorf("%w: no free number after %d draws", ErrCapacityExhausted, s.conf.MaxDrawAttempts)
}

func (s *LottoService) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return tickets, nil
}

func (s *LottoService) SearchTickets(ctx context.Context, fragment string) ([]domain.Ticket, error) {
	if !numberFragmentExp.MatchString(fragment) {
		return nil, fmt.Errorf("%w: search must be 1 to 6 digits", ErrValidation)
	}

	tickets, err := s.repo.SearchByNumber(ctx, fragment)
	if err != nil {
		return nil, fmt.Errorf("s.repo.SearchByNumber -> %w", err)
	}

	return tickets, nil
}

func (s *LottoService) GetTicket(ctx context.Context, id uint) (domain.Ticket, error) {
	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return ticket, nil
}
