package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/domain"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/replica"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/repository"
)

var (
	ErrUserNotFound = repository.ErrUserNotFound
)

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	CreditWallet(ctx context.Context, id uint, amount decimal.Decimal) (decimal.Decimal, error)
}

type UserService struct {
	repo   UserRepository
	mirror Mirror
}

func NewUserService(repo UserRepository, mirror Mirror) *UserService {
	return &UserService{
		repo:   repo,
		mirror: orNop(mirror),
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return users, nil
}

// CreditWallet tops up a wallet and returns the new balance.
func (s *UserService) CreditWallet(ctx context.Context, id uint, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be greater than 0", ErrValidation)
	}

	wallet, err := s.repo.CreditWallet(ctx, id, amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("s.repo.CreditWallet -> %w", err)
	}

	s.mirror.Mirror(ctx, replica.KindUser, id, replica.Fields{"wallet": wallet})

	return wallet, nil
}
