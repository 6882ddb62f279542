package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/domain"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/replica"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/repository"
)

var (
	ErrUserEmailExists = repository.ErrUserEmailExists
	ErrWrongPassword   = errors.New("wrong password")
)

type AuthUserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
}

type AuthService struct {
	repo   AuthUserRepository
	mirror Mirror
}

func NewAuthService(repo AuthUserRepository, mirror Mirror) *AuthService {
	return &AuthService{
		repo:   repo,
		mirror: orNop(mirror),
	}
}

// Signup always registers a regular user; admins are provisioned out of band.
func (s *AuthService) Signup(ctx context.Context, user domain.User) (domain.User, error) {
	if user.Wallet.IsNegative() {
		return domain.User{}, fmt.Errorf("%w: wallet must not be negative", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("bcrypt.GenerateFromPassword -> %w", err)
	}
	user.Password = string(hash)
	user.Role = domain.RoleUser

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	s.mirror.Mirror(ctx, replica.KindUser, created.ID, userFields(created))

	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrUserNotFound
		}

		return domain.User{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return domain.User{}, ErrWrongPassword
	}

	s.mirror.Mirror(ctx, replica.KindUser, user.ID, userFields(user))

	return user, nil
}
