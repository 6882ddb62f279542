package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/domain"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/replica"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/repository"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/repository/dao"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/testutil"
)

func TestAuthService(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	mirror := &testutil.RecordingMirror{}
	svc := NewAuthService(repository.NewUserRepository(dao.NewUserDAO(gdb)), mirror)

	birthday := time.Date(1999, 4, 1, 0, 0, 0, 0, time.UTC)
	created, err := svc.Signup(ctx, domain.User{
		Name:     "Somchai",
		Email:    "somchai@lotto.io",
		Password: "passw0rd",
		Wallet:   decimal.NewFromInt(300),
		Birthday: &birthday,
		Role:     domain.RoleAdmin,
	})
	require.NoError(t, err)

	t.Run("signup hashes the password and forces the user role", func(t *testing.T) {
		assert.NotZero(t, created.ID)
		assert.NotEqual(t, "passw0rd", created.Password)
		assert.Equal(t, domain.RoleUser, created.Role)
		assert.True(t, decimal.NewFromInt(300).Equal(created.Wallet))

		docs := mirror.For(replica.KindUser, created.ID)
		require.Len(t, docs, 1)
		assert.Equal(t, "somchai@lotto.io", docs[0]["email"])
		assert.NotContains(t, docs[0], "password")
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Signup(ctx, domain.User{Name: "Other", Email: "somchai@lotto.io", Password: "passw0rd"})
		assert.ErrorIs(t, err, ErrUserEmailExists)
	})

	t.Run("negative wallet", func(t *testing.T) {
		_, err := svc.Signup(ctx, domain.User{Name: "Neg", Email: "neg@lotto.io", Password: "passw0rd", Wallet: decimal.NewFromInt(-1)})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("login", func(t *testing.T) {
		user, err := svc.Login(ctx, "somchai@lotto.io", "passw0rd")
		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
		assert.Len(t, mirror.For(replica.KindUser, created.ID), 2)
	})

	t.Run("login with wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "somchai@lotto.io", "nope12345")
		assert.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("login unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "ghost@lotto.io", "passw0rd")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserService_CreditWallet(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	svc := NewUserService(repository.NewUserRepository(dao.NewUserDAO(gdb)), nil)
	user := testutil.CreateUser(t, gdb, "topup@lotto.io", 5)

	wallet, err := svc.CreditWallet(ctx, user.ID, decimal.NewFromInt(95))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(wallet))

	_, err = svc.CreditWallet(ctx, user.ID, decimal.Zero)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreditWallet(ctx, 9999, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrUserNotFound)
}
