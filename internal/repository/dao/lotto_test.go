package dao_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/repository/dao"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/testutil"
)

func TestLottoDAO_InsertUnique(t *testing.T) {
	ctx := context.Background()
	d := dao.NewLottoDAO(testutil.NewDB(t))

	ticket, ok, err := d.InsertUnique(ctx, "135790", decimal.NewFromInt(80))
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotZero(t, ticket.ID)
	assert.Equal(t, dao.StatusUnsold, ticket.Status)

	_, ok, err = d.InsertUnique(ctx, "135790", decimal.NewFromInt(80))
	require.NoError(t, err)
	assert.False(t, ok)

	count, err := d.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestLottoDAO_FindByOwner(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	d := dao.NewLottoDAO(gdb)

	user := testutil.CreateUser(t, gdb, "owner@lotto.io", 100)
	ticket := testutil.CreateTicket(t, gdb, "246800", 20)
	reward := testutil.CreateReward(t, gdb, "5th", 40)
	testutil.CreateTicket(t, gdb, "246801", 20)

	_, err := d.Purchase(ctx, user.ID, ticket.ID, decimal.NewFromInt(20))
	require.NoError(t, err)
	require.NoError(t, d.AssignReward(ctx, ticket.ID, reward.ID))

	tickets, err := d.FindByOwner(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	require.NotNil(t, tickets[0].Reward)
	assert.Equal(t, "5th", tickets[0].Reward.Type)
	assert.True(t, decimal.NewFromInt(40).Equal(tickets[0].Reward.Money))
}

func TestUserDAO_Insert_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	d := dao.NewUserDAO(testutil.NewDB(t))

	_, err := d.Insert(ctx, dao.User{Name: "a", Email: "dup@lotto.io", PasswordHash: "x", Status: dao.StatusUser})
	require.NoError(t, err)

	_, err = d.Insert(ctx, dao.User{Name: "b", Email: "dup@lotto.io", PasswordHash: "x", Status: dao.StatusUser})
	assert.ErrorIs(t, err, dao.ErrUserEmailExists)
}

func TestUserDAO_Credit_Fractional(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	d := dao.NewUserDAO(gdb)
	user := testutil.CreateUser(t, gdb, "dimes@lotto.io", 0)

	var balance decimal.Decimal
	for i := 0; i < 10; i++ {
		var err error
		balance, err = d.Credit(ctx, user.ID, decimal.RequireFromString("0.1"))
		require.NoError(t, err)
	}

	assert.Equal(t, "1", balance.String())
	assert.Equal(t, "1", testutil.Wallet(t, gdb, user.ID).String())

	_, err := d.Credit(ctx, 9999, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, dao.ErrUserNotFound)
}

func TestLottoDAO_Purchase_InsufficientFractional(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	d := dao.NewLottoDAO(gdb)

	user := testutil.CreateUser(t, gdb, "short@lotto.io", 0)
	_, err := dao.NewUserDAO(gdb).Credit(ctx, user.ID, decimal.RequireFromString("49.99"))
	require.NoError(t, err)

	ticket, ok, err := d.InsertUnique(ctx, "505050", decimal.NewFromInt(50))
	require.NoError(t, err)
	require.True(t, ok)

	_, err = d.Purchase(ctx, user.ID, ticket.ID, decimal.NewFromInt(50))
	assert.ErrorIs(t, err, dao.ErrInsufficientFunds)
	assert.Equal(t, "49.99", testutil.Wallet(t, gdb, user.ID).String())
	assert.Equal(t, dao.StatusUnsold, testutil.Ticket(t, gdb, ticket.ID).Status)
}
