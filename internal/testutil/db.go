package testutil

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/config"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/db"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/repository/dao"
)

// NewDB returns a migrated sqlite database in a temp file.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(&config.DatabaseConfig{
		Driver: db.DriverSQLite,
		Name:   filepath.Join(t.TempDir(), "lotto.db"),
	}, "")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close(gdb)
	})

	return gdb
}

func CreateUser(t *testing.T, gdb *gorm.DB, email string, wallet int64) dao.User {
	t.Helper()

	user := dao.User{
		Name:         "user " + email,
		Email:        email,
		PasswordHash: "x",
		Wallet:       decimal.NewFromInt(wallet),
		Status:       dao.StatusUser,
	}
	require.NoError(t, gdb.Create(&user).Error)

	return user
}

func CreateAdmin(t *testing.T, gdb *gorm.DB, email string) dao.User {
	t.Helper()

	admin := dao.User{
		Name:         "admin",
		Email:        email,
		PasswordHash: "x",
		Status:       dao.StatusAdmin,
	}
	require.NoError(t, gdb.Create(&admin).Error)

	return admin
}

func CreateTicket(t *testing.T, gdb *gorm.DB, number string, price int64) dao.Ticket {
	t.Helper()

	ticket := dao.Ticket{
		Number: number,
		Price:  decimal.NewFromInt(price),
		Status: dao.StatusUnsold,
	}
	require.NoError(t, gdb.Create(&ticket).Error)

	return ticket
}

func CreateReward(t *testing.T, gdb *gorm.DB, rewardType string, money int64) dao.Reward {
	t.Helper()

	reward := dao.Reward{Type: rewardType, Money: decimal.NewFromInt(money)}
	require.NoError(t, gdb.Create(&reward).Error)

	return reward
}

func Wallet(t *testing.T, gdb *gorm.DB, uid uint) decimal.Decimal {
	t.Helper()

	var user dao.User
	require.NoError(t, gdb.Select("uid", "wallet").First(&user, uid).Error)

	return user.Wallet
}

func Ticket(t *testing.T, gdb *gorm.DB, lid uint) dao.Ticket {
	t.Helper()

	var ticket dao.Ticket
	require.NoError(t, gdb.First(&ticket, lid).Error)

	return ticket
}
