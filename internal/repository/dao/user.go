package dao

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrUserEmailExists = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrWalletConflict  = errors.New("wallet changed during the update")
)

const mysqlDuplicateEntry = 1062

type User struct {
	ID           uint            `gorm:"column:uid;primaryKey"`
	Name         string          `gorm:"column:user_name;not null"`
	Email        string          `gorm:"column:email;uniqueIndex:uni_users_email;size:255;not null"`
	PasswordHash string          `gorm:"column:password_hash;not null"`
	Wallet       decimal.Decimal `gorm:"column:wallet;type:decimal(12,2);not null;default:0"`
	Birthday     *time.Time      `gorm:"column:birthday;type:date"`
	Image        string          `gorm:"column:image"`
	Status       string          `gorm:"column:status;size:16;not null;default:user"`
}

func (User) TableName() string {
	return "users"
}

type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{
		db: db,
	}
}

func (d *UserDAO) Insert(ctx context.Context, user User) (User, error) {
	result := d.db.WithContext(ctx).Create(&user)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return User{}, ErrUserEmailExists
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByID(ctx context.Context, id uint) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByEmail(ctx context.Context, email string) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindAll(ctx context.Context) ([]User, error) {
	var users []User

	result := d.db.WithContext(ctx).Order("uid").Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}

	return users, nil
}

// Credit adds amount to the wallet and returns the new balance.
func (d *UserDAO) Credit(ctx context.Context, id uint, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if err = creditWallet(tx, id, amount); err != nil {
			return err
		}
		balance, err = walletOf(tx, id)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}

	return balance, nil
}

func creditWallet(tx *gorm.DB, id uint, amount decimal.Decimal) error {
	if !exactSQLMoney(tx) {
		return adjustWallet(tx, id, func(wallet decimal.Decimal) (decimal.Decimal, error) {
			return wallet.Add(amount), nil
		})
	}

	result := tx.Model(&User{}).
		Where("uid = ?", id).
		Update("wallet", gorm.Expr("wallet + ?", amount))
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// debitWallet fails with ErrInsufficientFunds instead of taking a wallet below zero.
func debitWallet(tx *gorm.DB, id uint, amount decimal.Decimal) error {
	if !exactSQLMoney(tx) {
		return adjustWallet(tx, id, func(wallet decimal.Decimal) (decimal.Decimal, error) {
			if wallet.LessThan(amount) {
				return decimal.Zero, ErrInsufficientFunds
			}
			return wallet.Sub(amount), nil
		})
	}

	result := tx.Model(&User{}).
		Where("uid = ? AND wallet >= ?", id, amount).
		Update("wallet", gorm.Expr("wallet - ?", amount))
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrInsufficientFunds
	}

	return nil
}

// exactSQLMoney reports whether the database does decimal arithmetic exactly. sqlite has no
// decimal type: stored values read back unchanged, but wallet + ? is computed in floating point.
func exactSQLMoney(tx *gorm.DB) bool {
	return tx.Dialector.Name() != "sqlite"
}

// adjustWallet computes the new balance in Go and writes it only if the balance it read is
// still the stored one.
func adjustWallet(tx *gorm.DB, id uint, next func(decimal.Decimal) (decimal.Decimal, error)) error {
	current, err := walletOf(tx, id)
	if err != nil {
		return err
	}

	updated, err := next(current)
	if err != nil {
		return err
	}

	result := tx.Model(&User{}).
		Where("uid = ? AND wallet = ?", id, current).
		Update("wallet", updated)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrWalletConflict
	}

	return nil
}

func walletOf(tx *gorm.DB, id uint) (decimal.Decimal, error) {
	var user User

	result := tx.Select("uid", "wallet").First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrUserNotFound
		}

		return decimal.Zero, result.Error
	}

	return user.Wallet, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}

	return errors.Is(err, gorm.ErrDuplicatedKey)
}
