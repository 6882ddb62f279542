package dao

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrTicketUnavailable = errors.New("ticket is already sold or does not exist")
	ErrTicketNotSold     = errors.New("ticket has not been sold")
	ErrAlreadyClaimed    = errors.New("ticket reward has already been claimed")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrPriceMismatch     = errors.New("price does not match the ticket price")
	ErrRewardNotFound    = errors.New("reward not found")
)

const (
	StatusUnsold  = "unsold"
	StatusSold    = "sold"
	StatusClaimed = "claimed"

	StatusUser  = "user"
	StatusAdmin = "admin"
)

type Ticket struct {
	ID       uint            `gorm:"column:lid;primaryKey"`
	Number   string          `gorm:"column:number;size:6;uniqueIndex:uni_lotto_number;not null"`
	Price    decimal.Decimal `gorm:"column:price;type:decimal(12,2);not null"`
	Status   string          `gorm:"column:status;size:16;index;not null;default:unsold"`
	OwnerID  *uint           `gorm:"column:uid;index"`
	Owner    *User           `gorm:"foreignKey:OwnerID;references:ID"`
	RewardID *uint           `gorm:"column:rid;index"`
	Reward   *Reward         `gorm:"foreignKey:RewardID;references:ID"`
}

func (Ticket) TableName() string {
	return "lotto"
}

type Reward struct {
	ID    uint            `gorm:"column:rid;primaryKey"`
	Type  string          `gorm:"column:reward_type;not null"`
	Money decimal.Decimal `gorm:"column:reward_money;type:decimal(12,2);not null"`
}

func (Reward) TableName() string {
	return "reward"
}

type ClaimResult struct {
	TicketID   uint            `gorm:"column:lid"`
	Number     string          `gorm:"column:number"`
	OwnerID    *uint           `gorm:"column:uid"`
	Status     string          `gorm:"column:status"`
	RewardType string          `gorm:"column:reward_type"`
	Money      decimal.Decimal `gorm:"column:reward_money"`
	Wallet     decimal.Decimal `gorm:"-"`
}

type ResetResult struct {
	TicketsDeleted int64
	UsersDeleted   int64
}

type LottoDAO struct {
	db *gorm.DB
}

func NewLottoDAO(db *gorm.DB) *LottoDAO {
	return &LottoDAO{
		db: db,
	}
}

// InsertUnique inserts an unsold ticket unless the number is already taken.
// The uniqueness check and the insert are one statement; ok is false on a collision.
func (d *LottoDAO) InsertUnique(ctx context.Context, number string, price decimal.Decimal) (Ticket, bool, error) {
	ticket := Ticket{
		Number: number,
		Price:  price,
		Status: StatusUnsold,
	}

	result := d.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&ticket)
	if result.Error != nil {
		return Ticket{}, false, result.Error
	}

	if result.RowsAffected == 0 {
		return Ticket{}, false, nil
	}

	return ticket, true, nil
}

func (d *LottoDAO) Count(ctx context.Context) (int64, error) {
	var count int64

	if err := d.db.WithContext(ctx).Model(&Ticket{}).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (d *LottoDAO) FindByID(ctx context.Context, id uint) (Ticket, error) {
	var ticket Ticket

	result := d.db.WithContext(ctx).Preload("Reward").First(&ticket, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Ticket{}, ErrTicketNotFound
		}

		return Ticket{}, result.Error
	}

	return ticket, nil
}

func (d *LottoDAO) FindAll(ctx context.Context) ([]Ticket, error) {
	var tickets []Ticket

	if err := d.db.WithContext(ctx).Order("lid").Find(&tickets).Error; err != nil {
		return nil, err
	}

	return tickets, nil
}

func (d *LottoDAO) SearchByNumber(ctx context.Context, fragment string) ([]Ticket, error) {
	var tickets []Ticket

	err := d.db.WithContext(ctx).
		Where("number LIKE ?", "%"+fragment+"%").
		Order("lid").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}

	return tickets, nil
}

func (d *LottoDAO) FindByOwner(ctx context.Context, userID uint) ([]Ticket, error) {
	var tickets []Ticket

	err := d.db.WithContext(ctx).
		Preload("Reward").
		Where("uid = ?", userID).
		Order("lid").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}

	return tickets, nil
}

func (d *LottoDAO) FindRewarded(ctx context.Context) ([]Ticket, error) {
	var tickets []Ticket

	err := d.db.WithContext(ctx).
		Preload("Reward").
		Where("rid IS NOT NULL").
		Order("lid").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}

	return tickets, nil
}

// FindRewardedWithOwner only returns rewarded tickets that have been sold.
func (d *LottoDAO) FindRewardedWithOwner(ctx context.Context) ([]Ticket, error) {
	var tickets []Ticket

	err := d.db.WithContext(ctx).
		InnerJoins("Owner").
		Preload("Reward").
		Where("lotto.rid IS NOT NULL").
		Order("lotto.lid").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}

	return tickets, nil
}

// Purchase moves a ticket from unsold to sold and debits the buyer in one transaction.
// It returns the buyer's wallet after the debit.
func (d *LottoDAO) Purchase(ctx context.Context, userID, ticketID uint, price decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wallet, err := walletOf(tx, userID)
		if err != nil {
			return err
		}

		if wallet.LessThan(price) {
			return ErrInsufficientFunds
		}

		var ticket Ticket
		if err = tx.Select("lid", "price", "status").First(&ticket, ticketID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTicketUnavailable
			}
			return err
		}

		if !ticket.Price.Equal(price) {
			return ErrPriceMismatch
		}

		// The status guard, not the read above, decides who wins a race for the ticket.
		result := tx.Model(&Ticket{}).
			Where("lid = ? AND status = ?", ticketID, StatusUnsold).
			Updates(map[string]any{"status": StatusSold, "uid": userID})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTicketUnavailable
		}

		if err = debitWallet(tx, userID, price); err != nil {
			return err
		}

		balance, err = walletOf(tx, userID)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}

	return balance, nil
}

func (d *LottoDAO) InsertReward(ctx context.Context, reward Reward) (Reward, error) {
	if err := d.db.WithContext(ctx).Create(&reward).Error; err != nil {
		return Reward{}, err
	}

	return reward, nil
}

// AssignReward links a reward to a ticket. Claimed tickets keep the reward they were paid for.
func (d *LottoDAO) AssignReward(ctx context.Context, ticketID, rewardID uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reward Reward
		if err := tx.Select("rid").First(&reward, rewardID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRewardNotFound
			}
			return err
		}

		result := tx.Model(&Ticket{}).
			Where("lid = ? AND status <> ?", ticketID, StatusClaimed).
			Update("rid", rewardID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		var ticket Ticket
		if err := tx.Select("lid", "status").First(&ticket, ticketID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTicketNotFound
			}
			return err
		}

		if ticket.Status == StatusClaimed {
			return ErrAlreadyClaimed
		}

		// Same rid written twice reports zero affected rows on mysql.
		return nil
	})
}

// Claim marks a rewarded ticket as claimed and credits its owner in one transaction.
func (d *LottoDAO) Claim(ctx context.Context, ticketID uint) (ClaimResult, error) {
	var claim ClaimResult

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Table("lotto AS l").
			Select("l.lid, l.number, l.uid, l.status, r.reward_type, r.reward_money").
			Joins("JOIN reward AS r ON l.rid = r.rid").
			Where("l.lid = ?", ticketID).
			Take(&claim).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTicketNotFound
			}
			return err
		}

		switch {
		case claim.Status == StatusClaimed:
			return ErrAlreadyClaimed
		case claim.Status != StatusSold || claim.OwnerID == nil:
			return ErrTicketNotSold
		}

		result := tx.Model(&Ticket{}).
			Where("lid = ? AND status = ?", ticketID, StatusSold).
			Update("status", StatusClaimed)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyClaimed
		}

		if err = creditWallet(tx, *claim.OwnerID, claim.Money); err != nil {
			return err
		}

		claim.Status = StatusClaimed
		claim.Wallet, err = walletOf(tx, *claim.OwnerID)
		return err
	})
	if err != nil {
		return ClaimResult{}, err
	}

	return claim, nil
}

// Reset deletes every ticket and every non-admin user, then restarts ticket ids at 1.
func (d *LottoDAO) Reset(ctx context.Context) (ResetResult, error) {
	var res ResetResult

	db := d.db.WithContext(ctx)
	err := db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("1 = 1").Delete(&Ticket{})
		if result.Error != nil {
			return result.Error
		}
		res.TicketsDeleted = result.RowsAffected

		result = tx.Where("status <> ?", StatusAdmin).Delete(&User{})
		if result.Error != nil {
			return result.Error
		}
		res.UsersDeleted = result.RowsAffected

		switch tx.Dialector.Name() {
		case "postgres":
			return tx.Exec("SELECT setval(pg_get_serial_sequence('lotto', 'lid'), 1, false)").Error
		case "sqlite":
			return resetSQLiteSequence(tx)
		}

		return nil
	})
	if err != nil {
		return ResetResult{}, err
	}

	// ALTER TABLE commits implicitly on mysql, so it runs after the deletes are committed.
	if db.Dialector.Name() == "mysql" {
		if err = db.Exec("ALTER TABLE lotto AUTO_INCREMENT = 1").Error; err != nil {
			return res, err
		}
	}

	return res, nil
}

func resetSQLiteSequence(tx *gorm.DB) error {
	var count int64
	err := tx.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'sqlite_sequence'").
		Scan(&count).Error
	if err != nil {
		return err
	}

	if count == 0 {
		return nil
	}

	return tx.Exec("DELETE FROM sqlite_sequence WHERE name = ?", "lotto").Error
}
