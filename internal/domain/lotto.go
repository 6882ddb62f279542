package domain

import "github.com/shopspring/decimal"

type TicketStatus string

// A ticket only moves forward: unsold -> sold -> claimed.
const (
	TicketUnsold  TicketStatus = "unsold"
	TicketSold    TicketStatus = "sold"
	TicketClaimed TicketStatus = "claimed"
)

type Ticket struct {
	ID       uint            `json:"lid"`
	Number   string          `json:"number"`
	Price    decimal.Decimal `json:"price"`
	Status   TicketStatus    `json:"status"`
	OwnerID  *uint           `json:"uid"`
	RewardID *uint           `json:"rid"`
	Reward   *Reward         `json:"reward,omitempty"`
}

type Reward struct {
	ID    uint            `json:"rid"`
	Type  string          `json:"reward_type"`
	Money decimal.Decimal `json:"reward_money"`
}

// RewardedTicket is the administrative view of a winning ticket and who holds it.
type RewardedTicket struct {
	Ticket
	OwnerName  string `json:"user_name"`
	OwnerEmail string `json:"email"`
}

// WalletUpdate is returned by a successful purchase.
type WalletUpdate struct {
	UserID   uint            `json:"uid"`
	TicketID uint            `json:"lid"`
	Wallet   decimal.Decimal `json:"wallet"`
}

// PayoutReceipt is returned by a successful claim.
type PayoutReceipt struct {
	TicketID   uint            `json:"lid"`
	Number     string          `json:"number"`
	OwnerID    uint            `json:"uid"`
	RewardType string          `json:"reward_type"`
	Amount     decimal.Decimal `json:"amount"`
	Wallet     decimal.Decimal `json:"wallet"`
}

type ResetSummary struct {
	TicketsDeleted int64 `json:"tickets_deleted"`
	UsersDeleted   int64 `json:"users_deleted"`
}
