package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID       uint            `json:"uid"`
	Name     string          `json:"user_name"`
	Email    string          `json:"email"`
	Password string          `json:"-"`
	Wallet   decimal.Decimal `json:"wallet"`
	Birthday *time.Time      `json:"birthday,omitempty"`
	Image    string          `json:"image,omitempty"`
	Role     Role            `json:"status"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
