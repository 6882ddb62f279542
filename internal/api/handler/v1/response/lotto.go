package response

import (
	"github.com/shopspring/decimal"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/domain"
)

type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type WalletResponse struct {
	UserID uint            `json:"uid"`
	Wallet decimal.Decimal `json:"wallet" swaggertype:"string" example:"150.00"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
