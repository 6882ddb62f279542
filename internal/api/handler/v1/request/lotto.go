package request

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"
)

var (
	digitsExp = regexp.MustCompile(`^[0-9]+$`)

	errNotPositive = errors.New("must be greater than 0")
	errNegative    = errors.New("must not be negative")
	errNotDecimal  = errors.New("must be a decimal number")
)

func positiveDecimal(value interface{}) error {
	d, _ := value.(decimal.Decimal)
	if !d.IsPositive() {
		return errNotPositive
	}
	return nil
}

func nonNegativeDecimalString(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return errNotDecimal
	}
	if d.IsNegative() {
		return errNegative
	}

	return nil
}

type CreateLottosRequest struct {
	Quantity int             `json:"quantity" example:"10"`
	Price    decimal.Decimal `json:"price" swaggertype:"string" example:"80"`
}

func (req *CreateLottosRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Quantity, validation.Required, validation.Min(1)),
		validation.Field(&req.Price, validation.By(positiveDecimal)),
	)
}

type SearchLottosRequest struct {
	Number string `json:"number" example:"123"`
}

func (req *SearchLottosRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Number, validation.Required, validation.Length(1, 6), validation.Match(digitsExp)),
	)
}

type PurchaseRequest struct {
	Price decimal.Decimal `json:"price" swaggertype:"string" example:"80"`
}

func (req *PurchaseRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Price, validation.By(positiveDecimal)),
	)
}

type CreateRewardRequest struct {
	Type  string          `json:"reward_type" example:"1st"`
	Money decimal.Decimal `json:"reward_money" swaggertype:"string" example:"6000000"`
}

func (req *CreateRewardRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Type, validation.Required, validation.Length(1, 50)),
		validation.Field(&req.Money, validation.By(positiveDecimal)),
	)
}

type AssignRewardRequest struct {
	RewardID uint `json:"rid" example:"1"`
}

func (req *AssignRewardRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.RewardID, validation.Required),
	)
}

type CreditWalletRequest struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"string" example:"100"`
}

func (req *CreditWalletRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Amount, validation.By(positiveDecimal)),
	)
}
