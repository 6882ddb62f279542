package request

import (
	"errors"
	"time"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/shopspring/decimal"
)

const (
	passwordRegexPattern = `^(?=.*[A-Za-z])(?=.*\d).{8,}$`
	birthdayLayout       = "2006-01-02"
)

var (
	passwordExp = regexp2.MustCompile(passwordRegexPattern, regexp2.None)

	errInvalidPassword         = errors.New("the password must be at least 8 characters and contain 1 letter and 1 number")
	errConfirmPasswordMismatch = errors.New("confirm password doesn't match the password")
	errInvalidBirthday         = errors.New("birthday must be formatted as YYYY-MM-DD")
)

// SignupRequest is bound from JSON or from a multipart form carrying the profile image.
type SignupRequest struct {
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
	Name            string `json:"user_name" form:"user_name"`
	Wallet          string `json:"wallet" form:"wallet" example:"0"`
	Birthday        string `json:"birthday" form:"birthday" example:"1999-12-31"`
}

func (req *SignupRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Wallet, validation.By(nonNegativeDecimalString)),
		validation.Field(&req.Birthday, validation.Date(birthdayLayout).Error(errInvalidBirthday.Error())),
	)
	if err != nil {
		return err
	}

	if ok, _ := passwordExp.MatchString(req.Password); !ok {
		return errInvalidPassword
	}

	if req.ConfirmPassword != "" && req.Password != req.ConfirmPassword {
		return errConfirmPasswordMismatch
	}

	return nil
}

// WalletAmount is zero when no wallet was sent. Call after Validate.
func (req *SignupRequest) WalletAmount() decimal.Decimal {
	if req.Wallet == "" {
		return decimal.Zero
	}

	return decimal.RequireFromString(req.Wallet)
}

// BirthdayDate is nil when no birthday was sent. Call after Validate.
func (req *SignupRequest) BirthdayDate() *time.Time {
	if req.Birthday == "" {
		return nil
	}

	t, err := time.Parse(birthdayLayout, req.Birthday)
	if err != nil {
		return nil
	}

	return &t
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *LoginRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required),
	)
}
