package request

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupRequest_Validate(t *testing.T) {
	valid := SignupRequest{
		Email:    "a@lotto.io",
		Password: "abcdef12",
		Name:     "A",
		Wallet:   "150.50",
		Birthday: "2000-02-29",
	}

	tests := []struct {
		name    string
		mutate  func(r *SignupRequest)
		wantErr bool
	}{
		{name: "valid", mutate: func(r *SignupRequest) {}},
		{name: "optional fields empty", mutate: func(r *SignupRequest) { r.Wallet, r.Birthday = "", "" }},
		{name: "bad email", mutate: func(r *SignupRequest) { r.Email = "nope" }, wantErr: true},
		{name: "missing name", mutate: func(r *SignupRequest) { r.Name = "" }, wantErr: true},
		{name: "short password", mutate: func(r *SignupRequest) { r.Password = "ab12" }, wantErr: true},
		{name: "password without digit", mutate: func(r *SignupRequest) { r.Password = "abcdefgh" }, wantErr: true},
		{name: "password without letter", mutate: func(r *SignupRequest) { r.Password = "12345678" }, wantErr: true},
		{name: "confirm mismatch", mutate: func(r *SignupRequest) { r.ConfirmPassword = "abcdef13" }, wantErr: true},
		{name: "negative wallet", mutate: func(r *SignupRequest) { r.Wallet = "-1" }, wantErr: true},
		{name: "wallet not a number", mutate: func(r *SignupRequest) { r.Wallet = "lots" }, wantErr: true},
		{name: "bad birthday", mutate: func(r *SignupRequest) { r.Birthday = "31/12/1999" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)

			err := req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSignupRequest_Conversions(t *testing.T) {
	req := SignupRequest{Wallet: "150.50", Birthday: "2000-02-29"}

	assert.True(t, decimal.RequireFromString("150.5").Equal(req.WalletAmount()))
	require.NotNil(t, req.BirthdayDate())
	assert.Equal(t, "2000-02-29", req.BirthdayDate().Format("2006-01-02"))

	empty := SignupRequest{}
	assert.True(t, empty.WalletAmount().IsZero())
	assert.Nil(t, empty.BirthdayDate())
}

func TestLottoRequests_Validate(t *testing.T) {
	ten := decimal.NewFromInt(10)

	assert.NoError(t, (&CreateLottosRequest{Quantity: 5, Price: ten}).Validate())
	assert.Error(t, (&CreateLottosRequest{Quantity: 0, Price: ten}).Validate())
	assert.Error(t, (&CreateLottosRequest{Quantity: 5, Price: decimal.Zero}).Validate())

	assert.NoError(t, (&SearchLottosRequest{Number: "123"}).Validate())
	assert.Error(t, (&SearchLottosRequest{Number: ""}).Validate())
	assert.Error(t, (&SearchLottosRequest{Number: "12%"}).Validate())
	assert.Error(t, (&SearchLottosRequest{Number: "1234567"}).Validate())

	assert.NoError(t, (&PurchaseRequest{Price: ten}).Validate())
	assert.Error(t, (&PurchaseRequest{Price: decimal.NewFromInt(-1)}).Validate())

	assert.NoError(t, (&CreateRewardRequest{Type: "1st", Money: ten}).Validate())
	assert.Error(t, (&CreateRewardRequest{Type: "", Money: ten}).Validate())

	assert.NoError(t, (&AssignRewardRequest{RewardID: 1}).Validate())
	assert.Error(t, (&AssignRewardRequest{}).Validate())

	assert.NoError(t, (&CreditWalletRequest{Amount: ten}).Validate())
	assert.Error(t, (&CreditWalletRequest{Amount: decimal.Zero}).Validate())
}
