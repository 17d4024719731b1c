package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRoutingNumber(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "valid nine digits", value: "123456789", wantErr: false},
		{name: "all zeros", value: "000000000", wantErr: false},
		{name: "eight digits", value: "12345678", wantErr: true},
		{name: "ten digits", value: "1234567890", wantErr: true},
		{name: "letters mixed in", value: "12345abcd", wantErr: true},
		{name: "empty", value: "", wantErr: true},
		{name: "spaces", value: "12345678 ", wantErr: true},
		{name: "unicode digits", value: "１２３４５６７８９", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRoutingNumber(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseBankAccountType(t *testing.T) {
	got, ok := ParseBankAccountType(" Checking ")
	require.True(t, ok)
	assert.Equal(t, BankAccountTypeChecking, got)

	got, ok = ParseBankAccountType("savings")
	require.True(t, ok)
	assert.Equal(t, BankAccountTypeSavings, got)

	_, ok = ParseBankAccountType("money-market")
	assert.False(t, ok)

	_, ok = ParseBankAccountType("")
	assert.False(t, ok)
}

func TestCreateBankAccountRequest_Validate(t *testing.T) {
	valid := CreateBankAccountRequest{
		CompanyName:   "Acme Payroll",
		RoutingNumber: "123456789",
		AccountNumber: "000123456",
		AccountType:   BankAccountTypeChecking,
	}
	require.NoError(t, valid.Validate())

	t.Run("missing company name", func(t *testing.T) {
		req := valid
		req.CompanyName = "  "
		assert.Error(t, req.Validate())
	})

	t.Run("bad routing number", func(t *testing.T) {
		req := valid
		req.RoutingNumber = "1234567890"
		assert.Error(t, req.Validate())
	})

	t.Run("short account number", func(t *testing.T) {
		req := valid
		req.AccountNumber = "123"
		assert.Error(t, req.Validate())
	})

	t.Run("non-numeric account number", func(t *testing.T) {
		req := valid
		req.AccountNumber = "12345x789"
		assert.Error(t, req.Validate())
	})

	t.Run("invalid account type", func(t *testing.T) {
		req := valid
		req.AccountType = "brokerage"
		assert.Error(t, req.Validate())
	})
}

func TestUpdateBankAccountRequest_Validate(t *testing.T) {
	t.Run("all nil is a no-op", func(t *testing.T) {
		req := UpdateBankAccountRequest{}
		assert.NoError(t, req.Validate())
	})

	t.Run("provided fields are checked", func(t *testing.T) {
		bad := "12345678"
		req := UpdateBankAccountRequest{RoutingNumber: &bad}
		assert.Error(t, req.Validate())
	})

	t.Run("valid partial update", func(t *testing.T) {
		name := "New Bank"
		typ := BankAccountTypeSavings
		req := UpdateBankAccountRequest{CompanyName: &name, AccountType: &typ}
		assert.NoError(t, req.Validate())
	})
}
