package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/taxlink/partner-portal/internal/domain/model"
	apperrors "github.com/taxlink/partner-portal/internal/errors"
	"github.com/taxlink/partner-portal/internal/mocks"
)

func newBankAccountService(t *testing.T) (*mocks.MockBankAccountRepository, *BankAccountService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	repo := mocks.NewMockBankAccountRepository(ctrl)
	svc := NewBankAccountService(BankAccountServiceOptions{Accounts: repo})
	return repo, svc
}

func TestBankAccountService_List(t *testing.T) {
	repo, svc := newBankAccountService(t)
	ctx := context.Background()

	expected := []*model.BankAccount{
		{ID: "acct-1", IsDefault: true},
		{ID: "acct-2"},
	}
	repo.EXPECT().List(ctx, "user-1").Return(expected, nil)

	got, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, expected, got)
}

func TestBankAccountService_Add(t *testing.T) {
	repo, svc := newBankAccountService(t)
	ctx := context.Background()

	req := &model.CreateBankAccountRequest{
		CompanyName:   "First Bank",
		RoutingNumber: "123456789",
		AccountNumber: "000123456",
		AccountType:   model.BankAccountTypeChecking,
	}
	repo.EXPECT().Create(ctx, "user-1", req).Return(
		&model.BankAccount{ID: "acct-1", IsDefault: true}, nil)

	created, err := svc.Add(ctx, "user-1", req)
	require.NoError(t, err)
	assert.True(t, created.IsDefault)
}

func TestBankAccountService_DeleteMissingIsNotFound(t *testing.T) {
	repo, svc := newBankAccountService(t)
	ctx := context.Background()

	repo.EXPECT().Delete(ctx, "user-1", "acct-missing").Return(false, nil)

	err := svc.Delete(ctx, "user-1", "acct-missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestBankAccountService_SetDefault(t *testing.T) {
	repo, svc := newBankAccountService(t)
	ctx := context.Background()

	repo.EXPECT().SetDefault(ctx, "user-1", "acct-2").Return(nil)
	assert.NoError(t, svc.SetDefault(ctx, "user-1", "acct-2"))
}

func TestBankAccountService_ValidatesIDs(t *testing.T) {
	_, svc := newBankAccountService(t)
	ctx := context.Background()

	_, err := svc.List(ctx, "")
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Get(ctx, "user-1", "")
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Add(ctx, "", &model.CreateBankAccountRequest{})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Update(ctx, "", "acct-1", model.UpdateBankAccountRequest{})
	assert.True(t, apperrors.IsValidation(err))

	err = svc.Delete(ctx, "user-1", "")
	assert.True(t, apperrors.IsValidation(err))

	err = svc.SetDefault(ctx, "", "acct-1")
	assert.True(t, apperrors.IsValidation(err))
}
