// Package mocks provides mock implementations for testing the partner portal.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the repository ports. The generated files are committed so the module builds
// without running codegen.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	t.Cleanup(ctrl.Finish)
//	repo := mocks.NewMockPartnerRepository(ctrl)
//	repo.EXPECT().GetByID(gomock.Any(), "user-1").Return(partner, nil)
package mocks

// Generate mock for PartnerRepository from internal/ports.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=partner_repository_mock.go github.com/taxlink/partner-portal/internal/ports PartnerRepository

// Generate mock for BankAccountRepository from internal/ports.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=bank_account_repository_mock.go github.com/taxlink/partner-portal/internal/ports BankAccountRepository
