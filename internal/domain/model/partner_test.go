package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/taxlink/partner-portal/internal/domain/auth"
)

func TestCreatePartnerRequest_Validate(t *testing.T) {
	valid := CreatePartnerRequest{
		ID:    "user-1",
		Name:  "Pat Example",
		Email: "pat@example.com",
		Phone: "555-0100",
		Role:  domainauth.RoleCPA,
	}
	require.NoError(t, valid.Validate())

	t.Run("missing id", func(t *testing.T) {
		req := valid
		req.ID = " "
		assert.Error(t, req.Validate())
	})

	t.Run("missing name", func(t *testing.T) {
		req := valid
		req.Name = ""
		assert.Error(t, req.Validate())
	})

	t.Run("bad email", func(t *testing.T) {
		req := valid
		req.Email = "not-an-email"
		assert.Error(t, req.Validate())
	})

	t.Run("bad phone", func(t *testing.T) {
		req := valid
		req.Phone = "call me"
		assert.Error(t, req.Validate())
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		req := valid
		req.Role = "superuser"
		assert.Error(t, req.Validate())
	})

	t.Run("legacy alias role accepted", func(t *testing.T) {
		req := valid
		req.Role = "admin"
		assert.NoError(t, req.Validate())
	})

	t.Run("empty role allowed", func(t *testing.T) {
		req := valid
		req.Role = ""
		assert.NoError(t, req.Validate())
	})
}

func TestUpdatePartnerRequest_Validate(t *testing.T) {
	t.Run("all nil is a no-op", func(t *testing.T) {
		req := UpdatePartnerRequest{}
		assert.NoError(t, req.Validate())
	})

	t.Run("valid phone", func(t *testing.T) {
		phone := "555-0100"
		req := UpdatePartnerRequest{Phone: &phone}
		assert.NoError(t, req.Validate())
	})

	t.Run("invalid email", func(t *testing.T) {
		email := "nope"
		req := UpdatePartnerRequest{Email: &email}
		assert.Error(t, req.Validate())
	})

	t.Run("empty name rejected when provided", func(t *testing.T) {
		name := "  "
		req := UpdatePartnerRequest{Name: &name}
		assert.Error(t, req.Validate())
	})
}

func TestPartner_Stats(t *testing.T) {
	p := Partner{
		TotalEarnings:   1200.50,
		WalletBalance:   300.25,
		TotalReferred:   14,
		TotalSubscribed: 9,
	}
	stats := p.Stats()
	assert.Equal(t, 1200.50, stats.TotalEarnings)
	assert.Equal(t, 300.25, stats.WalletBalance)
	assert.Equal(t, 14, stats.TotalReferred)
	assert.Equal(t, 9, stats.TotalSubscribed)
}
