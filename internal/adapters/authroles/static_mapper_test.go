package authroles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/taxlink/partner-portal/internal/domain/auth"
)

func TestStaticRoleMapper_Map(t *testing.T) {
	mapper := StaticRoleMapper{
		AdminGroup: "portal-admins",
		AgentGroup: "portal-agents",
		CPAGroup:   "portal-cpas",
	}

	tests := []struct {
		name   string
		groups []string
		want   domainauth.Role
	}{
		{"admin group", []string{"portal-admins"}, domainauth.RoleSuperAdmin},
		{"agent group", []string{"portal-agents"}, domainauth.RoleAgent},
		{"cpa group", []string{"portal-cpas"}, domainauth.RoleCPA},
		{"admin wins over agent", []string{"portal-agents", "portal-admins"}, domainauth.RoleSuperAdmin},
		{"agent wins over cpa", []string{"portal-cpas", "portal-agents"}, domainauth.RoleAgent},
		{"unrelated groups", []string{"engineering", "everyone"}, domainauth.RoleUnresolved},
		{"no groups", nil, domainauth.RoleUnresolved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapper.Map(tt.groups))
		})
	}
}

func TestStaticRoleMapper_EmptyGroupNamesNeverMatch(t *testing.T) {
	mapper := StaticRoleMapper{}

	assert.Equal(t, domainauth.RoleUnresolved, mapper.Map([]string{"", "portal-admins"}))
}
