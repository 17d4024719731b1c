package authroles

import (
	domainauth "github.com/taxlink/partner-portal/internal/domain/auth"
)

// StaticRoleMapper maps IdP groups to portal roles by simple string
// membership rules. The most privileged matching group wins.
type StaticRoleMapper struct {
	AdminGroup string
	AgentGroup string
	CPAGroup   string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		if m.AdminGroup != "" && g == m.AdminGroup {
			return domainauth.RoleSuperAdmin
		}
	}
	for _, g := range groups {
		if m.AgentGroup != "" && g == m.AgentGroup {
			return domainauth.RoleAgent
		}
	}
	for _, g := range groups {
		if m.CPAGroup != "" && g == m.CPAGroup {
			return domainauth.RoleCPA
		}
	}
	return domainauth.RoleUnresolved
}
