package auth

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/spec-kit/membership-portal/internal/domain"
)

// Capability is a resource:action label shown to the portal.
type Capability string

const (
	CapMembersRead   Capability = "members:read"
	CapMembersExport Capability = "members:export"
	CapTicketsRead   Capability = "tickets:read"
	CapTicketsManage Capability = "tickets:manage"
	CapProfileRead   Capability = "profile:read"
)

// AllCapabilities lists capabilities in display order.
var AllCapabilities = []Capability{CapMembersRead, CapMembersExport, CapTicketsRead, CapTicketsManage, CapProfileRead}

const capabilityModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

var defaultCapabilities = map[domain.Role][]Capability{
	domain.RoleAdmin:           {CapMembersRead, CapMembersExport, CapTicketsRead, CapTicketsManage, CapProfileRead},
	domain.RoleSambhagManager:  {CapMembersRead, CapMembersExport, CapProfileRead},
	domain.RoleDistrictManager: {CapMembersRead, CapMembersExport, CapProfileRead},
	domain.RoleBlockManager:    {CapMembersRead, CapMembersExport, CapProfileRead},
	domain.RoleMember:          {CapProfileRead},
}

// CapabilityPolicy answers which capabilities a role holds.
type CapabilityPolicy struct {
	enforcer *casbin.Enforcer
}

// NewCapabilityPolicy loads the built-in role table into a casbin enforcer.
func NewCapabilityPolicy() (*CapabilityPolicy, error) {
	m, err := model.NewModelFromString(capabilityModel)
	if err != nil {
		return nil, fmt.Errorf("capability model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("capability enforcer: %w", err)
	}
	for role, caps := range defaultCapabilities {
		for _, c := range caps {
			obj, act := c.split()
			if _, err := enforcer.AddPolicy(string(role), obj, act); err != nil {
				return nil, fmt.Errorf("capability policy %s %s: %w", role, c, err)
			}
		}
	}
	return &CapabilityPolicy{enforcer: enforcer}, nil
}

// Can reports whether role holds capability.
func (p *CapabilityPolicy) Can(role domain.Role, capability Capability) bool {
	obj, act := capability.split()
	allowed, err := p.enforcer.Enforce(string(domain.ParseRole(string(role))), obj, act)
	if err != nil {
		return false
	}
	return allowed
}

// Capabilities lists what role holds, in display order.
func (p *CapabilityPolicy) Capabilities(role domain.Role) []Capability {
	held := make([]Capability, 0, len(AllCapabilities))
	for _, c := range AllCapabilities {
		if p.Can(role, c) {
			held = append(held, c)
		}
	}
	return held
}

func (c Capability) split() (string, string) {
	obj, act, found := strings.Cut(string(c), ":")
	if !found {
		return obj, "read"
	}
	return obj, act
}
