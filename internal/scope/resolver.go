package scope

import (
	"github.com/spec-kit/membership-portal/internal/auth"
	"github.com/spec-kit/membership-portal/internal/domain"
)

// Counts aggregates a scoped dataset. The optional tier counts are only
// present for tiers broad enough to be entitled to them.
type Counts struct {
	TotalUsers  int  `json:"totalUsers"`
	ActiveUsers int  `json:"activeUsers"`
	Sambhags    *int `json:"sambhags,omitempty"`
	Districts   *int `json:"districts,omitempty"`
	Blocks      *int `json:"blocks,omitempty"`
}

// Result is what a role may see of the member dataset.
type Result struct {
	Scope        Scope
	Description  string
	Capabilities []auth.Capability
	Members      []domain.Member
	Counts       Counts
}

// CapabilitySource lists the capability labels of a role.
type CapabilitySource interface {
	Capabilities(role domain.Role) []auth.Capability
}

// Resolver maps an identity to its slice of the dataset.
type Resolver struct {
	capabilities CapabilitySource
}

// NewResolver builds a resolver. A nil source yields no capability labels.
func NewResolver(capabilities CapabilitySource) *Resolver {
	return &Resolver{capabilities: capabilities}
}

// Resolve filters members to the identity's scope and counts them.
func (r *Resolver) Resolve(identity domain.Identity, members []domain.Member) Result {
	s := ForIdentity(identity)
	visible := s.Filter(members)
	return Result{
		Scope:        s,
		Description:  s.Describe(),
		Capabilities: r.capabilitiesFor(identity.Role),
		Members:      visible,
		Counts:       CountsFor(s, visible),
	}
}

// Capabilities returns the labels for a role.
func (r *Resolver) Capabilities(role domain.Role) []auth.Capability {
	return r.capabilitiesFor(role)
}

func (r *Resolver) capabilitiesFor(role domain.Role) []auth.Capability {
	if r == nil || r.capabilities == nil {
		return nil
	}
	return r.capabilities.Capabilities(domain.ParseRole(string(role)))
}

// CountsFor aggregates members that are already inside s.
func CountsFor(s Scope, members []domain.Member) Counts {
	counts := Counts{TotalUsers: len(members)}
	sambhags := map[string]struct{}{}
	districts := map[[2]string]struct{}{}
	blocks := map[[3]string]struct{}{}
	for _, m := range members {
		if m.Active() {
			counts.ActiveUsers++
		}
		if m.Sambhag != "" {
			sambhags[m.Sambhag] = struct{}{}
		}
		if m.District != "" {
			districts[[2]string{m.Sambhag, m.District}] = struct{}{}
		}
		if m.Block != "" {
			blocks[[3]string{m.Sambhag, m.District, m.Block}] = struct{}{}
		}
	}
	switch s.Tier {
	case TierAll:
		counts.Sambhags = intPtr(len(sambhags))
		counts.Districts = intPtr(len(districts))
		counts.Blocks = intPtr(len(blocks))
	case TierSambhag:
		counts.Districts = intPtr(len(districts))
		counts.Blocks = intPtr(len(blocks))
	case TierDistrict:
		counts.Blocks = intPtr(len(blocks))
	}
	return counts
}

func intPtr(v int) *int {
	return &v
}
