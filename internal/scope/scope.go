// Package scope shapes which slice of the member dataset an identity sees.
// It assumes the caller has already been admitted by the authorization
// gate and only narrows data; it never widens it.
package scope

import (
	"fmt"

	"github.com/spec-kit/membership-portal/internal/domain"
)

// Tier is the geographic breadth of a scope.
type Tier int

const (
	TierNone Tier = iota
	TierBlock
	TierDistrict
	TierSambhag
	TierAll
)

func (t Tier) String() string {
	switch t {
	case TierBlock:
		return "block"
	case TierDistrict:
		return "district"
	case TierSambhag:
		return "sambhag"
	case TierAll:
		return "all"
	default:
		return "none"
	}
}

// Scope bounds the records visible to one identity.
type Scope struct {
	Tier     Tier
	Sambhag  string
	District string
	Block    string
}

// ForIdentity derives the scope from the identity's role and scope keys. A
// manager missing the key of its own tier gets TierNone.
func ForIdentity(identity domain.Identity) Scope {
	s := Scope{Sambhag: identity.Sambhag, District: identity.District, Block: identity.Block}
	switch domain.ParseRole(string(identity.Role)) {
	case domain.RoleAdmin:
		return Scope{Tier: TierAll}
	case domain.RoleSambhagManager:
		if s.Sambhag != "" {
			return Scope{Tier: TierSambhag, Sambhag: s.Sambhag}
		}
	case domain.RoleDistrictManager:
		if s.District != "" {
			return Scope{Tier: TierDistrict, Sambhag: s.Sambhag, District: s.District}
		}
	case domain.RoleBlockManager:
		if s.Block != "" {
			s.Tier = TierBlock
			return s
		}
	}
	return Scope{Tier: TierNone}
}

// Contains reports whether a member falls inside the scope. Declared outer
// keys of narrower tiers must match too, so equally named districts in
// different sambhags stay apart.
func (s Scope) Contains(m domain.Member) bool {
	switch s.Tier {
	case TierAll:
		return true
	case TierSambhag:
		return m.Sambhag == s.Sambhag
	case TierDistrict:
		return m.District == s.District && optionalMatch(s.Sambhag, m.Sambhag)
	case TierBlock:
		return m.Block == s.Block && optionalMatch(s.District, m.District) && optionalMatch(s.Sambhag, m.Sambhag)
	default:
		return false
	}
}

// Filter keeps only the members inside the scope, preserving order.
func (s Scope) Filter(members []domain.Member) []domain.Member {
	out := make([]domain.Member, 0, len(members))
	for _, m := range members {
		if s.Contains(m) {
			out = append(out, m)
		}
	}
	return out
}

// Key identifies the scope for caching.
func (s Scope) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s", s.Tier, s.Sambhag, s.District, s.Block)
}

// Describe returns the human description of what the scope covers.
func (s Scope) Describe() string {
	switch s.Tier {
	case TierAll:
		return "सभी संभाग, जिले और ब्लॉक"
	case TierSambhag:
		return fmt.Sprintf("संभाग %s के सभी जिले और ब्लॉक", s.Sambhag)
	case TierDistrict:
		return fmt.Sprintf("जिला %s के सभी ब्लॉक", s.District)
	case TierBlock:
		return fmt.Sprintf("ब्लॉक %s", s.Block)
	default:
		return "कोई डेटा उपलब्ध नहीं"
	}
}

func optionalMatch(want, got string) bool {
	return want == "" || want == got
}
