package scope

import (
	"slices"
	"testing"

	"github.com/spec-kit/membership-portal/internal/auth"
	"github.com/spec-kit/membership-portal/internal/domain"
)

var dataset = []domain.Member{
	{ID: "1", Name: "अ", Sambhag: "इंदौर", District: "धार", Block: "बदनावर", Status: domain.MemberStatusActive},
	{ID: "2", Name: "ब", Sambhag: "इंदौर", District: "धार", Block: "सरदारपुर", Status: domain.MemberStatusInactive},
	{ID: "3", Name: "स", Sambhag: "इंदौर", District: "खरगोन", Block: "महेश्वर", Status: domain.MemberStatusActive},
	{ID: "4", Name: "द", Sambhag: "उज्जैन", District: "रतलाम", Block: "जावरा", Status: domain.MemberStatusActive},
	{ID: "5", Name: "ई", Sambhag: "उज्जैन", District: "धार", Block: "बदनावर", Status: domain.MemberStatusActive},
}

type staticCaps map[domain.Role][]auth.Capability

func (s staticCaps) Capabilities(role domain.Role) []auth.Capability {
	return s[role]
}

func ids(members []domain.Member) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.ID)
	}
	return out
}

func TestResolveTiers(t *testing.T) {
	r := NewResolver(nil)
	cases := []struct {
		name      string
		identity  domain.Identity
		wantIDs   []string
		districts bool
		blocks    bool
		sambhags  bool
	}{
		{"admin", domain.Identity{Role: domain.RoleAdmin}, []string{"1", "2", "3", "4", "5"}, true, true, true},
		{"sambhag", domain.Identity{Role: domain.RoleSambhagManager, Sambhag: "इंदौर"}, []string{"1", "2", "3"}, true, true, false},
		{"district", domain.Identity{Role: domain.RoleDistrictManager, Sambhag: "इंदौर", District: "धार"}, []string{"1", "2"}, false, true, false},
		{"district without sambhag key", domain.Identity{Role: "ROLE_DISTRICT_MANAGER", District: "धार"}, []string{"1", "2", "5"}, false, true, false},
		{"block", domain.Identity{Role: domain.RoleBlockManager, Sambhag: "इंदौर", District: "धार", Block: "बदनावर"}, []string{"1"}, false, false, false},
		{"block missing key", domain.Identity{Role: domain.RoleBlockManager, District: "धार"}, []string{}, false, false, false},
		{"member", domain.Identity{Role: domain.RoleMember, Block: "बदनावर"}, []string{}, false, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := r.Resolve(tc.identity, dataset)
			if got := ids(res.Members); !slices.Equal(got, tc.wantIDs) {
				t.Fatalf("members = %v, want %v", got, tc.wantIDs)
			}
			for _, m := range res.Members {
				if !res.Scope.Contains(m) {
					t.Fatalf("member %s outside scope", m.ID)
				}
			}
			if res.Counts.TotalUsers != len(tc.wantIDs) {
				t.Fatalf("total %d, want %d", res.Counts.TotalUsers, len(tc.wantIDs))
			}
			if (res.Counts.Districts != nil) != tc.districts {
				t.Fatalf("districts presence = %v, want %v", res.Counts.Districts != nil, tc.districts)
			}
			if (res.Counts.Blocks != nil) != tc.blocks {
				t.Fatalf("blocks presence = %v, want %v", res.Counts.Blocks != nil, tc.blocks)
			}
			if (res.Counts.Sambhags != nil) != tc.sambhags {
				t.Fatalf("sambhags presence = %v, want %v", res.Counts.Sambhags != nil, tc.sambhags)
			}
		})
	}
}

func TestCountsForSambhag(t *testing.T) {
	res := NewResolver(nil).Resolve(domain.Identity{Role: domain.RoleSambhagManager, Sambhag: "इंदौर"}, dataset)
	if res.Counts.ActiveUsers != 2 {
		t.Fatalf("active = %d, want 2", res.Counts.ActiveUsers)
	}
	if *res.Counts.Districts != 2 || *res.Counts.Blocks != 3 {
		t.Fatalf("unexpected tier counts districts=%d blocks=%d", *res.Counts.Districts, *res.Counts.Blocks)
	}
}

func TestAdminCountsSeparateSameNamedDistricts(t *testing.T) {
	res := NewResolver(nil).Resolve(domain.Identity{Role: domain.RoleAdmin}, dataset)
	if *res.Counts.Sambhags != 2 || *res.Counts.Districts != 4 || *res.Counts.Blocks != 5 {
		t.Fatalf("unexpected counts %+v / %d %d %d", res.Counts, *res.Counts.Sambhags, *res.Counts.Districts, *res.Counts.Blocks)
	}
}

func TestResolveCapabilities(t *testing.T) {
	caps := staticCaps{domain.RoleDistrictManager: {auth.CapMembersRead}}
	res := NewResolver(caps).Resolve(domain.Identity{Role: "ROLE_DISTRICT_MANAGER", District: "धार"}, dataset)
	if !slices.Equal(res.Capabilities, []auth.Capability{auth.CapMembersRead}) {
		t.Fatalf("unexpected capabilities %v", res.Capabilities)
	}
	if res.Description == "" {
		t.Fatalf("missing description")
	}
}

func TestScopeKeyDiffersPerTier(t *testing.T) {
	a := ForIdentity(domain.Identity{Role: domain.RoleDistrictManager, District: "धार"})
	b := ForIdentity(domain.Identity{Role: domain.RoleBlockManager, District: "धार", Block: "बदनावर"})
	if a.Key() == b.Key() {
		t.Fatalf("keys must differ: %s", a.Key())
	}
	if ForIdentity(domain.Identity{Role: domain.RoleAdmin, Sambhag: "x"}).Key() != (Scope{Tier: TierAll}).Key() {
		t.Fatalf("admin scope must ignore keys")
	}
}
