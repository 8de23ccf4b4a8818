package auth

import (
	"testing"

	"github.com/spec-kit/membership-portal/internal/domain"
)

func TestTokenRoundTripCanonicalisesRole(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	token, _, err := tm.GenerateToken("acc-1", domain.Identity{Role: domain.Role("ROLE_DISTRICT_MANAGER"), Name: "सुरेश", District: "धार"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	identity := claims.Identity()
	if identity.Role != domain.RoleDistrictManager || identity.District != "धार" || identity.Name != "सुरेश" {
		t.Fatalf("unexpected identity %+v", identity)
	}
	if _, err := NewTokenManager("other", 5).ParseToken(token); err == nil {
		t.Fatalf("token signed with another secret must fail")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := ComparePassword(hash, "s3cret"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
