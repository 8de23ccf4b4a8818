package service

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/membership-portal/internal/auth"
	"github.com/spec-kit/membership-portal/internal/domain"
	"github.com/spec-kit/membership-portal/internal/repository"
	apperrors "github.com/spec-kit/membership-portal/pkg/util/errorutil"
)

func newSessionService(t *testing.T, limiter *auth.IPRateLimiter) (*SessionService, *auth.TokenManager) {
	t.Helper()
	tokens := auth.NewTokenManager("test-secret", 5)
	svc := NewSessionService(SessionDependencies{
		AccountRepo: repository.NewMemoryAccountRepository(),
		Tokens:      tokens,
		Limiter:     limiter,
		BcryptCost:  bcrypt.MinCost,
	})
	identity := domain.Identity{Role: domain.Role("ROLE_DISTRICT_MANAGER"), Name: "Vikas", Sambhag: "इंदौर", District: "धार"}
	if err := svc.EnsureAccount(context.Background(), identity, "Vikas@Example.org", "s3cret"); err != nil {
		t.Fatalf("provision: %v", err)
	}
	return svc, tokens
}

func TestLoginIssuesIdentityToken(t *testing.T) {
	svc, tokens := newSessionService(t, nil)
	result, err := svc.Login(context.Background(), "10.0.0.1", "vikas@example.org", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := tokens.ParseToken(result.Token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	identity := claims.Identity()
	if identity.Role != domain.RoleDistrictManager || identity.District != "धार" || identity.Name != "Vikas" {
		t.Fatalf("unexpected identity %+v", identity)
	}
	if identity.Subject == "" || identity.Subject != result.Identity.Subject {
		t.Fatalf("token must carry the account id as subject, got %q", identity.Subject)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newSessionService(t, nil)
	ctx := context.Background()
	if _, err := svc.Login(ctx, "ip", "vikas@example.org", "wrong"); errorCode(err) != apperrors.CodeUnauthorized {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := svc.Login(ctx, "ip", "nobody@example.org", "s3cret"); errorCode(err) != apperrors.CodeUnauthorized {
		t.Fatalf("unknown email: %v", err)
	}
	if _, err := svc.Login(ctx, "ip", "", ""); errorCode(err) != apperrors.CodeValidation {
		t.Fatalf("blank input: %v", err)
	}
}

func TestLoginThrottled(t *testing.T) {
	svc, _ := newSessionService(t, auth.NewIPRateLimiter(0.001, 1))
	ctx := context.Background()
	if _, err := svc.Login(ctx, "10.0.0.9", "vikas@example.org", "wrong"); errorCode(err) != apperrors.CodeUnauthorized {
		t.Fatalf("first attempt: %v", err)
	}
	if _, err := svc.Login(ctx, "10.0.0.9", "vikas@example.org", "s3cret"); errorCode(err) != apperrors.CodeRateLimited {
		t.Fatalf("second attempt should be throttled, got %v", err)
	}
}

func TestEnsureAccountIsIdempotent(t *testing.T) {
	svc, _ := newSessionService(t, nil)
	identity := domain.Identity{Role: domain.RoleAdmin, Name: "Other"}
	if err := svc.EnsureAccount(context.Background(), identity, "vikas@example.org", "changed"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if _, err := svc.Login(context.Background(), "ip", "vikas@example.org", "s3cret"); err != nil {
		t.Fatalf("existing account must keep its password: %v", err)
	}
}
