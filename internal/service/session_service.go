package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/membership-portal/internal/auth"
	"github.com/spec-kit/membership-portal/internal/domain"
	"github.com/spec-kit/membership-portal/internal/repository"
	apperrors "github.com/spec-kit/membership-portal/pkg/util/errorutil"
)

// SessionService signs portal accounts in.
type SessionService struct {
	accounts   repository.AccountRepository
	tokens     *auth.TokenManager
	limiter    *auth.IPRateLimiter
	bcryptCost int
	logger     *zap.Logger
}

// SessionDependencies bundles collaborators for the session service.
type SessionDependencies struct {
	AccountRepo repository.AccountRepository
	Tokens      *auth.TokenManager
	Limiter     *auth.IPRateLimiter
	BcryptCost  int
	Logger      *zap.Logger
}

// LoginResult is an issued session token.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Identity  domain.Identity
}

// NewSessionService constructs the service.
func NewSessionService(deps SessionDependencies) *SessionService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &SessionService{
		accounts:   deps.AccountRepo,
		tokens:     deps.Tokens,
		limiter:    deps.Limiter,
		bcryptCost: deps.BcryptCost,
		logger:     deps.Logger,
	}
}

// Login verifies credentials and issues a token carrying the identity.
func (s *SessionService) Login(ctx context.Context, clientIP, email, password string) (LoginResult, error) {
	if !s.limiter.Allow(clientIP) {
		s.logger.Info("login throttled", zap.String("ip", clientIP))
		return LoginResult{}, apperrors.NewRateLimited()
	}
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoginResult{}, apperrors.NewValidationError("email and password are required", nil)
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return LoginResult{}, apperrors.NewUnauthorized(auth.ErrInvalidCredentials.Error())
	}
	if err != nil {
		return LoginResult{}, apperrors.MapError(err)
	}
	if !account.Active {
		return LoginResult{}, apperrors.NewUnauthorized(auth.ErrInvalidCredentials.Error())
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return LoginResult{}, apperrors.NewUnauthorized(err.Error())
	}

	identity := account.Identity()
	token, expiresAt, err := s.tokens.GenerateToken(account.ID, identity)
	if err != nil {
		return LoginResult{}, apperrors.NewInternalError(err)
	}
	s.logger.Info("login succeeded", zap.String("account_id", account.ID), zap.String("role", string(identity.Role)))
	return LoginResult{Token: token, ExpiresAt: expiresAt, Identity: identity}, nil
}

// EnsureAccount creates an account unless one with the same email exists.
func (s *SessionService) EnsureAccount(ctx context.Context, identity domain.Identity, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil
	}
	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	account := &domain.Account{
		Name:         identity.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.ParseRole(string(identity.Role)),
		Sambhag:      identity.Sambhag,
		District:     identity.District,
		Block:        identity.Block,
		Active:       true,
	}
	if err := s.accounts.Create(ctx, account); errors.Is(err, repository.ErrAccountExists) {
		return nil
	} else if err != nil {
		return err
	}
	s.logger.Info("account provisioned", zap.String("email", account.Email), zap.String("role", string(account.Role)))
	return nil
}
