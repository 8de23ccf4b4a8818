package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/membership-portal/internal/domain"
)

// MemoryAccountRepository keeps accounts in process. It reports missing
// accounts with pgx.ErrNoRows like the Postgres store.
type MemoryAccountRepository struct {
	mu      sync.RWMutex
	byEmail map[string]domain.Account
}

// NewMemoryAccountRepository builds an empty store.
func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{byEmail: make(map[string]domain.Account)}
}

func (r *MemoryAccountRepository) Create(_ context.Context, account *domain.Account) error {
	email := strings.ToLower(strings.TrimSpace(account.Email))
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[email]; exists {
		return ErrAccountExists
	}
	now := time.Now().UTC()
	account.ID = uuid.NewString()
	account.Email = email
	account.CreatedAt = now
	account.UpdatedAt = now
	r.byEmail[email] = *account
	return nil
}

func (r *MemoryAccountRepository) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &account, nil
}
