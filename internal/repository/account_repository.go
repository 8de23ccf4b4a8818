package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/membership-portal/internal/domain"
)

// ErrAccountExists reports that an account with the same email is stored.
var ErrAccountExists = errors.New("account already exists")

// AccountRepository defines persistence access for portal sign-in accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (name, email, password_hash, role, sambhag, district, block, active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (email) DO NOTHING
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		account.Name,
		strings.ToLower(strings.TrimSpace(account.Email)),
		account.PasswordHash,
		account.Role,
		account.Sambhag,
		account.District,
		account.Block,
		account.Active,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAccountExists
	}
	return err
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	const query = `
        SELECT id, name, email, password_hash, role, sambhag, district, block, active, created_at, updated_at
        FROM accounts WHERE email=$1`

	var (
		account domain.Account
		role    string
	)
	if err := r.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))).Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&role,
		&account.Sambhag,
		&account.District,
		&account.Block,
		&account.Active,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	account.Role = domain.ParseRole(role)
	return &account, nil
}
