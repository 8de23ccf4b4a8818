package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/membership-portal/internal/domain"
	"github.com/spec-kit/membership-portal/internal/fetch"
	"github.com/spec-kit/membership-portal/internal/scope"
)

// MemberRepository serves scoped member pages from the members table.
type MemberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository builds the Postgres member page source.
func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

// FetchPage implements fetch.PageSource.
func (r *MemberRepository) FetchPage(ctx context.Context, req fetch.PageRequest) (fetch.Page, error) {
	if req.Scope.Tier == scope.TierNone {
		return fetch.Page{Content: []domain.Member{}, PageNumber: req.Page}, nil
	}
	where, args := scopeClause(req.Scope)

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM members WHERE `+where, args...).Scan(&total); err != nil {
		return fetch.Page{}, fmt.Errorf("count members: %w", err)
	}

	size := req.Size
	if size <= 0 {
		size = 20
	}
	offset := req.Page * size
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`
        SELECT id, name, email, phone, sambhag, district, block, membership_type, status, remark
        FROM members WHERE %s ORDER BY name ASC, id ASC LIMIT %d OFFSET %d`, where, size, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return fetch.Page{}, fmt.Errorf("list members: %w", err)
	}
	members, err := pgx.CollectRows(rows, scanMember)
	if err != nil {
		return fetch.Page{}, fmt.Errorf("scan members: %w", err)
	}
	if members == nil {
		members = []domain.Member{}
	}
	return fetch.Page{
		Content:       members,
		PageNumber:    req.Page,
		TotalPages:    fetch.TotalPages(total, size),
		TotalElements: total,
	}, nil
}

// scopeClause restricts the members table to s. Only declared keys narrow
// the result, matching scope.Scope.Contains.
func scopeClause(s scope.Scope) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	if s.Tier != scope.TierAll {
		add("sambhag", s.Sambhag)
		add("district", s.District)
		add("block", s.Block)
	}
	return strings.Join(clauses, " AND "), args
}

func scanMember(row pgx.CollectableRow) (domain.Member, error) {
	var m domain.Member
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Email,
		&m.Phone,
		&m.Sambhag,
		&m.District,
		&m.Block,
		&m.MembershipType,
		&m.Status,
		&m.Remark,
	)
	return m, err
}
