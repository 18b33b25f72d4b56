package postgres

import (
	"context"
	"errors"
	"fmt"

	"knowledge-check-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Memberships resolves company roles from company_members.
type Memberships struct {
	pool *pgxpool.Pool
}

func NewMemberships(pool *pgxpool.Pool) *Memberships {
	return &Memberships{pool: pool}
}

func (m *Memberships) Role(ctx context.Context, userID, companyID int64) (domain.Role, error) {
	var role string
	err := m.pool.QueryRow(ctx,
		`SELECT role FROM company_members WHERE user_id=$1 AND company_id=$2`,
		userID, companyID,
	).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("user %d in company %d: %w", userID, companyID, domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("load role: %w", err)
	}
	return domain.Role(role), nil
}

func (m *Memberships) CompanyMembers(ctx context.Context, companyID int64) ([]int64, error) {
	rows, err := m.pool.Query(ctx,
		`SELECT user_id FROM company_members WHERE company_id=$1 ORDER BY user_id`, companyID)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
