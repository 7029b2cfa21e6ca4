package repository

import (
	"context"
	"database/sql"
	"errors"

	"zeno-access/internal/policy/domain"
)

const policyColumns = "id, org_id, rules, enabled, created_at"

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a policy repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the policy for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Policy, error) {
	var p domain.Policy
	err := r.db.QueryRowContext(ctx, "SELECT "+policyColumns+" FROM policies WHERE id = $1", id).
		Scan(&p.ID, &p.OrgID, &p.Rules, &p.Enabled, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// ListByOrg returns all policies for the given org. Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListByOrg(ctx context.Context, orgID int64) ([]*domain.Policy, error) {
	return r.list(ctx, "SELECT "+policyColumns+" FROM policies WHERE org_id = $1 ORDER BY created_at, id", orgID)
}

// GetEnabledPoliciesByOrg returns the enabled policies for the given org in creation order.
func (r *PostgresRepository) GetEnabledPoliciesByOrg(ctx context.Context, orgID int64) ([]*domain.Policy, error) {
	return r.list(ctx, "SELECT "+policyColumns+" FROM policies WHERE org_id = $1 AND enabled ORDER BY created_at, id", orgID)
}

// Create persists the policy to the database. The policy must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.Policy) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO policies ("+policyColumns+") VALUES ($1, $2, $3, $4, $5)",
		p.ID, p.OrgID, p.Rules, p.Enabled, p.CreatedAt)
	return err
}

// Update updates the rules and enabled flag of the existing policy. Returns an error if the update fails.
func (r *PostgresRepository) Update(ctx context.Context, p *domain.Policy) error {
	_, err := r.db.ExecContext(ctx, "UPDATE policies SET rules = $2, enabled = $3 WHERE id = $1", p.ID, p.Rules, p.Enabled)
	return err
}

// Delete removes the policy. Deleting a missing id is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM policies WHERE id = $1", id)
	return err
}

func (r *PostgresRepository) list(ctx context.Context, query string, orgID int64) ([]*domain.Policy, error) {
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Policy
	for rows.Next() {
		var p domain.Policy
		if err := rows.Scan(&p.ID, &p.OrgID, &p.Rules, &p.Enabled, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
