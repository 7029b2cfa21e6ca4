package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"zeno-access/internal/businessuser/domain"
	"zeno-access/internal/db"
	roledomain "zeno-access/internal/role/domain"
)

const (
	assignmentColumns = "id, business_id, admin_user_id, role, created_at"
	businessColumns   = "id, org_id, name, created_at"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an assignment repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateBusiness inserts the business and its owner assignment in one transaction.
func (r *PostgresRepository) CreateBusiness(ctx context.Context, b *domain.Business, ownerUserID int64) (*domain.Assignment, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if ownerUserID == 0 {
		return nil, errors.New("admin_user_id is required")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx,
		"INSERT INTO businesses (org_id, name) VALUES ($1, $2) RETURNING id, created_at",
		b.OrgID, b.Name,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert business: %w", err)
	}
	owner := &domain.Assignment{BusinessID: b.ID, AdminUserID: ownerUserID, Role: roledomain.BusinessRoleOwner}
	err = tx.QueryRowContext(ctx,
		"INSERT INTO business_users (business_id, admin_user_id, role) VALUES ($1, $2, $3) RETURNING id, created_at",
		owner.BusinessID, owner.AdminUserID, string(owner.Role),
	).Scan(&owner.ID, &owner.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert business owner: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return owner, nil
}

// GetBusiness returns the business for id, or nil if not found.
func (r *PostgresRepository) GetBusiness(ctx context.Context, id int64) (*domain.Business, error) {
	var b domain.Business
	err := r.db.QueryRowContext(ctx, "SELECT "+businessColumns+" FROM businesses WHERE id = $1", id).
		Scan(&b.ID, &b.OrgID, &b.Name, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// ListBusinesses returns the businesses of an organization ordered by id.
func (r *PostgresRepository) ListBusinesses(ctx context.Context, orgID int64) ([]*domain.Business, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+businessColumns+" FROM businesses WHERE org_id = $1 ORDER BY id", orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Business
	for rows.Next() {
		var b domain.Business
		if err := rows.Scan(&b.ID, &b.OrgID, &b.Name, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

// GetByID returns the assignment for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.Assignment, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+assignmentColumns+" FROM business_users WHERE id = $1", id)
	a, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// ListByBusiness returns the assignments of a business in insertion order.
// Returns domain.ErrBusinessNotFound when the business is not part of orgID.
func (r *PostgresRepository) ListByBusiness(ctx context.Context, orgID, businessID int64) ([]*domain.Assignment, error) {
	var owned bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM businesses WHERE id = $1 AND org_id = $2)", businessID, orgID,
	).Scan(&owned)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, domain.ErrBusinessNotFound
	}
	return r.list(ctx, "SELECT "+assignmentColumns+" FROM business_users WHERE business_id = $1 ORDER BY id", businessID)
}

// ListByUser returns the user's assignments in businesses of orgID, in insertion order.
func (r *PostgresRepository) ListByUser(ctx context.Context, orgID, userID int64) ([]*domain.Assignment, error) {
	return r.list(ctx,
		"SELECT bu.id, bu.business_id, bu.admin_user_id, bu.role, bu.created_at FROM business_users bu "+
			"JOIN businesses b ON b.id = bu.business_id WHERE bu.admin_user_id = $1 AND b.org_id = $2 ORDER BY bu.id",
		userID, orgID)
}

// Create inserts the assignment and fills in ID and CreatedAt.
// Returns ErrDuplicateAssignment when the (business, user) pair already exists and
// domain.ErrBusinessNotFound when the business row is missing.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.Assignment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO business_users (business_id, admin_user_id, role) VALUES ($1, $2, $3) RETURNING id, created_at",
		a.BusinessID, a.AdminUserID, string(a.Role),
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateAssignment
		}
		if db.IsForeignKeyViolation(err) {
			return domain.ErrBusinessNotFound
		}
		return fmt.Errorf("insert business user: %w", err)
	}
	return nil
}

// UpdateRole sets the role of assignment id and returns the updated row, or nil if not found.
func (r *PostgresRepository) UpdateRole(ctx context.Context, id int64, role roledomain.BusinessRole) (*domain.Assignment, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("invalid business role %q", role)
	}
	row := r.db.QueryRowContext(ctx,
		"UPDATE business_users SET role = $2 WHERE id = $1 RETURNING "+assignmentColumns, id, string(role))
	a, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// Delete removes assignment id.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM business_users WHERE id = $1", id)
	return err
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Assignment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAssignment(s scanner) (*domain.Assignment, error) {
	var (
		a    domain.Assignment
		role string
	)
	if err := s.Scan(&a.ID, &a.BusinessID, &a.AdminUserID, &role, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Role = roledomain.ParseBusinessRole(role)
	return &a, nil
}
