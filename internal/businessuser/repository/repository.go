package repository

import (
	"context"
	"errors"

	"zeno-access/internal/businessuser/domain"
	roledomain "zeno-access/internal/role/domain"
)

// ErrDuplicateAssignment is returned by Create when the user already has a role in the business.
var ErrDuplicateAssignment = errors.New("business user already assigned")

// Repository defines persistence for businesses and their user assignments.
// Every business-scoped read takes the caller's organization and answers
// domain.ErrBusinessNotFound for a business of another organization.
// Lookups by primary key return (nil, nil) when the row does not exist.
type Repository interface {
	// CreateBusiness inserts b and an owner assignment for ownerUserID in one transaction,
	// setting b.ID and b.CreatedAt.
	CreateBusiness(ctx context.Context, b *domain.Business, ownerUserID int64) (*domain.Assignment, error)
	GetBusiness(ctx context.Context, id int64) (*domain.Business, error)
	ListBusinesses(ctx context.Context, orgID int64) ([]*domain.Business, error)

	GetByID(ctx context.Context, id int64) (*domain.Assignment, error)
	ListByBusiness(ctx context.Context, orgID, businessID int64) ([]*domain.Assignment, error)
	// ListByUser returns the user's assignments in businesses of orgID.
	ListByUser(ctx context.Context, orgID, userID int64) ([]*domain.Assignment, error)
	// Create persists a and sets its ID and CreatedAt. Returns domain.ErrBusinessNotFound when
	// the business does not exist.
	Create(ctx context.Context, a *domain.Assignment) error
	UpdateRole(ctx context.Context, id int64, role roledomain.BusinessRole) (*domain.Assignment, error)
	// Delete removes the assignment. Deleting a missing id is not an error.
	Delete(ctx context.Context, id int64) error
}
