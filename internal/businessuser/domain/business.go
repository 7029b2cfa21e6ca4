package domain

import (
	"errors"
	"time"
)

// ErrBusinessNotFound is returned when a business does not exist or belongs to another
// organization. The two cases are indistinguishable to callers.
var ErrBusinessNotFound = errors.New("business not found")

// Business is a tenant-owned unit that users are assigned to. Every business belongs to
// exactly one organization.
type Business struct {
	ID        int64     `json:"id"`
	OrgID     int64     `json:"org_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate validates the business for persistence.
func (b *Business) Validate() error {
	if b.OrgID == 0 {
		return errors.New("org_id is required")
	}
	return nil
}
