package domain

import (
	"encoding/json"
	"errors"
	"time"

	roledomain "zeno-access/internal/role/domain"
)

// Assignment links a user to a business with a business-level role.
// Wire shape: {"id", "admin_user_id", "role", "business_id"}.
type Assignment struct {
	ID          int64                   `json:"id"`
	BusinessID  int64                   `json:"business_id"`
	AdminUserID int64                   `json:"admin_user_id"`
	Role        roledomain.BusinessRole `json:"role"`
	CreatedAt   time.Time               `json:"created_at"`
}

// UnmarshalJSON decodes an assignment record without validating its schema. A missing or
// unrecognized role decodes to BusinessRoleNone; an unparseable created_at is left zero.
func (a *Assignment) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID          int64           `json:"id"`
		BusinessID  int64           `json:"business_id"`
		AdminUserID int64           `json:"admin_user_id"`
		Role        json.RawMessage `json:"role"`
		CreatedAt   json.RawMessage `json:"created_at"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	a.ID = raw.ID
	a.BusinessID = raw.BusinessID
	a.AdminUserID = raw.AdminUserID
	a.CreatedAt = time.Time{}
	if len(raw.CreatedAt) > 0 {
		_ = json.Unmarshal(raw.CreatedAt, &a.CreatedAt)
	}
	a.Role = roledomain.BusinessRoleNone
	var role string
	if len(raw.Role) > 0 && json.Unmarshal(raw.Role, &role) == nil {
		a.Role = roledomain.ParseBusinessRole(role)
	}
	return nil
}

// Validate validates the assignment for persistence. Returns an error describing the first validation failure.
func (a *Assignment) Validate() error {
	if a.BusinessID == 0 {
		return errors.New("business_id is required")
	}
	if a.AdminUserID == 0 {
		return errors.New("admin_user_id is required")
	}
	if !a.Role.Valid() {
		return errors.New("role must be owner, manager or staff")
	}
	return nil
}
