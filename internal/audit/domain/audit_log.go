package domain

import "time"

// AuditLog represents an audit event. UserID is zero for events without an authenticated user.
type AuditLog struct {
	ID        string    `json:"id"`
	OrgID     int64     `json:"org_id"`
	UserID    int64     `json:"user_id,omitempty"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	IP        string    `json:"ip"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
