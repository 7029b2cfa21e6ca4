package domain

import (
	"errors"
	"strings"
	"time"
)

// Policy is an org-level Rego module layered on top of the default business-access rules.
type Policy struct {
	ID        string    `json:"id"`
	OrgID     int64     `json:"org_id"`
	Rules     string    `json:"rules"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate validates the policy for persistence. Rego compilation is checked separately by the engine.
func (p *Policy) Validate() error {
	if p.OrgID == 0 {
		return errors.New("org_id is required")
	}
	if strings.TrimSpace(p.Rules) == "" {
		return errors.New("rules are required")
	}
	return nil
}
