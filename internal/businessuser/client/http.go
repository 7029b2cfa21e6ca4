// Package client reads business-user assignments from the external business REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"zeno-access/internal/businessuser/domain"
	roledomain "zeno-access/internal/role/domain"
)

const defaultTimeout = 15 * time.Second

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 4 << 20

// OrgHeader carries the caller's organization so the API can scope the lookup.
const OrgHeader = "X-Organization-ID"

// HTTPClient lists assignments from GET {BaseURL}/api/businesses/{id}/users.
type HTTPClient struct {
	BaseURL string
	// Token, when set, is sent as a bearer token if TokenSource yields nothing.
	Token string
	// TokenSource returns the caller's own token for the request context, so the API
	// authorizes the lookup as the caller rather than as this service.
	TokenSource func(context.Context) string
	HTTPClient  *http.Client
}

// NewHTTPClient returns a client for the API rooted at baseURL.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// wireRecord accepts both the assignment shape {id, admin_user_id, role, business_id} and the
// team listing shape {id (user id), assignment_id, email, role}.
type wireRecord struct {
	ID           *int64          `json:"id"`
	AssignmentID *int64          `json:"assignment_id"`
	AdminUserID  *int64          `json:"admin_user_id"`
	BusinessID   *int64          `json:"business_id"`
	Role         json.RawMessage `json:"role"`
}

// ListByBusiness returns the assignments of businessID in response order. Records that cannot
// be attributed to a user are dropped; a record with an unrecognized role keeps BusinessRoleNone.
// A 404 (the business is unknown or not visible to orgID) yields domain.ErrBusinessNotFound,
// as do records naming a different business.
func (c *HTTPClient) ListByBusiness(ctx context.Context, orgID, businessID int64) ([]*domain.Assignment, error) {
	if orgID == 0 {
		return nil, domain.ErrBusinessNotFound
	}
	if c.BaseURL == "" {
		return nil, fmt.Errorf("assignments api: base URL not configured")
	}
	url := c.BaseURL + "/api/businesses/" + strconv.FormatInt(businessID, 10) + "/users"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(OrgHeader, strconv.FormatInt(orgID, 10))
	if token := c.bearer(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("assignments api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("assignments api: read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrBusinessNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("assignments api: request failed status=%d body=%s", resp.StatusCode, string(body))
	}
	records, err := decodeRecords(body)
	if err != nil {
		return nil, fmt.Errorf("assignments api: %w", err)
	}

	out := make([]*domain.Assignment, 0, len(records))
	for _, r := range records {
		a := r.toAssignment(businessID)
		if a == nil {
			continue
		}
		if a.BusinessID != businessID {
			return nil, domain.ErrBusinessNotFound
		}
		out = append(out, a)
	}
	return out, nil
}

func (c *HTTPClient) bearer(ctx context.Context) string {
	if c.TokenSource != nil {
		if token := c.TokenSource(ctx); token != "" {
			return token
		}
	}
	return c.Token
}

// decodeRecords accepts a bare JSON array or an object wrapping it under "data".
func decodeRecords(body []byte) ([]wireRecord, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	var records []wireRecord
	if body[0] == '[' {
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, err
		}
		return records, nil
	}
	var envelope struct {
		Data []wireRecord `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

func (r wireRecord) toAssignment(businessID int64) *domain.Assignment {
	a := &domain.Assignment{BusinessID: businessID, Role: roledomain.BusinessRoleNone}
	switch {
	case r.AdminUserID != nil:
		a.AdminUserID = *r.AdminUserID
		if r.ID != nil {
			a.ID = *r.ID
		}
	case r.AssignmentID != nil && r.ID != nil:
		a.ID = *r.AssignmentID
		a.AdminUserID = *r.ID
	default:
		return nil
	}
	if r.BusinessID != nil && *r.BusinessID != 0 {
		a.BusinessID = *r.BusinessID
	}
	var role string
	if len(r.Role) > 0 && json.Unmarshal(r.Role, &role) == nil {
		a.Role = roledomain.ParseBusinessRole(role)
	}
	return a
}
