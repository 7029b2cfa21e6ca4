package interceptors

import (
	"context"

	"zeno-access/internal/role/domain"
)

type contextKey struct{ name string }

var (
	userIDKey    = contextKey{"user_id"}
	orgIDKey     = contextKey{"org_id"}
	orgRoleKey   = contextKey{"org_role"}
	sessionIDKey = contextKey{"session_id"}
	tokenKey     = contextKey{"access_token"}
)

// WithIdentity returns a context with user_id, org_id, org_role and session_id set.
// Handlers and the rbac guards read these via GetUserID, GetOrgID, GetOrgRole, GetSessionID.
func WithIdentity(ctx context.Context, userID, orgID int64, orgRole domain.OrgRole, sessionID string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, orgIDKey, orgID)
	ctx = context.WithValue(ctx, orgRoleKey, orgRole)
	ctx = context.WithValue(ctx, sessionIDKey, sessionID)
	return ctx
}

// GetUserID returns the user_id from context and true if set; otherwise 0, false.
func GetUserID(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(userIDKey).(int64)
	return v, ok
}

// GetOrgID returns the org_id from context and true if set; otherwise 0, false.
func GetOrgID(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(orgIDKey).(int64)
	return v, ok
}

// GetOrgRole returns the organization role from context and true if set; otherwise "", false.
// The value is whatever the token carried; callers rely on the taxonomy's staff fallback.
func GetOrgRole(ctx context.Context) (domain.OrgRole, bool) {
	v, ok := ctx.Value(orgRoleKey).(domain.OrgRole)
	return v, ok
}

// GetSessionID returns the session_id from context and true if set; otherwise "", false.
func GetSessionID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionIDKey).(string)
	return v, ok
}

// WithAccessToken returns a context carrying the caller's validated access token, forwarded on
// calls to services that authorize as the caller.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// AccessToken returns the caller's access token, or "" when the request was not authenticated.
func AccessToken(ctx context.Context) string {
	v, _ := ctx.Value(tokenKey).(string)
	return v
}
