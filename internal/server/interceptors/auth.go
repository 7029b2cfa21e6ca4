package interceptors

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"zeno-access/internal/security"
)

const bearerPrefix = "bearer "

// TokenValidator validates an access token and returns the caller it describes.
// *security.TokenProvider implements it.
type TokenValidator interface {
	ValidateAccess(token string) (security.Identity, error)
}

// AuthUnary returns a unary server interceptor that validates the Bearer (access) token
// from gRPC metadata and sets user_id, org_id, org_role, session_id and the validated token in
// context for protected RPCs.
// publicMethods is the set of full method names that do not require a Bearer token (e.g. health Check).
// A nil tokens rejects every protected RPC.
func AuthUnary(tokens TokenValidator, publicMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if publicMethods[info.FullMethod] {
			// Public methods still get an identity when a valid token is sent.
			if id, token, ok := authenticate(ctx, tokens); ok {
				ctx = WithAccessToken(WithIdentity(ctx, id.UserID, id.OrgID, id.OrgRole, id.SessionID), token)
			}
			return handler(ctx, req)
		}
		id, token, ok := authenticate(ctx, tokens)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing or invalid authorization")
		}
		ctx = WithAccessToken(WithIdentity(ctx, id.UserID, id.OrgID, id.OrgRole, id.SessionID), token)
		return handler(ctx, req)
	}
}

func authenticate(ctx context.Context, tokens TokenValidator) (security.Identity, string, bool) {
	if tokens == nil {
		return security.Identity{}, "", false
	}
	token := extractBearer(ctx)
	if token == "" {
		return security.Identity{}, "", false
	}
	id, err := tokens.ValidateAccess(token)
	if err != nil {
		return security.Identity{}, "", false
	}
	return id, token, true
}

// extractBearer returns the Bearer token from ctx metadata, or "" if missing or malformed.
func extractBearer(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return ""
	}
	v := strings.TrimSpace(vals[0])
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
