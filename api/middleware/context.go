package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/hbnb-dev/hbnb-backend/internal/policy"
)

type contextKey string

const (
	ctxUserID    contextKey = "user_id"
	ctxIsAdmin   contextKey = "is_admin"
	ctxSessionID contextKey = "session_id"
	ctxRequestID contextKey = "request_id"
	ctxAccessLog contextKey = "access_log"
)

// accessLog is shared by pointer between Logging and the handlers below it,
// so the completion line can carry the caller resolved further down.
type accessLog struct {
	userID string
	role   string
}

func accessLogFrom(ctx context.Context) *accessLog {
	if ctx == nil {
		return nil
	}
	entry, _ := ctx.Value(ctxAccessLog).(*accessLog)
	return entry
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(ctxRequestID).(string)
	return v
}

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func IsAdminFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v, _ := ctx.Value(ctxIsAdmin).(bool)
	return v
}

// SessionIDFromContext returns the jti of the bearer token, used by logout.
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// PrincipalFromContext builds the caller identity for the facade. Requests
// without a verified token are anonymous.
func PrincipalFromContext(ctx context.Context) policy.Principal {
	raw := UserIDFromContext(ctx)
	if raw == "" {
		return policy.Anonymous()
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return policy.Anonymous()
	}
	return policy.Principal{UserID: id, IsAdmin: IsAdminFromContext(ctx)}
}

// WithPrincipal injects an authenticated identity into the context.
func WithPrincipal(ctx context.Context, p policy.Principal, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, p.UserID.String())
	ctx = context.WithValue(ctx, ctxIsAdmin, p.IsAdmin)
	if sessionID != "" {
		ctx = context.WithValue(ctx, ctxSessionID, sessionID)
	}
	if entry := accessLogFrom(ctx); entry != nil {
		entry.userID = p.UserID.String()
		entry.role = p.Role()
	}
	return ctx
}
