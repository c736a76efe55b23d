package middleware

import "context"

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxRole     contextKey = "actor_role"
	ctxAccessID contextKey = "access_id"
	ctxDeviceID contextKey = "device_id"
)

func UserIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxUserID)
}

func RoleFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxRole)
}

// AccessIDFromContext returns the jti of the access token on the request.
func AccessIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxAccessID)
}

func DeviceIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxDeviceID)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithRole injects the caller role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}

// WithAccessID injects the access token id into the context.
func WithAccessID(ctx context.Context, accessID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAccessID, accessID)
}
