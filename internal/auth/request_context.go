package auth

import (
	"context"

	"koomy/portal/internal/branding"
	"koomy/portal/internal/common"
)

type contextKey string

var (
	tenantKey        contextKey = "tenant"
	sessionDataKey   contextKey = "session_data"
	sessionClaimsKey contextKey = "session_claims"
	requestIDKey     contextKey = "request_id"
)

func SetTenant(ctx context.Context, t branding.Tenant) context.Context {
	return context.WithValue(ctx, tenantKey, t)
}

// GetTenant returns the tenant resolved for the request, if any
func GetTenant(ctx context.Context) (branding.Tenant, bool) {
	t, ok := ctx.Value(tenantKey).(branding.Tenant)
	return t, ok
}

// SetSession stores the resolved browser session and its cookie claims
func SetSession(ctx context.Context, data *common.SessionData, claims *common.SessionClaims) context.Context {
	ctx = context.WithValue(ctx, sessionDataKey, data)
	return context.WithValue(ctx, sessionClaimsKey, claims)
}

func GetSessionData(ctx context.Context) *common.SessionData {
	if data, ok := ctx.Value(sessionDataKey).(*common.SessionData); ok {
		return data
	}
	return nil
}

func GetSessionClaims(ctx context.Context) *common.SessionClaims {
	if claims, ok := ctx.Value(sessionClaimsKey).(*common.SessionClaims); ok {
		return claims
	}
	return nil
}

func SetRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
