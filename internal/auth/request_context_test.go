package auth

import (
	"context"
	"testing"

	"koomy/portal/internal/branding"
	"koomy/portal/internal/common"
)

func TestRequestContext_Empty(t *testing.T) {
	ctx := context.Background()

	if _, ok := GetTenant(ctx); ok {
		t.Error("expected no tenant on empty context")
	}
	if GetSessionData(ctx) != nil || GetSessionClaims(ctx) != nil {
		t.Error("expected no session on empty context")
	}
	if GetRequestID(ctx) != "" {
		t.Error("expected empty request id")
	}
}

func TestRequestContext_RoundTrip(t *testing.T) {
	tenant := branding.DefaultResolver().Resolve(branding.Location{Hostname: "app-pro.koomy.app", Path: "/admin"})
	data := &common.SessionData{SessionID: "s1"}
	claims := &common.SessionClaims{SessionID: "s1", TokenID: "t1"}

	ctx := SetTenant(context.Background(), tenant)
	ctx = SetSession(ctx, data, claims)
	ctx = SetRequestID(ctx, "req-1")

	got, ok := GetTenant(ctx)
	if !ok || got.Location.Hostname != "app-pro.koomy.app" {
		t.Errorf("tenant = %+v, ok=%v", got, ok)
	}
	if GetSessionData(ctx) != data {
		t.Error("session data not round-tripped")
	}
	if GetSessionClaims(ctx) != claims {
		t.Error("session claims not round-tripped")
	}
	if GetRequestID(ctx) != "req-1" {
		t.Errorf("request id = %q", GetRequestID(ctx))
	}
}
