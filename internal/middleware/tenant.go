package middleware

import (
	"net/http"

	"koomy/portal/internal/auth"
	"koomy/portal/internal/branding"
)

// TenantMiddleware resolves the tenant assets and surface for every request
// from its host and path
func TenantMiddleware(resolver *branding.Resolver) func(http.Handler) http.Handler {
	if resolver == nil {
		resolver = branding.DefaultResolver()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenant := resolver.Resolve(branding.LocationFromRequest(r))
			next.ServeHTTP(w, r.WithContext(auth.SetTenant(r.Context(), tenant)))
		})
	}
}
