package middleware

import (
	"context"
	"net/http"
	"time"

	"koomy/portal/internal/auth"
	"koomy/portal/internal/common"
	"koomy/portal/internal/constants"
	"koomy/portal/internal/logging"
)

// SessionResolver maps a session cookie value to its stored session
type SessionResolver interface {
	Resolve(ctx context.Context, cookieValue string) (*common.SessionData, *common.SessionClaims, error)
}

// SessionMiddleware attaches the browser session named by the cookie to the
// request. Missing or invalid cookies leave the request anonymous.
func SessionMiddleware(resolver SessionResolver, cookieName string) func(http.Handler) http.Handler {
	if cookieName == "" {
		cookieName = constants.SessionCookieName
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			data, claims, err := resolver.Resolve(r.Context(), cookie.Value)
			if err != nil {
				logging.Debug("Ignoring session cookie", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.SetSession(r.Context(), data, claims)))
		})
	}
}

// RequireSession rejects requests without a logged in user
func RequireSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data := auth.GetSessionData(r.Context())
			if data == nil || data.State.User == nil {
				common.RespondCode(w, time.Now(), constants.ErrCodeNoSession, "", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCommunity rejects requests until a membership has been selected
func RequireCommunity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data := auth.GetSessionData(r.Context())
			if data == nil || data.State.User == nil {
				common.RespondCode(w, time.Now(), constants.ErrCodeNoSession, "", http.StatusUnauthorized)
				return
			}
			if data.State.CurrentMembership == nil {
				common.RespondCode(w, time.Now(), constants.ErrCodeNoCommunity, "", http.StatusConflict)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCommunityAdmin lets through admins of the active community only.
// Must run after RequireCommunity.
func RequireCommunityAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data := auth.GetSessionData(r.Context())
			if data == nil || data.State.CurrentMembership == nil || !data.State.CurrentMembership.IsAdmin() {
				common.RespondCode(w, time.Now(), constants.ErrCodeForbidden, "", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePlatformAdmin lets through users holding a super_admin membership in
// any community. Must run after RequireSession.
func RequirePlatformAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data := auth.GetSessionData(r.Context())
			if data != nil && data.State.User != nil {
				for _, m := range data.State.User.Memberships {
					if m.IsSuperAdmin() {
						next.ServeHTTP(w, r)
						return
					}
				}
			}
			common.RespondCode(w, time.Now(), constants.ErrCodePlatformOnly, "", http.StatusForbidden)
		})
	}
}
