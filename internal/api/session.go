package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"koomy/portal/internal/auth"
	"koomy/portal/internal/branding"
	"koomy/portal/internal/common"
	"koomy/portal/internal/logging"
	"koomy/portal/internal/models/dtos"
	"koomy/portal/internal/providers"
	"koomy/portal/internal/services"
	"koomy/portal/internal/session"
)

// CookieSettings controls the session cookie written by the portal
type CookieSettings struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

func (c CookieSettings) write(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(c.TTL.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c CookieSettings) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionView is the client-facing projection of a session. The upstream
// bearer token never leaves the portal.
type SessionView struct {
	State             session.State    `json:"state"`
	User              *dtos.User       `json:"user"`
	CurrentMembership *dtos.Membership `json:"currentMembership"`
	CurrentCommunity  *dtos.Community  `json:"currentCommunity"`
	AllCommunities    []dtos.Community `json:"allCommunities"`
	ExpiresAt         *time.Time       `json:"expiresAt,omitempty"`
}

func newSessionView(data *common.SessionData) SessionView {
	if data == nil {
		return SessionView{State: session.StateAnonymous, AllCommunities: []dtos.Community{}}
	}
	st := services.Store(data)
	snap := st.Snapshot()
	view := SessionView{
		State:             st.State(),
		User:              snap.User,
		CurrentMembership: snap.CurrentMembership,
		CurrentCommunity:  snap.CurrentCommunity,
		AllCommunities:    snap.AllCommunities,
		ExpiresAt:         &data.ExpiresAt,
	}
	if view.AllCommunities == nil {
		view.AllCommunities = []dtos.Community{}
	}
	return view
}

// upstreamContext forwards the caller's host and, when logged in, the
// session's API token
func upstreamContext(r *http.Request) context.Context {
	ctx := providers.WithForwardedHost(r.Context(), hostOf(r))
	if data := auth.GetSessionData(r.Context()); data != nil && data.State.Token != "" {
		ctx = providers.WithBearer(ctx, data.State.Token)
	}
	return ctx
}

func hostOf(r *http.Request) string {
	if t, ok := auth.GetTenant(r.Context()); ok && t.Location.Hostname != "" {
		return t.Location.Hostname
	}
	return branding.LocationFromRequest(r).Hostname
}

// LoginHandler handles POST /session/login
//
// @Summary      Log in
// @Description  Authenticates against the Koomy API, opens a session and sets the session cookie
// @Tags         Session
// @Accept       json
// @Produce      json
// @Param        input  body  dtos.LoginRequest  true  "Credentials"
// @Success      200  {object}  dtos.APIResponse
// @Failure      400  {object}  dtos.APIResponse
// @Failure      401  {object}  dtos.APIResponse
// @Router       /session/login [post]
func LoginHandler(authSvc *services.AuthService, cookie CookieSettings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondValidation(w, initTime, "Invalid login payload")
			return
		}
		req.Email = strings.TrimSpace(req.Email)
		if req.Email == "" || req.Password == "" {
			respondValidation(w, initTime, "Email and password are required")
			return
		}

		data, token, err := authSvc.Login(upstreamContext(r), hostOf(r), req.Email, req.Password)
		if err != nil {
			handleServiceError(w, initTime, err)
			return
		}
		cookie.write(w, token)

		// the community list is a convenience here; GET /session retries it
		if loaded, err := authSvc.LoadCommunities(r.Context(), data); err != nil {
			logging.Warn("Community list unavailable after login", "session_id", data.SessionID, "error", err)
		} else {
			data = loaded
		}

		common.RespondSuccess(w, initTime, "Logged in", newSessionView(data))
	}
}

// GetSessionHandler handles GET /session
//
// @Summary      Current session
// @Description  Returns the session snapshot, loading the community list once a user is present
// @Tags         Session
// @Produce      json
// @Success      200  {object}  dtos.APIResponse
// @Router       /session [get]
func GetSessionHandler(authSvc *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		data := auth.GetSessionData(r.Context())
		if data != nil {
			loaded, err := authSvc.LoadCommunities(r.Context(), data)
			if err != nil {
				logging.Warn("Failed to load communities", "session_id", data.SessionID, "error", err)
			} else {
				data = loaded
			}
		}

		common.RespondSuccess(w, initTime, "Session fetched", newSessionView(data))
	}
}

type selectCommunityRequest struct {
	CommunityID string `json:"communityId"`
}

// SelectCommunityHandler handles POST /session/select
//
// @Summary      Select community
// @Description  Activates one of the user's memberships. Unknown ids keep the previous selection.
// @Tags         Session
// @Accept       json
// @Produce      json
// @Success      200  {object}  dtos.APIResponse
// @Failure      401  {object}  dtos.APIResponse
// @Router       /session/select [post]
func SelectCommunityHandler(authSvc *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req selectCommunityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CommunityID == "" {
			respondValidation(w, initTime, "communityId is required")
			return
		}

		data := auth.GetSessionData(r.Context())
		updated, selected, err := authSvc.SelectCommunity(r.Context(), data, req.CommunityID)
		if err != nil {
			handleServiceError(w, initTime, err)
			return
		}

		msg := "Community selected"
		if !selected {
			msg = "No membership in that community, selection unchanged"
		}
		common.RespondSuccess(w, initTime, msg, newSessionView(updated))
	}
}

// LogoutHandler handles POST /session/logout
//
// @Summary      Log out
// @Description  Clears the session and removes the cookie. Always succeeds.
// @Tags         Session
// @Produce      json
// @Success      200  {object}  dtos.APIResponse
// @Router       /session/logout [post]
func LogoutHandler(authSvc *services.AuthService, cookie CookieSettings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		if data := auth.GetSessionData(r.Context()); data != nil {
			if err := authSvc.Logout(r.Context(), data, auth.GetSessionClaims(r.Context())); err != nil {
				logging.Warn("Logout cleanup failed", "session_id", data.SessionID, "error", err)
			}
		}
		cookie.clear(w)

		common.RespondSuccess(w, initTime, "Logged out", newSessionView(nil))
	}
}
