package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"koomy/portal/internal/auth"
	"koomy/portal/internal/common"
	"koomy/portal/internal/models/dtos"
	"koomy/portal/internal/services"
)

// itemHandler serves one resource of the active community by {id}
func itemHandler[T any](msg string, fetch func(ctx context.Context, sc scope, id string) (*T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		item, err := fetch(upstreamContext(r), activeScope(r), chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, msg, item)
	}
}

// patchHandler decodes a P and applies it to the {id} resource
func patchHandler[P, T any](msg string, apply func(ctx context.Context, sc scope, id string, patch P) (*T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var patch P
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			respondValidation(w, initTime, "Invalid JSON payload")
			return
		}

		out, err := apply(upstreamContext(r), activeScope(r), chi.URLParam(r, "id"), patch)
		if err != nil {
			handleServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, msg, out)
	}
}

func sessionUserID(r *http.Request) string {
	data := auth.GetSessionData(r.Context())
	if data == nil || data.State.User == nil {
		return ""
	}
	return data.State.User.ID
}

// GetArticleHandler handles GET /community/news/{id}
func GetArticleHandler(svc *services.AdminService) http.HandlerFunc {
	return itemHandler("Article fetched", func(ctx context.Context, sc scope, id string) (*dtos.NewsArticle, error) {
		return svc.Article(ctx, sc.CommunityID, id)
	})
}

// EditArticleHandler handles PATCH /community/news/{id} (community admins)
func EditArticleHandler(svc *services.AdminService) http.HandlerFunc {
	return patchHandler("Article updated", func(ctx context.Context, sc scope, id string, patch map[string]any) (*dtos.NewsArticle, error) {
		return svc.EditArticle(ctx, sc.CommunityID, id, patch)
	})
}

// GetEventHandler handles GET /community/events/{id}
func GetEventHandler(svc *services.AdminService) http.HandlerFunc {
	return itemHandler("Event fetched", func(ctx context.Context, sc scope, id string) (*dtos.Event, error) {
		return svc.Event(ctx, sc.CommunityID, id)
	})
}

// EditEventHandler handles PATCH /community/events/{id} (community admins)
func EditEventHandler(svc *services.AdminService) http.HandlerFunc {
	return patchHandler("Event updated", func(ctx context.Context, sc scope, id string, patch map[string]any) (*dtos.Event, error) {
		return svc.EditEvent(ctx, sc.CommunityID, id, patch)
	})
}

// UpdateTicketHandler handles PATCH /community/tickets/{id} (community admins)
func UpdateTicketHandler(svc *services.AdminService) http.HandlerFunc {
	return patchHandler("Ticket updated", func(ctx context.Context, sc scope, id string, patch map[string]any) (*dtos.Ticket, error) {
		return svc.UpdateTicket(ctx, sc.CommunityID, id, patch)
	})
}

// ListMembersHandler handles GET /community/members (community admins)
//
// @Summary      Community members
// @Description  Users holding a membership in the active community
// @Tags         Community admin
// @Produce      json
// @Success      200  {object}  dtos.APIResponse
// @Failure      403  {object}  dtos.APIResponse
// @Router       /community/members [get]
func ListMembersHandler(svc *services.AdminService) http.HandlerFunc {
	return listHandler("Members fetched", func(ctx context.Context, _ *http.Request, sc scope) ([]services.Member, error) {
		return svc.Members(ctx, sc.CommunityID)
	})
}

// AddMemberHandler handles POST /community/members (community admins)
func AddMemberHandler(svc *services.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req services.AddMemberRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondValidation(w, initTime, "Invalid JSON payload")
			return
		}

		m, err := svc.AddMember(upstreamContext(r), activeScope(r).CommunityID, req)
		if err != nil {
			handleServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Member added", m, http.StatusCreated)
	}
}

// UpdateMemberHandler handles PATCH /community/members/{id} (community admins)
func UpdateMemberHandler(svc *services.AdminService) http.HandlerFunc {
	return patchHandler("Membership updated", func(ctx context.Context, sc scope, id string, patch dtos.MembershipPatch) (*dtos.Membership, error) {
		return svc.UpdateMember(ctx, sc.CommunityID, id, patch)
	})
}

// MyMembershipsHandler handles GET /session/memberships[?active=true]. It reads
// the API, not the session, so role changes made since login show up here.
func MyMembershipsHandler(svc *services.AdminService) http.HandlerFunc {
	return listHandler("Memberships fetched", func(ctx context.Context, r *http.Request, sc scope) ([]dtos.Membership, error) {
		return svc.Memberships(ctx, sessionUserID(r), r.URL.Query().Get("active") == "true")
	})
}

// ListUsersHandler handles GET /platform/users (platform admins)
func ListUsersHandler(svc *services.AdminService) http.HandlerFunc {
	return listHandler("Users fetched", func(ctx context.Context, _ *http.Request, _ scope) ([]dtos.User, error) {
		return svc.Users(ctx)
	})
}

// CreateCommunityHandler handles POST /platform/communities (platform admins)
func CreateCommunityHandler(svc *services.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.CreateCommunityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondValidation(w, initTime, "Invalid JSON payload")
			return
		}

		c, err := svc.CreateCommunity(upstreamContext(r), req)
		if err != nil {
			handleServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Community created", c, http.StatusCreated)
	}
}
