package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"koomy/portal/internal/auth"
	"koomy/portal/internal/common"
	"koomy/portal/internal/models/dtos"
	"koomy/portal/internal/services"
)

// scope is the active community and user of the session. Routes using it sit
// behind RequireCommunity.
type scope struct {
	CommunityID string
	UserID      string
	Role        string
}

func activeScope(r *http.Request) scope {
	data := auth.GetSessionData(r.Context())
	if data == nil || data.State.User == nil || data.State.CurrentMembership == nil {
		return scope{}
	}
	return scope{
		CommunityID: data.State.CurrentMembership.CommunityID,
		UserID:      data.State.User.ID,
		Role:        string(data.State.CurrentMembership.Role),
	}
}

// listHandler serves a community-scoped list, never answering null
func listHandler[T any](msg string, fetch func(ctx context.Context, r *http.Request, sc scope) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		items, err := fetch(upstreamContext(r), r, activeScope(r))
		if err != nil {
			handleServiceError(w, initTime, err)
			return
		}
		if items == nil {
			items = []T{}
		}
		common.RespondSuccess(w, initTime, msg, items)
	}
}

// createHandler decodes a T, hands it to create and answers 201
func createHandler[T any](msg string, validate func(*T) string, create func(ctx context.Context, sc scope, in T) (*T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var in T
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respondValidation(w, initTime, "Invalid JSON payload")
			return
		}
		if problem := validate(&in); problem != "" {
			respondValidation(w, initTime, problem)
			return
		}

		out, err := create(upstreamContext(r), activeScope(r), in)
		if err != nil {
			handleServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, msg, out, http.StatusCreated)
	}
}

// CommunityOverviewHandler handles GET /community/overview
//
// @Summary      Community overview
// @Description  Active community with its news, events and tickets
// @Tags         Community
// @Produce      json
// @Success      200  {object}  dtos.APIResponse
// @Failure      401  {object}  dtos.APIResponse
// @Failure      409  {object}  dtos.APIResponse
// @Router       /community/overview [get]
func CommunityOverviewHandler(svc *services.CommunityService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		overview, err := svc.Overview(upstreamContext(r), activeScope(r).CommunityID)
		if err != nil {
			handleServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Overview fetched", overview)
	}
}

// ListNewsHandler handles GET /community/news
func ListNewsHandler(svc *services.CommunityService) http.HandlerFunc {
	return listHandler("News fetched", func(ctx context.Context, _ *http.Request, sc scope) ([]dtos.NewsArticle, error) {
		return svc.News(ctx, sc.CommunityID)
	})
}

// ListEventsHandler handles GET /community/events
func ListEventsHandler(svc *services.CommunityService) http.HandlerFunc {
	return listHandler("Events fetched", func(ctx context.Context, _ *http.Request, sc scope) ([]dtos.Event, error) {
		return svc.Events(ctx, sc.CommunityID)
	})
}

// ListTicketsHandler handles GET /community/tickets
func ListTicketsHandler(svc *services.CommunityService) http.HandlerFunc {
	return listHandler("Tickets fetched", func(ctx context.Context, _ *http.Request, sc scope) ([]dtos.Ticket, error) {
		return svc.Tickets(ctx, sc.CommunityID)
	})
}

// ListMessagesHandler handles GET /community/messages/{conversationId}
func ListMessagesHandler(svc *services.CommunityService) http.HandlerFunc {
	return listHandler("Messages fetched", func(ctx context.Context, r *http.Request, sc scope) ([]dtos.Message, error) {
		return svc.Messages(ctx, sc.CommunityID, chi.URLParam(r, "conversationId"))
	})
}

// PublishNewsHandler handles POST /community/news (community admins)
//
// @Summary      Publish news
// @Tags         Community
// @Accept       json
// @Produce      json
// @Param        input  body  dtos.NewsArticle  true  "Article"
// @Success      201  {object}  dtos.APIResponse
// @Failure      400  {object}  dtos.APIResponse
// @Failure      403  {object}  dtos.APIResponse
// @Router       /community/news [post]
func PublishNewsHandler(svc *services.CommunityService) http.HandlerFunc {
	return createHandler("News published",
		func(a *dtos.NewsArticle) string {
			if strings.TrimSpace(a.Title) == "" || strings.TrimSpace(a.Content) == "" {
				return "title and content are required"
			}
			return ""
		},
		func(ctx context.Context, sc scope, a dtos.NewsArticle) (*dtos.NewsArticle, error) {
			return svc.PublishNews(ctx, sc.CommunityID, sc.UserID, a)
		},
	)
}

// CreateEventHandler handles POST /community/events
func CreateEventHandler(svc *services.CommunityService) http.HandlerFunc {
	return createHandler("Event created",
		func(e *dtos.Event) string {
			if strings.TrimSpace(e.Title) == "" || e.Date.IsZero() {
				return "title and date are required"
			}
			return ""
		},
		func(ctx context.Context, sc scope, e dtos.Event) (*dtos.Event, error) {
			return svc.CreateEvent(ctx, sc.CommunityID, e)
		},
	)
}

// OpenTicketHandler handles POST /community/tickets
func OpenTicketHandler(svc *services.CommunityService) http.HandlerFunc {
	return createHandler("Ticket opened",
		func(t *dtos.Ticket) string {
			if strings.TrimSpace(t.Subject) == "" || strings.TrimSpace(t.Message) == "" {
				return "subject and message are required"
			}
			return ""
		},
		func(ctx context.Context, sc scope, t dtos.Ticket) (*dtos.Ticket, error) {
			return svc.OpenTicket(ctx, sc.CommunityID, sc.UserID, t)
		},
	)
}

// SendMessageHandler handles POST /community/messages
func SendMessageHandler(svc *services.CommunityService) http.HandlerFunc {
	return createHandler("Message sent",
		func(m *dtos.Message) string {
			if m.ConversationID == "" || strings.TrimSpace(m.Content) == "" {
				return "conversationId and content are required"
			}
			return ""
		},
		func(ctx context.Context, sc scope, m dtos.Message) (*dtos.Message, error) {
			return svc.SendMessage(ctx, sc.CommunityID, sc.UserID, m)
		},
	)
}

// MarkMessageReadHandler handles PATCH /community/messages/{id}/read
func MarkMessageReadHandler(svc *services.CommunityService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		if err := svc.MarkMessageRead(upstreamContext(r), chi.URLParam(r, "id")); err != nil {
			handleServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Message marked as read", nil)
	}
}

// PlansHandler handles GET /plans
func PlansHandler(svc *services.CommunityService) http.HandlerFunc {
	return listHandler("Plans fetched", func(ctx context.Context, _ *http.Request, _ scope) ([]dtos.Plan, error) {
		return svc.Plans(ctx)
	})
}

// FAQsHandler handles GET /faqs. Without ?role= the role of the active
// membership is used, if any.
func FAQsHandler(svc *services.CommunityService) http.HandlerFunc {
	return listHandler("FAQs fetched", func(ctx context.Context, r *http.Request, sc scope) ([]dtos.FAQ, error) {
		role := r.URL.Query().Get("role")
		if role == "" {
			role = sc.Role
		}
		return svc.FAQs(ctx, role)
	})
}
