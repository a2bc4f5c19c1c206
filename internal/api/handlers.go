package api

import (
	"net/http"
)

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

func (h *Handlers) cookie() CookieSettings {
	cfg := h.deps.Config
	return CookieSettings{Name: cfg.CookieName, Secure: cfg.CookieSecure || cfg.IsProduction(), TTL: cfg.SessionTTL}
}

func (h *Handlers) HealthCheck() http.HandlerFunc {
	return HealthCheckHandler(h.deps.healthChecks(), h.deps.UpSince)
}

func (h *Handlers) Theme() http.HandlerFunc {
	return ThemeHandler(h.deps.Services.WhiteLabel)
}

func (h *Handlers) ThemeCSS() http.HandlerFunc {
	return ThemeCSSHandler(h.deps.Services.WhiteLabel)
}

func (h *Handlers) Head() http.HandlerFunc {
	return HeadHandler(h.deps.Resolver)
}

func (h *Handlers) Login() http.HandlerFunc {
	return LoginHandler(h.deps.Services.Auth, h.cookie())
}

func (h *Handlers) Session() http.HandlerFunc {
	return GetSessionHandler(h.deps.Services.Auth)
}

func (h *Handlers) SelectCommunity() http.HandlerFunc {
	return SelectCommunityHandler(h.deps.Services.Auth)
}

func (h *Handlers) Logout() http.HandlerFunc {
	return LogoutHandler(h.deps.Services.Auth, h.cookie())
}

func (h *Handlers) Overview() http.HandlerFunc {
	return CommunityOverviewHandler(h.deps.Services.Community)
}

func (h *Handlers) News() http.HandlerFunc {
	return ListNewsHandler(h.deps.Services.Community)
}

func (h *Handlers) PublishNews() http.HandlerFunc {
	return PublishNewsHandler(h.deps.Services.Community)
}

func (h *Handlers) Events() http.HandlerFunc {
	return ListEventsHandler(h.deps.Services.Community)
}

func (h *Handlers) CreateEvent() http.HandlerFunc {
	return CreateEventHandler(h.deps.Services.Community)
}

func (h *Handlers) Tickets() http.HandlerFunc {
	return ListTicketsHandler(h.deps.Services.Community)
}

func (h *Handlers) OpenTicket() http.HandlerFunc {
	return OpenTicketHandler(h.deps.Services.Community)
}

func (h *Handlers) Messages() http.HandlerFunc {
	return ListMessagesHandler(h.deps.Services.Community)
}

func (h *Handlers) SendMessage() http.HandlerFunc {
	return SendMessageHandler(h.deps.Services.Community)
}

func (h *Handlers) MarkMessageRead() http.HandlerFunc {
	return MarkMessageReadHandler(h.deps.Services.Community)
}

func (h *Handlers) Plans() http.HandlerFunc {
	return PlansHandler(h.deps.Services.Community)
}

func (h *Handlers) FAQs() http.HandlerFunc {
	return FAQsHandler(h.deps.Services.Community)
}

func (h *Handlers) Upload() http.HandlerFunc {
	return UploadHandler(h.deps.Services.Uploads, h.deps.Config.UploadMaxBytes)
}

func (h *Handlers) Article() http.HandlerFunc {
	return GetArticleHandler(h.deps.Services.Admin)
}

func (h *Handlers) EditArticle() http.HandlerFunc {
	return EditArticleHandler(h.deps.Services.Admin)
}

func (h *Handlers) Event() http.HandlerFunc {
	return GetEventHandler(h.deps.Services.Admin)
}

func (h *Handlers) EditEvent() http.HandlerFunc {
	return EditEventHandler(h.deps.Services.Admin)
}

func (h *Handlers) UpdateTicket() http.HandlerFunc {
	return UpdateTicketHandler(h.deps.Services.Admin)
}

func (h *Handlers) Members() http.HandlerFunc {
	return ListMembersHandler(h.deps.Services.Admin)
}

func (h *Handlers) AddMember() http.HandlerFunc {
	return AddMemberHandler(h.deps.Services.Admin)
}

func (h *Handlers) UpdateMember() http.HandlerFunc {
	return UpdateMemberHandler(h.deps.Services.Admin)
}

func (h *Handlers) MyMemberships() http.HandlerFunc {
	return MyMembershipsHandler(h.deps.Services.Admin)
}

func (h *Handlers) Users() http.HandlerFunc {
	return ListUsersHandler(h.deps.Services.Admin)
}

func (h *Handlers) CreateCommunity() http.HandlerFunc {
	return CreateCommunityHandler(h.deps.Services.Admin)
}
