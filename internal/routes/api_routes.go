package routes

import (
	"github.com/go-chi/chi/v5"

	"koomy/portal/internal/api"
	"koomy/portal/internal/middleware"
)

// RegisterAPIRoutes registers the session, community and upload routes
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers, loginLimiter *middleware.RateLimiter) {
	r.Route("/session", func(s chi.Router) {
		s.With(loginLimiter.Middleware).Post("/login", handlers.Login())
		s.Get("/", handlers.Session())
		s.Post("/logout", handlers.Logout())

		s.Group(func(authed chi.Router) {
			authed.Use(middleware.RequireSession())
			authed.Post("/select", handlers.SelectCommunity())
			authed.Get("/memberships", handlers.MyMemberships())
		})
	})

	// Public catalogue
	r.Get("/plans", handlers.Plans())
	r.Get("/faqs", handlers.FAQs())

	// Member views, scoped by the active membership
	r.Route("/community", func(c chi.Router) {
		c.Use(middleware.RequireCommunity())

		c.Get("/overview", handlers.Overview())
		c.Get("/news", handlers.News())
		c.Get("/events", handlers.Events())
		c.Get("/tickets", handlers.Tickets())
		c.Get("/news/{id}", handlers.Article())
		c.Get("/events/{id}", handlers.Event())
		c.Get("/messages/{conversationId}", handlers.Messages())

		c.Post("/tickets", handlers.OpenTicket())
		c.Post("/messages", handlers.SendMessage())
		c.Patch("/messages/{id}/read", handlers.MarkMessageRead())

		// Admin-only group
		c.Group(func(admin chi.Router) {
			admin.Use(middleware.RequireCommunityAdmin())
			admin.Post("/news", handlers.PublishNews())
			admin.Post("/events", handlers.CreateEvent())
			admin.Patch("/news/{id}", handlers.EditArticle())
			admin.Patch("/events/{id}", handlers.EditEvent())
			admin.Patch("/tickets/{id}", handlers.UpdateTicket())

			admin.Get("/members", handlers.Members())
			admin.Post("/members", handlers.AddMember())
			admin.Patch("/members/{id}", handlers.UpdateMember())
		})
	})

	// Platform administration, super admins only
	r.Route("/platform", func(p chi.Router) {
		p.Use(middleware.RequireSession(), middleware.RequirePlatformAdmin())
		p.Get("/users", handlers.Users())
		p.Post("/communities", handlers.CreateCommunity())
	})

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.RequireSession())
		authed.Post("/uploads/{kind}", handlers.Upload())
	})
}
