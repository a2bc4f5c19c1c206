package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"koomy/portal/internal/models/dtos"
	"koomy/portal/internal/providers"
)

// CommunityAPI is the slice of the Koomy API the member views read and write
type CommunityAPI interface {
	GetCommunity(ctx context.Context, id string) (*dtos.Community, error)
	ListNews(ctx context.Context, communityID string) ([]dtos.NewsArticle, error)
	ListEvents(ctx context.Context, communityID string) ([]dtos.Event, error)
	ListTickets(ctx context.Context, scope providers.TicketScope) ([]dtos.Ticket, error)
	ListMessages(ctx context.Context, communityID, conversationID string) ([]dtos.Message, error)
	CreateNews(ctx context.Context, article dtos.NewsArticle) (*dtos.NewsArticle, error)
	CreateEvent(ctx context.Context, event dtos.Event) (*dtos.Event, error)
	CreateTicket(ctx context.Context, ticket dtos.Ticket) (*dtos.Ticket, error)
	CreateMessage(ctx context.Context, msg dtos.Message) (*dtos.Message, error)
	MarkMessageRead(ctx context.Context, id string) error
	ListPlans(ctx context.Context) ([]dtos.Plan, error)
	ListFAQs(ctx context.Context, role string) ([]dtos.FAQ, error)
}

// CommunityService scopes API reads and writes to the active community
type CommunityService struct {
	api CommunityAPI
}

func NewCommunityService(api CommunityAPI) *CommunityService {
	return &CommunityService{api: api}
}

// Overview loads the community and its news, events and tickets concurrently
func (s *CommunityService) Overview(ctx context.Context, communityID string) (*dtos.CommunityOverview, error) {
	var out dtos.CommunityOverview
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c, err := s.api.GetCommunity(gctx, communityID)
		out.Community = c
		return err
	})
	g.Go(func() error {
		news, err := s.api.ListNews(gctx, communityID)
		out.News = news
		return err
	})
	g.Go(func() error {
		events, err := s.api.ListEvents(gctx, communityID)
		out.Events = events
		return err
	})
	g.Go(func() error {
		tickets, err := s.api.ListTickets(gctx, providers.TicketScope{CommunityID: communityID})
		out.Tickets = tickets
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if out.News == nil {
		out.News = []dtos.NewsArticle{}
	}
	if out.Events == nil {
		out.Events = []dtos.Event{}
	}
	if out.Tickets == nil {
		out.Tickets = []dtos.Ticket{}
	}
	return &out, nil
}

func (s *CommunityService) News(ctx context.Context, communityID string) ([]dtos.NewsArticle, error) {
	return s.api.ListNews(ctx, communityID)
}

func (s *CommunityService) Events(ctx context.Context, communityID string) ([]dtos.Event, error) {
	return s.api.ListEvents(ctx, communityID)
}

func (s *CommunityService) Tickets(ctx context.Context, communityID string) ([]dtos.Ticket, error) {
	return s.api.ListTickets(ctx, providers.TicketScope{CommunityID: communityID})
}

func (s *CommunityService) Messages(ctx context.Context, communityID, conversationID string) ([]dtos.Message, error) {
	return s.api.ListMessages(ctx, communityID, conversationID)
}

// The create calls pin the payload to the active community whatever the client sent

func (s *CommunityService) PublishNews(ctx context.Context, communityID, authorID string, article dtos.NewsArticle) (*dtos.NewsArticle, error) {
	article.CommunityID = communityID
	if article.AuthorID == nil && authorID != "" {
		article.AuthorID = &authorID
	}
	return s.api.CreateNews(ctx, article)
}

func (s *CommunityService) CreateEvent(ctx context.Context, communityID string, event dtos.Event) (*dtos.Event, error) {
	event.CommunityID = communityID
	return s.api.CreateEvent(ctx, event)
}

func (s *CommunityService) OpenTicket(ctx context.Context, communityID, userID string, ticket dtos.Ticket) (*dtos.Ticket, error) {
	ticket.CommunityID = &communityID
	ticket.UserID = userID
	if ticket.Status == "" {
		ticket.Status = "open"
	}
	return s.api.CreateTicket(ctx, ticket)
}

func (s *CommunityService) SendMessage(ctx context.Context, communityID, senderID string, msg dtos.Message) (*dtos.Message, error) {
	msg.CommunityID = communityID
	msg.SenderID = senderID
	return s.api.CreateMessage(ctx, msg)
}

func (s *CommunityService) MarkMessageRead(ctx context.Context, id string) error {
	return s.api.MarkMessageRead(ctx, id)
}

func (s *CommunityService) Plans(ctx context.Context) ([]dtos.Plan, error) {
	return s.api.ListPlans(ctx)
}

func (s *CommunityService) FAQs(ctx context.Context, role string) ([]dtos.FAQ, error) {
	return s.api.ListFAQs(ctx, role)
}
