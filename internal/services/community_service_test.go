package services

import (
	"context"
	"errors"
	"testing"

	"koomy/portal/internal/models/dtos"
	"koomy/portal/internal/providers"
)

// Mock community API, only the methods a test sets are usable
type mockCommunityAPI struct {
	CommunityAPI
	getCommunityFunc func(ctx context.Context, id string) (*dtos.Community, error)
	listNewsFunc     func(ctx context.Context, communityID string) ([]dtos.NewsArticle, error)
	listEventsFunc   func(ctx context.Context, communityID string) ([]dtos.Event, error)
	listTicketsFunc  func(ctx context.Context, scope providers.TicketScope) ([]dtos.Ticket, error)
	createTicketFunc func(ctx context.Context, ticket dtos.Ticket) (*dtos.Ticket, error)
}

func (m *mockCommunityAPI) GetCommunity(ctx context.Context, id string) (*dtos.Community, error) {
	return m.getCommunityFunc(ctx, id)
}

func (m *mockCommunityAPI) ListNews(ctx context.Context, communityID string) ([]dtos.NewsArticle, error) {
	return m.listNewsFunc(ctx, communityID)
}

func (m *mockCommunityAPI) ListEvents(ctx context.Context, communityID string) ([]dtos.Event, error) {
	return m.listEventsFunc(ctx, communityID)
}

func (m *mockCommunityAPI) ListTickets(ctx context.Context, scope providers.TicketScope) ([]dtos.Ticket, error) {
	return m.listTicketsFunc(ctx, scope)
}

func (m *mockCommunityAPI) CreateTicket(ctx context.Context, ticket dtos.Ticket) (*dtos.Ticket, error) {
	return m.createTicketFunc(ctx, ticket)
}

func overviewAPI() *mockCommunityAPI {
	return &mockCommunityAPI{
		getCommunityFunc: func(ctx context.Context, id string) (*dtos.Community, error) {
			return &dtos.Community{ID: id, Name: "Club"}, nil
		},
		listNewsFunc: func(ctx context.Context, communityID string) ([]dtos.NewsArticle, error) {
			return []dtos.NewsArticle{{ID: "n1", CommunityID: communityID}}, nil
		},
		listEventsFunc: func(ctx context.Context, communityID string) ([]dtos.Event, error) {
			return nil, nil
		},
		listTicketsFunc: func(ctx context.Context, scope providers.TicketScope) ([]dtos.Ticket, error) {
			if scope.CommunityID == "" {
				return nil, errors.New("expected community scope")
			}
			return []dtos.Ticket{{ID: "t1"}}, nil
		},
	}
}

func TestCommunityService_Overview(t *testing.T) {
	svc := NewCommunityService(overviewAPI())

	ov, err := svc.Overview(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Overview failed: %v", err)
	}
	if ov.Community == nil || ov.Community.ID != "c1" {
		t.Errorf("Unexpected community %+v", ov.Community)
	}
	if len(ov.News) != 1 || len(ov.Tickets) != 1 {
		t.Errorf("Unexpected overview %+v", ov)
	}
	if ov.Events == nil {
		t.Error("Expected empty events slice, not nil")
	}
}

func TestCommunityService_OverviewFailsFast(t *testing.T) {
	api := overviewAPI()
	api.listEventsFunc = func(ctx context.Context, communityID string) ([]dtos.Event, error) {
		return nil, errors.New("events down")
	}
	svc := NewCommunityService(api)

	if _, err := svc.Overview(context.Background(), "c1"); err == nil {
		t.Fatal("Expected error when one view fails")
	}
}

func TestCommunityService_OpenTicketPinsScope(t *testing.T) {
	api := &mockCommunityAPI{
		createTicketFunc: func(ctx context.Context, ticket dtos.Ticket) (*dtos.Ticket, error) {
			return &ticket, nil
		},
	}
	svc := NewCommunityService(api)

	other := "c9"
	got, err := svc.OpenTicket(context.Background(), "c1", "u1", dtos.Ticket{Subject: "Help", CommunityID: &other, UserID: "spoofed"})
	if err != nil {
		t.Fatalf("OpenTicket failed: %v", err)
	}
	if *got.CommunityID != "c1" || got.UserID != "u1" || got.Status != "open" {
		t.Errorf("Unexpected ticket %+v", got)
	}
}
