package services

import (
	"context"
	"net/http"
	"strings"

	"koomy/portal/internal/common"
	"koomy/portal/internal/constants"
	"koomy/portal/internal/logging"
	"koomy/portal/internal/models/dtos"
	"koomy/portal/internal/providers"
)

// AdminAPI is the slice of the Koomy API behind the admin and platform views
type AdminAPI interface {
	GetNews(ctx context.Context, id string) (*dtos.NewsArticle, error)
	UpdateNews(ctx context.Context, id string, patch map[string]any) (*dtos.NewsArticle, error)
	GetEvent(ctx context.Context, id string) (*dtos.Event, error)
	UpdateEvent(ctx context.Context, id string, patch map[string]any) (*dtos.Event, error)
	ListTickets(ctx context.Context, scope providers.TicketScope) ([]dtos.Ticket, error)
	UpdateTicket(ctx context.Context, id string, patch map[string]any) (*dtos.Ticket, error)
	ListUsers(ctx context.Context) ([]dtos.User, error)
	CreateUser(ctx context.Context, req dtos.CreateUserRequest) (*dtos.User, error)
	GetUserMemberships(ctx context.Context, userID string) ([]dtos.Membership, error)
	CreateMembership(ctx context.Context, req dtos.CreateMembershipRequest) (*dtos.Membership, error)
	UpdateMembership(ctx context.Context, id string, patch dtos.MembershipPatch) (*dtos.Membership, error)
	CreateCommunity(ctx context.Context, req dtos.CreateCommunityRequest) (*dtos.Community, error)
}

// Fields an admin may change on each resource. Ownership fields are never
// forwarded.
var (
	newsPatchFields   = []string{"title", "summary", "content", "category", "image", "scope", "status"}
	eventPatchFields  = []string{"title", "description", "type", "location", "date", "endDate", "capacity"}
	ticketPatchFields = []string{"status", "priority"}
)

// Member is a membership of the active community joined with its user
type Member struct {
	Membership dtos.Membership `json:"membership"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Active     bool            `json:"active"`
}

// AddMemberRequest creates an account and enrolls it in the active community
type AddMemberRequest struct {
	FirstName   string               `json:"firstName"`
	LastName    string               `json:"lastName"`
	Email       string               `json:"email"`
	Role        constants.MemberRole `json:"role"`
	DisplayName *string              `json:"displayName,omitempty"`
}

// AdminService runs community admin edits and platform operations. Every
// community-scoped call checks the target belongs to the active community.
type AdminService struct {
	api AdminAPI
}

func NewAdminService(api AdminAPI) *AdminService {
	return &AdminService{api: api}
}

func notInCommunity(kind string) error {
	return &providers.ProviderError{
		Code:    constants.ErrCodeNotFound,
		Message: kind + " not found in this community",
		Status:  http.StatusNotFound,
	}
}

func invalid(msg string) error {
	return &providers.ProviderError{
		Code:    constants.ErrCodeValidation,
		Message: msg,
		Status:  http.StatusBadRequest,
	}
}

// filterPatch keeps the allowed keys of patch. An empty result is a validation error.
func filterPatch(patch map[string]any, allowed []string) (map[string]any, error) {
	out := make(map[string]any, len(patch))
	for _, k := range allowed {
		if v, ok := patch[k]; ok {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil, invalid("Nothing to update, allowed fields: " + strings.Join(allowed, ", "))
	}
	return out, nil
}

func (s *AdminService) Article(ctx context.Context, communityID, id string) (*dtos.NewsArticle, error) {
	a, err := s.api.GetNews(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.CommunityID != communityID {
		return nil, notInCommunity("Article")
	}
	return a, nil
}

func (s *AdminService) EditArticle(ctx context.Context, communityID, id string, patch map[string]any) (*dtos.NewsArticle, error) {
	fields, err := filterPatch(patch, newsPatchFields)
	if err != nil {
		return nil, err
	}
	if _, err := s.Article(ctx, communityID, id); err != nil {
		return nil, err
	}
	return s.api.UpdateNews(ctx, id, fields)
}

func (s *AdminService) Event(ctx context.Context, communityID, id string) (*dtos.Event, error) {
	e, err := s.api.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.CommunityID != communityID {
		return nil, notInCommunity("Event")
	}
	return e, nil
}

func (s *AdminService) EditEvent(ctx context.Context, communityID, id string, patch map[string]any) (*dtos.Event, error) {
	fields, err := filterPatch(patch, eventPatchFields)
	if err != nil {
		return nil, err
	}
	if _, err := s.Event(ctx, communityID, id); err != nil {
		return nil, err
	}
	return s.api.UpdateEvent(ctx, id, fields)
}

// UpdateTicket changes the status or priority of a ticket of the community
func (s *AdminService) UpdateTicket(ctx context.Context, communityID, id string, patch map[string]any) (*dtos.Ticket, error) {
	fields, err := filterPatch(patch, ticketPatchFields)
	if err != nil {
		return nil, err
	}
	tickets, err := s.api.ListTickets(ctx, providers.TicketScope{CommunityID: communityID})
	if err != nil {
		return nil, err
	}
	for _, t := range tickets {
		if t.ID == id {
			return s.api.UpdateTicket(ctx, id, fields)
		}
	}
	return nil, notInCommunity("Ticket")
}

// Members lists the users holding a membership in communityID
func (s *AdminService) Members(ctx context.Context, communityID string) ([]Member, error) {
	users, err := s.api.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	members := []Member{}
	for _, u := range users {
		m, ok := u.FindMembership(communityID)
		if !ok {
			continue
		}
		name := u.FullName()
		if m.DisplayName != nil && *m.DisplayName != "" {
			name = *m.DisplayName
		}
		members = append(members, Member{Membership: m, Name: name, Email: u.Email, Active: m.IsActive()})
	}
	return members, nil
}

// AddMember creates the user and then its membership. Only member and admin
// roles can be granted from a community.
func (s *AdminService) AddMember(ctx context.Context, communityID string, req AddMemberRequest) (*dtos.Membership, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || (req.FirstName == "" && req.LastName == "") {
		return nil, invalid("Email and a name are required")
	}
	if req.Role == "" {
		req.Role = constants.RoleMember
	}
	if req.Role != constants.RoleMember && req.Role != constants.RoleAdmin {
		return nil, invalid("Role must be member or admin")
	}

	user, err := s.api.CreateUser(ctx, dtos.CreateUserRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		return nil, err
	}
	m, err := s.api.CreateMembership(ctx, dtos.CreateMembershipRequest{
		UserID:      user.ID,
		CommunityID: communityID,
		Role:        req.Role,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return nil, err
	}
	logging.Info("Member added", "community_id", communityID, "user_id", user.ID, "role", req.Role, "display_name", common.DerefString(req.DisplayName))
	return m, nil
}

// UpdateMember patches a membership of the community. Granting super_admin
// is reserved to the platform.
func (s *AdminService) UpdateMember(ctx context.Context, communityID, membershipID string, patch dtos.MembershipPatch) (*dtos.Membership, error) {
	if patch.Role != nil && *patch.Role == constants.RoleSuperAdmin {
		return nil, invalid("Role must be member or admin")
	}
	members, err := s.Members(ctx, communityID)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.Membership.ID == membershipID {
			return s.api.UpdateMembership(ctx, membershipID, patch)
		}
	}
	return nil, notInCommunity("Membership")
}

// Memberships returns the memberships the API currently holds for userID.
// With activeOnly, expired memberships are dropped.
func (s *AdminService) Memberships(ctx context.Context, userID string, activeOnly bool) ([]dtos.Membership, error) {
	list, err := s.api.GetUserMemberships(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := []dtos.Membership{}
	for _, m := range list {
		if activeOnly && !m.IsActive() {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *AdminService) Users(ctx context.Context) ([]dtos.User, error) {
	return s.api.ListUsers(ctx)
}

func (s *AdminService) CreateCommunity(ctx context.Context, req dtos.CreateCommunityRequest) (*dtos.Community, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, invalid("Community name is required")
	}
	if req.CommunityType == "" {
		req.CommunityType = "association"
	}
	return s.api.CreateCommunity(ctx, req)
}
