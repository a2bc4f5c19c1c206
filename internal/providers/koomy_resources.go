package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"koomy/portal/internal/constants"
	"koomy/portal/internal/models/dtos"
)

// ============================================================================
// Auth & tenancy
// ============================================================================

// Login exchanges credentials for the user and their memberships
func (p *KoomyAPIProvider) Login(ctx context.Context, email, password string) (*dtos.LoginResponse, error) {
	if email == "" || password == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeValidation,
			Message: "Email and password are required",
		}
	}
	var result dtos.LoginResponse
	if _, err := p.do(ctx, http.MethodPost, "/api/auth/login", dtos.LoginRequest{Email: email, Password: password}, &result); err != nil {
		return nil, err
	}
	if len(result.User.Memberships) == 0 && len(result.Memberships) > 0 {
		result.User.Memberships = result.Memberships
	}
	return &result, nil
}

// GetWhiteLabelConfig resolves the white-label configuration for host. It is
// never read from the query cache; the white-label store memoises it.
func (p *KoomyAPIProvider) GetWhiteLabelConfig(ctx context.Context, host string) (*dtos.WhiteLabelConfig, error) {
	if host != "" {
		ctx = WithForwardedHost(ctx, host)
	}
	var result dtos.WhiteLabelConfig
	if _, err := p.do(ctx, http.MethodGet, "/api/white-label/config", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (p *KoomyAPIProvider) ListCommunities(ctx context.Context) ([]dtos.Community, error) {
	var result []dtos.Community
	err := p.cachedGET(ctx, constants.TagCommunities, "/api/communities", &result)
	return result, err
}

func (p *KoomyAPIProvider) GetCommunity(ctx context.Context, id string) (*dtos.Community, error) {
	if err := requireID("community id", id); err != nil {
		return nil, err
	}
	var result dtos.Community
	if err := p.cachedGET(ctx, constants.TagCommunities, "/api/communities/"+url.PathEscape(id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (p *KoomyAPIProvider) CreateCommunity(ctx context.Context, req dtos.CreateCommunityRequest) (*dtos.Community, error) {
	var result dtos.Community
	if err := p.mutate(ctx, http.MethodPost, "/api/communities", req, &result, constants.TagCommunities); err != nil {
		return nil, err
	}
	return &result, nil
}

func (p *KoomyAPIProvider) ListPlans(ctx context.Context) ([]dtos.Plan, error) {
	var result []dtos.Plan
	err := p.cachedGET(ctx, constants.TagPlans, "/api/plans", &result)
	return result, err
}

// ============================================================================
// Users & memberships
// ============================================================================

func (p *KoomyAPIProvider) ListUsers(ctx context.Context) ([]dtos.User, error) {
	var result []dtos.User
	err := p.cachedGET(ctx, constants.TagUsers, "/api/users", &result)
	return result, err
}

func (p *KoomyAPIProvider) CreateUser(ctx context.Context, req dtos.CreateUserRequest) (*dtos.User, error) {
	var result dtos.User
	if err := p.mutate(ctx, http.MethodPost, "/api/users", req, &result, constants.TagUsers); err != nil {
		return nil, err
	}
	return &result, nil
}

func (p *KoomyAPIProvider) GetUserMemberships(ctx context.Context, userID string) ([]dtos.Membership, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	var result []dtos.Membership
	err := p.cachedGET(ctx, constants.TagMemberships, "/api/users/"+url.PathEscape(userID)+"/memberships", &result)
	return result, err
}

func (p *KoomyAPIProvider) CreateMembership(ctx context.Context, req dtos.CreateMembershipRequest) (*dtos.Membership, error) {
	var result dtos.Membership
	if err := p.mutate(ctx, http.MethodPost, "/api/memberships", req, &result, constants.TagMemberships, constants.TagUsers); err != nil {
		return nil, err
	}
	return &result, nil
}

func (p *KoomyAPIProvider) UpdateMembership(ctx context.Context, id string, patch dtos.MembershipPatch) (*dtos.Membership, error) {
	if err := requireID("membership id", id); err != nil {
		return nil, err
	}
	var result dtos.Membership
	if err := p.mutate(ctx, http.MethodPatch, "/api/memberships/"+url.PathEscape(id), patch, &result, constants.TagMemberships, constants.TagUsers); err != nil {
		return nil, err
	}
	return &result, nil
}

// ============================================================================
// Community content
// ============================================================================

func (p *KoomyAPIProvider) ListNews(ctx context.Context, communityID string) ([]dtos.NewsArticle, error) {
	if err := requireID("community id", communityID); err != nil {
		return nil, err
	}
	var result []dtos.NewsArticle
	err := p.cachedGET(ctx, constants.TagNews, "/api/communities/"+url.PathEscape(communityID)+"/news", &result)
	return result, err
}

func (p *KoomyAPIProvider) GetNews(ctx context.Context, id string) (*dtos.NewsArticle, error) {
	if err := requireID("news id", id); err != nil {
		return nil, err
	}
	var result dtos.NewsArticle
	if err := p.cachedGET(ctx, constants.TagNews, "/api/news/"+url.PathEscape(id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (p *KoomyAPIProvider) CreateNews(ctx context.Context, article dtos.NewsArticle) (*dtos.NewsArticle, error) {
	var result dtos.NewsArticle
	if err := p.mutate(ctx, http.MethodPost, "/api/news", article, &result, constants.TagNews); err != nil {
		return nil, err
	}
	return &result, nil
}

func (p *KoomyAPIProvider) UpdateNews(ctx context.Context, id string, patch map[string]any) (*dtos.NewsArticle, error) {
	if err := requireID("news id", id); err != nil {
		return nil, err
	}
	var result dtos.NewsArticle
	if err := p.mutate(ctx, http.MethodPatch, "/api/news/"+url.PathEscape(id), patch, &result, constants.TagNews); err != nil {
		return nil, err
	}
	return &result, nil
}

func (p *KoomyAPIProvider) ListEvents(ctx context.Context, communityID string) ([]dtos.Event, error) {
	if err := requireID("community id", communityID); err != nil {
		return nil, err
	}
	var result []dtos.Event
	err := p.cachedGET(ctx, constants.TagEvents, "/api/communities/"+url.PathEscape(communityID)+"/events", &result)
	return result, err
}

func (p *KoomyAPIProvider) GetEvent(ctx context.Context, id string) (*dtos.Event, error) {
	if err := requireID("event id", id); err != nil {
		return nil, err
	}
	var result dtos.Event
	if err := p.cachedGET(ctx, constants.TagEvents, "/api/events/"+url.PathEscape(id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (p *KoomyAPIProvider) CreateEvent(ctx context.Context, event dtos.Event) (*dtos.Event, error) {
	var result dtos.Event
	if err := p.mutate(ctx, http.MethodPost, "/api/events", event, &result, constants.TagEvents); err != nil {
		return nil, err
	}
	return &result, nil
}

func (p *KoomyAPIProvider) UpdateEvent(ctx context.Context, id string, patch map[string]any) (*dtos.Event, error) {
	if err := requireID("event id", id); err != nil {
		return nil, err
	}
	var result dtos.Event
	if err := p.mutate(ctx, http.MethodPatch, "/api/events/"+url.PathEscape(id), patch, &result, constants.TagEvents); err != nil {
		return nil, err
	}
	return &result, nil
}

// TicketScope selects which ticket listing endpoint is read
type TicketScope struct {
	UserID      string
	CommunityID string
}

func (p *KoomyAPIProvider) ListTickets(ctx context.Context, scope TicketScope) ([]dtos.Ticket, error) {
	endpoint := "/api/tickets"
	switch {
	case scope.CommunityID != "":
		endpoint = "/api/communities/" + url.PathEscape(scope.CommunityID) + "/tickets"
	case scope.UserID != "":
		endpoint = "/api/users/" + url.PathEscape(scope.UserID) + "/tickets"
	}
	var result []dtos.Ticket
	err := p.cachedGET(ctx, constants.TagTickets, endpoint, &result)
	return result, err
}

func (p *KoomyAPIProvider) CreateTicket(ctx context.Context, ticket dtos.Ticket) (*dtos.Ticket, error) {
	var result dtos.Ticket
	if err := p.mutate(ctx, http.MethodPost, "/api/tickets", ticket, &result, constants.TagTickets); err != nil {
		return nil, err
	}
	return &result, nil
}

func (p *KoomyAPIProvider) UpdateTicket(ctx context.Context, id string, patch map[string]any) (*dtos.Ticket, error) {
	if err := requireID("ticket id", id); err != nil {
		return nil, err
	}
	var result dtos.Ticket
	if err := p.mutate(ctx, http.MethodPatch, "/api/tickets/"+url.PathEscape(id), patch, &result, constants.TagTickets); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListFAQs returns the FAQ, optionally filtered by target role
func (p *KoomyAPIProvider) ListFAQs(ctx context.Context, role string) ([]dtos.FAQ, error) {
	endpoint := "/api/faqs"
	if role != "" {
		endpoint += "?role=" + url.QueryEscape(role)
	}
	var result []dtos.FAQ
	err := p.cachedGET(ctx, constants.TagFAQs, endpoint, &result)
	return result, err
}

func (p *KoomyAPIProvider) ListMessages(ctx context.Context, communityID, conversationID string) ([]dtos.Message, error) {
	if err := requireID("community id", communityID); err != nil {
		return nil, err
	}
	if err := requireID("conversation id", conversationID); err != nil {
		return nil, err
	}
	var result []dtos.Message
	endpoint := "/api/communities/" + url.PathEscape(communityID) + "/messages/" + url.PathEscape(conversationID)
	err := p.cachedGET(ctx, constants.TagMessages, endpoint, &result)
	return result, err
}

func (p *KoomyAPIProvider) CreateMessage(ctx context.Context, msg dtos.Message) (*dtos.Message, error) {
	var result dtos.Message
	if err := p.mutate(ctx, http.MethodPost, "/api/messages", msg, &result, constants.TagMessages); err != nil {
		return nil, err
	}
	return &result, nil
}

func (p *KoomyAPIProvider) MarkMessageRead(ctx context.Context, id string) error {
	if err := requireID("message id", id); err != nil {
		return err
	}
	return p.mutate(ctx, http.MethodPatch, "/api/messages/"+url.PathEscape(id)+"/read", nil, nil, constants.TagMessages)
}

// ============================================================================
// Uploads
// ============================================================================

// RequestUploadSlot asks the API for a presigned write URL
func (p *KoomyAPIProvider) RequestUploadSlot(ctx context.Context, kind constants.UploadKind, folder string) (*dtos.UploadSlotResponse, error) {
	if !kind.Valid() {
		return nil, &ProviderError{Code: constants.ErrCodeInvalidKind, Message: constants.GetErrorMessage(constants.ErrCodeInvalidKind)}
	}
	var result dtos.UploadSlotResponse
	if _, err := p.do(ctx, http.MethodPost, "/api/uploads/"+string(kind), dtos.UploadSlotRequest{Folder: folder}, &result); err != nil {
		return nil, err
	}
	if result.UploadURL == "" {
		return nil, &ProviderError{Code: constants.ErrCodeDecodeError, Message: "Upload slot response has no uploadURL"}
	}
	return &result, nil
}

// PutObject sends the raw bytes to a presigned URL. No bearer token is sent.
func (p *KoomyAPIProvider) PutObject(ctx context.Context, uploadURL, contentType string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(body))
	if err != nil {
		return &ProviderError{Code: constants.ErrCodeUploadPut, Message: "Failed to create upload request", Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(body))

	resp, err := p.Client.Do(req)
	if err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ProviderError{
			Code:    constants.ErrCodeUploadPut,
			Message: constants.GetErrorMessage(constants.ErrCodeUploadPut),
			Details: fmt.Sprintf("HTTP %d from object storage", resp.StatusCode),
			Status:  resp.StatusCode,
		}
	}
	return nil
}

// FinalizeUpload turns a written slot into a stable object path
func (p *KoomyAPIProvider) FinalizeUpload(ctx context.Context, kind constants.UploadKind, uploadURL string) (*dtos.FinalizeUploadResponse, error) {
	var result dtos.FinalizeUploadResponse
	if _, err := p.do(ctx, http.MethodPost, "/api/uploads/"+string(kind)+"/finalize", dtos.FinalizeUploadRequest{UploadURL: uploadURL}, &result); err != nil {
		return nil, err
	}
	if result.ObjectPath == "" {
		return nil, &ProviderError{Code: constants.ErrCodeDecodeError, Message: "Finalize response has no objectPath"}
	}
	return &result, nil
}

func requireID(name, id string) error {
	if id == "" {
		return &ProviderError{
			Code:    constants.ErrCodeValidation,
			Message: name + " cannot be empty",
		}
	}
	return nil
}
