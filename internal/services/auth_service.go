package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"koomy/portal/internal/common"
	"koomy/portal/internal/logging"
	"koomy/portal/internal/models/dtos"
	"koomy/portal/internal/providers"
	"koomy/portal/internal/session"
)

var ErrNoSession = errors.New("no active session")

// SessionAPI is the slice of the Koomy API the session flow needs
type SessionAPI interface {
	Login(ctx context.Context, email, password string) (*dtos.LoginResponse, error)
	ListCommunities(ctx context.Context) ([]dtos.Community, error)
}

// AuthService drives the per-browser session store: login, community
// selection, community list loading and logout
type AuthService struct {
	repo   common.SessionRepository
	signer *common.SessionTokenSigner
	api    SessionAPI
	ttl    time.Duration
}

func NewAuthService(repo common.SessionRepository, signer *common.SessionTokenSigner, api SessionAPI, ttl time.Duration) *AuthService {
	return &AuthService{
		repo:   repo,
		signer: signer,
		api:    api,
		ttl:    ttl,
	}
}

// Login authenticates upstream and opens a session. It returns the session
// and the signed cookie value.
func (s *AuthService) Login(ctx context.Context, host, email, password string) (*common.SessionData, string, error) {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	store := session.NewStore()
	store.SetUser(res.User)
	store.SetToken(res.Token)

	data, err := s.repo.Create(ctx, host, store.Snapshot())
	if err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}
	token, err := s.signer.Sign(data.SessionID, s.ttl)
	if err != nil {
		_ = s.repo.Delete(ctx, data.SessionID)
		return nil, "", err
	}

	logging.Info("User logged in", "user_id", res.User.ID, "host", host, "memberships", len(res.User.Memberships))
	return data, token, nil
}

// Resolve maps a cookie value to its session
func (s *AuthService) Resolve(ctx context.Context, cookieValue string) (*common.SessionData, *common.SessionClaims, error) {
	if cookieValue == "" {
		return nil, nil, ErrNoSession
	}
	claims, err := s.signer.Validate(cookieValue)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	data, err := s.repo.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	return data, claims, nil
}

// Store restores a live store from the session
func Store(data *common.SessionData) *session.Store {
	st := session.NewStore()
	st.Restore(data.State)
	return st
}

// mutate applies fn to the latest persisted state of the session. The
// repository runs it under its per-session write guard, so fn may run more
// than once and must only touch the store it is given.
func (s *AuthService) mutate(ctx context.Context, sessionID string, fn func(st *session.Store)) (*common.SessionData, error) {
	data, err := s.repo.Update(ctx, sessionID, func(data *common.SessionData) error {
		st := Store(data)
		fn(st)
		data.State = st.Snapshot()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	return data, nil
}

// LoadCommunities fetches the community list for a logged in session that has
// none yet. The list is applied only if the same user is still logged in when
// it arrives.
func (s *AuthService) LoadCommunities(ctx context.Context, data *common.SessionData) (*common.SessionData, error) {
	st := Store(data)
	if !st.CommunitiesEnabled() || st.CommunitiesLoaded() {
		return data, nil
	}

	userID := st.UserID()
	list, err := s.api.ListCommunities(providers.WithBearer(ctx, st.Token()))
	if err != nil {
		return data, err
	}

	return s.mutate(ctx, data.SessionID, func(latest *session.Store) {
		latest.SetCommunities(userID, list)
	})
}

// SelectCommunity activates one of the user's memberships. Unknown ids leave
// the selection as it was and report false.
func (s *AuthService) SelectCommunity(ctx context.Context, data *common.SessionData, communityID string) (*common.SessionData, bool, error) {
	var ok bool
	updated, err := s.mutate(ctx, data.SessionID, func(st *session.Store) {
		ok = st.SelectCommunity(communityID)
	})
	if err != nil {
		return data, false, err
	}
	return updated, ok, nil
}

// Logout clears the session state, drops it and revokes the cookie token
func (s *AuthService) Logout(ctx context.Context, data *common.SessionData, claims *common.SessionClaims) error {
	userID := Store(data).UserID()
	if _, err := s.mutate(ctx, data.SessionID, func(st *session.Store) {
		st.Logout()
	}); err != nil && !errors.Is(err, common.ErrSessionNotFound) && !errors.Is(err, common.ErrSessionExpired) {
		return err
	}
	if err := s.repo.Delete(ctx, data.SessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.signer.Revoke(claims)
	logging.Debug("Session closed", "session_id", data.SessionID, "user_id", userID)
	return nil
}
