package session

import (
	"sync"

	"koomy/portal/internal/logging"
	"koomy/portal/internal/models/dtos"
)

// State is the lifecycle position of a session
type State string

const (
	StateAnonymous               State = "anonymous"
	StateAuthenticatedUnselected State = "authenticated_unselected"
	StateAuthenticatedSelected   State = "authenticated_selected"
)

// Snapshot is a value copy of a store, safe to serialise and hand to readers
type Snapshot struct {
	User              *dtos.User        `json:"user"`
	CurrentMembership *dtos.Membership  `json:"currentMembership"`
	CurrentCommunity  *dtos.Community   `json:"currentCommunity"`
	AllCommunities    []dtos.Community  `json:"allCommunities,omitempty"`
	// CommunitiesFor is the user id the community list was loaded for
	CommunitiesFor string `json:"communitiesFor,omitempty"`
	Token          string `json:"token,omitempty"`
}

// Store holds the auth and membership state of one browser session.
// All mutations go through the mutex and end by re-deriving the current community.
type Store struct {
	mu sync.Mutex

	user              *dtos.User
	currentMembership *dtos.Membership
	currentCommunity  *dtos.Community
	communities       []dtos.Community
	communitiesFor    string
	token             string
}

func NewStore() *Store {
	return &Store{}
}

// ResolveCurrentCommunity returns the community of membership found in
// communities, or nil when either side is missing.
func ResolveCurrentCommunity(membership *dtos.Membership, communities []dtos.Community) *dtos.Community {
	if membership == nil {
		return nil
	}
	for i := range communities {
		if communities[i].ID == membership.CommunityID {
			c := communities[i]
			return &c
		}
	}
	return nil
}

func (s *Store) reconcile() {
	s.currentCommunity = ResolveCurrentCommunity(s.currentMembership, s.communities)
}

// SetUser replaces the user wholesale. An existing selection is kept even when
// the new user has no matching membership. Switching to another user id drops
// the community list loaded for the previous one, so the current community
// stays nil until the new user's list arrives and re-derives it.
func (s *Store) SetUser(u dtos.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user != nil && s.user.ID != u.ID {
		s.communities = nil
		s.communitiesFor = ""
	}
	if s.currentMembership != nil {
		if _, ok := u.FindMembership(s.currentMembership.CommunityID); !ok {
			logging.Warn("SetUser kept a selection the new user has no membership for",
				"user_id", u.ID,
				"community_id", s.currentMembership.CommunityID,
			)
		}
	}
	user := cloneUser(u)
	s.user = &user
	s.reconcile()
}

// SetToken stores the upstream bearer token for the current user
func (s *Store) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// SelectCommunity activates the user's membership in communityID. It is a
// no-op without a user or when the user has no such membership.
func (s *Store) SelectCommunity(communityID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return false
	}
	m, ok := s.user.FindMembership(communityID)
	if !ok {
		return false
	}
	s.currentMembership = &m
	s.reconcile()
	return true
}

// SetCommunities installs the community list loaded for userID. Lists that
// arrive after the user changed or logged out are dropped.
func (s *Store) SetCommunities(userID string, list []dtos.Community) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil || s.user.ID != userID {
		logging.Debug("Dropping late community list", "requested_for", userID)
		return false
	}
	s.communities = append([]dtos.Community(nil), list...)
	s.communitiesFor = userID
	s.reconcile()
	return true
}

// Logout clears every field unconditionally
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	s.currentMembership = nil
	s.currentCommunity = nil
	s.communities = nil
	s.communitiesFor = ""
	s.token = ""
}

// CommunitiesEnabled reports whether the community list may be fetched
func (s *Store) CommunitiesEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// CommunitiesLoaded reports whether a list has been installed for the current user
func (s *Store) CommunitiesLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil && s.communitiesFor == s.user.ID
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.user == nil:
		return StateAnonymous
	case s.currentMembership == nil:
		return StateAuthenticatedUnselected
	default:
		return StateAuthenticatedSelected
	}
}

func (s *Store) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return ""
	}
	return s.user.ID
}

func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Snapshot returns a deep copy of the current state
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		AllCommunities: append([]dtos.Community(nil), s.communities...),
		CommunitiesFor: s.communitiesFor,
		Token:          s.token,
	}
	if s.user != nil {
		u := cloneUser(*s.user)
		snap.User = &u
	}
	if s.currentMembership != nil {
		m := *s.currentMembership
		snap.CurrentMembership = &m
	}
	if s.currentCommunity != nil {
		c := *s.currentCommunity
		snap.CurrentCommunity = &c
	}
	return snap
}

// Restore replaces the state with snap. The current community is re-derived
// rather than trusted.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	if snap.User != nil {
		u := cloneUser(*snap.User)
		s.user = &u
	}
	s.currentMembership = nil
	if snap.CurrentMembership != nil {
		m := *snap.CurrentMembership
		s.currentMembership = &m
	}
	s.communities = append([]dtos.Community(nil), snap.AllCommunities...)
	s.communitiesFor = snap.CommunitiesFor
	s.token = snap.Token
	s.reconcile()
}

func cloneUser(u dtos.User) dtos.User {
	u.Memberships = append([]dtos.Membership(nil), u.Memberships...)
	return u
}
