package session

import (
	"sync"
	"testing"

	"koomy/portal/internal/constants"
	"koomy/portal/internal/models/dtos"
)

func testUser(id string, communityIDs ...string) dtos.User {
	u := dtos.User{ID: id, FirstName: "Ada", LastName: "Lovelace", Email: id + "@example.com"}
	for _, c := range communityIDs {
		u.Memberships = append(u.Memberships, dtos.Membership{
			ID:          "m-" + c,
			UserID:      id,
			CommunityID: c,
			Role:        constants.RoleMember,
			Status:      constants.MembershipActive,
		})
	}
	return u
}

func communities(ids ...string) []dtos.Community {
	out := make([]dtos.Community, 0, len(ids))
	for _, id := range ids {
		out = append(out, dtos.Community{ID: id, Name: "Community " + id})
	}
	return out
}

func TestStore_StateTransitions(t *testing.T) {
	s := NewStore()
	if s.State() != StateAnonymous {
		t.Fatalf("Expected anonymous, got %s", s.State())
	}
	if s.CommunitiesEnabled() {
		t.Error("Expected community list disabled for anonymous session")
	}

	s.SetUser(testUser("u1", "c1"))
	if s.State() != StateAuthenticatedUnselected {
		t.Fatalf("Expected authenticated-unselected, got %s", s.State())
	}
	if !s.CommunitiesEnabled() {
		t.Error("Expected community list enabled once a user is set")
	}

	if !s.SelectCommunity("c1") {
		t.Fatal("Expected selection to succeed")
	}
	if s.State() != StateAuthenticatedSelected {
		t.Fatalf("Expected authenticated-selected, got %s", s.State())
	}
}

func TestStore_SelectCommunity_NoUser(t *testing.T) {
	s := NewStore()
	if s.SelectCommunity("c1") {
		t.Error("Expected selection without user to be a no-op")
	}
	if snap := s.Snapshot(); snap.CurrentMembership != nil {
		t.Error("Expected no membership")
	}
}

func TestStore_SelectCommunity_UnknownKeepsSelection(t *testing.T) {
	s := NewStore()
	s.SetUser(testUser("u1", "c1", "c2"))
	s.SetCommunities("u1", communities("c1", "c2"))
	s.SelectCommunity("c1")

	if s.SelectCommunity("nope") {
		t.Error("Expected unknown community to be rejected")
	}
	snap := s.Snapshot()
	if snap.CurrentMembership == nil || snap.CurrentMembership.CommunityID != "c1" {
		t.Fatalf("Expected prior selection kept, got %+v", snap.CurrentMembership)
	}
	if snap.CurrentCommunity == nil || snap.CurrentCommunity.ID != "c1" {
		t.Fatalf("Expected current community c1, got %+v", snap.CurrentCommunity)
	}
}

func TestStore_SelectBeforeCommunitiesArrive(t *testing.T) {
	s := NewStore()
	s.SetUser(testUser("u1", "c1", "c2"))
	s.SelectCommunity("c2")

	if snap := s.Snapshot(); snap.CurrentCommunity != nil {
		t.Fatal("Expected no current community before list arrives")
	}

	s.SetCommunities("u1", communities("c1", "c2"))
	snap := s.Snapshot()
	if snap.CurrentCommunity == nil || snap.CurrentCommunity.ID != "c2" {
		t.Fatalf("Expected c2 resolved after list arrival, got %+v", snap.CurrentCommunity)
	}
}

func TestStore_ListChangeDropsStaleCommunity(t *testing.T) {
	s := NewStore()
	s.SetUser(testUser("u1", "c1"))
	s.SetCommunities("u1", communities("c1"))
	s.SelectCommunity("c1")

	s.SetCommunities("u1", communities("c9"))
	snap := s.Snapshot()
	if snap.CurrentCommunity != nil {
		t.Errorf("Expected current community cleared, got %+v", snap.CurrentCommunity)
	}
	if snap.CurrentMembership == nil {
		t.Error("Expected membership to remain selected")
	}
}

func TestStore_LateCommunityListDropped(t *testing.T) {
	s := NewStore()
	s.SetUser(testUser("u1", "c1"))
	s.Logout()

	if s.SetCommunities("u1", communities("c1")) {
		t.Error("Expected list for logged out user to be dropped")
	}

	s.SetUser(testUser("u2", "c1"))
	if s.SetCommunities("u1", communities("c1")) {
		t.Error("Expected list for previous user to be dropped")
	}
	if s.CommunitiesLoaded() {
		t.Error("Expected no list loaded for u2")
	}
}

func TestStore_Logout(t *testing.T) {
	s := NewStore()
	s.SetUser(testUser("u1", "c1"))
	s.SetToken("tok")
	s.SetCommunities("u1", communities("c1"))
	s.SelectCommunity("c1")

	s.Logout()
	snap := s.Snapshot()
	if snap.User != nil || snap.CurrentMembership != nil || snap.CurrentCommunity != nil {
		t.Fatalf("Expected all-nil after logout, got %+v", snap)
	}
	if len(snap.AllCommunities) != 0 || snap.Token != "" {
		t.Error("Expected community list and token cleared")
	}

	s.Logout()
	if s.State() != StateAnonymous {
		t.Error("Expected logout to be idempotent")
	}
}

func TestStore_SetUserKeepsStaleSelection(t *testing.T) {
	s := NewStore()
	s.SetUser(testUser("u1", "c1"))
	s.SelectCommunity("c1")

	s.SetUser(testUser("u1", "c2"))
	snap := s.Snapshot()
	if snap.CurrentMembership == nil || snap.CurrentMembership.CommunityID != "c1" {
		t.Errorf("Expected selection kept across SetUser, got %+v", snap.CurrentMembership)
	}
}

func TestStore_SetUserSwitchRederivesCommunity(t *testing.T) {
	s := NewStore()
	s.SetUser(testUser("u1", "c1"))
	s.SetCommunities("u1", communities("c1"))
	s.SelectCommunity("c1")

	s.SetUser(testUser("u2", "c1", "c2"))
	snap := s.Snapshot()
	if snap.CurrentMembership == nil || snap.CurrentMembership.CommunityID != "c1" {
		t.Fatalf("Expected the membership to survive the switch, got %+v", snap.CurrentMembership)
	}
	if snap.CurrentCommunity != nil || len(snap.AllCommunities) != 0 || s.CommunitiesLoaded() {
		t.Errorf("Expected the previous user's list dropped, got %+v", snap)
	}

	s.SetCommunities("u2", communities("c1", "c2"))
	snap = s.Snapshot()
	if snap.CurrentCommunity == nil || snap.CurrentCommunity.ID != "c1" {
		t.Errorf("Expected c1 re-derived from the kept selection, got %+v", snap.CurrentCommunity)
	}
}

func TestStore_SnapshotRestore(t *testing.T) {
	s := NewStore()
	s.SetUser(testUser("u1", "c1"))
	s.SetCommunities("u1", communities("c1"))
	s.SelectCommunity("c1")
	s.SetToken("tok")

	snap := s.Snapshot()
	snap.User.Memberships[0].CommunityID = "mutated"

	restored := NewStore()
	restored.Restore(s.Snapshot())
	got := restored.Snapshot()
	if got.CurrentCommunity == nil || got.CurrentCommunity.ID != "c1" {
		t.Fatalf("Expected restored community c1, got %+v", got.CurrentCommunity)
	}
	if got.User.Memberships[0].CommunityID != "c1" {
		t.Error("Expected snapshot to be a copy")
	}
	if restored.Token() != "tok" {
		t.Error("Expected token restored")
	}
}

func TestStore_ConsistencyUnderConcurrency(t *testing.T) {
	s := NewStore()
	s.SetUser(testUser("u1", "c1", "c2", "c3"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.SelectCommunity([]string{"c1", "c2", "c3"}[i%3])
		}(i)
		go func() {
			defer wg.Done()
			s.SetCommunities("u1", communities("c1", "c2", "c3"))
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	if snap.CurrentMembership == nil || snap.CurrentCommunity == nil {
		t.Fatal("Expected a resolved selection")
	}
	if snap.CurrentMembership.CommunityID != snap.CurrentCommunity.ID {
		t.Errorf("Membership %s and community %s disagree", snap.CurrentMembership.CommunityID, snap.CurrentCommunity.ID)
	}
}
