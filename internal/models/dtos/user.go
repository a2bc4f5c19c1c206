package dtos

import "koomy/portal/internal/constants"

// User is the read-only client projection of a Koomy account
type User struct {
	ID          string       `json:"id"`
	FirstName   string       `json:"firstName"`
	LastName    string       `json:"lastName"`
	Email       string       `json:"email"`
	Memberships []Membership `json:"memberships,omitempty"`
}

// FullName joins first and last name
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// FindMembership returns the membership the user holds in communityID
func (u User) FindMembership(communityID string) (Membership, bool) {
	for _, m := range u.Memberships {
		if m.CommunityID == communityID {
			return m, true
		}
	}
	return Membership{}, false
}

// Membership links a user to a community with a role
type Membership struct {
	ID                 string                     `json:"id"`
	UserID             string                     `json:"userId,omitempty"`
	CommunityID        string                     `json:"communityId"`
	Role               constants.MemberRole       `json:"role"`
	AdminRole          *string                    `json:"adminRole,omitempty"`
	Status             constants.MembershipStatus `json:"status"`
	ContributionStatus string                     `json:"contributionStatus"`
	DisplayName        *string                    `json:"displayName,omitempty"`
}

func (m Membership) IsAdmin() bool {
	return m.Role == constants.RoleAdmin || m.Role == constants.RoleSuperAdmin
}

func (m Membership) IsSuperAdmin() bool {
	return m.Role == constants.RoleSuperAdmin
}

func (m Membership) IsActive() bool {
	return m.Status == constants.MembershipActive
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by POST /api/auth/login
type LoginResponse struct {
	User        User         `json:"user"`
	Memberships []Membership `json:"memberships"`
	Token       string       `json:"token,omitempty"`
}

type CreateUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
}

type CreateMembershipRequest struct {
	UserID      string               `json:"userId"`
	CommunityID string               `json:"communityId"`
	Role        constants.MemberRole `json:"role"`
	DisplayName *string              `json:"displayName,omitempty"`
}

// MembershipPatch carries the fields PATCH /api/memberships/:id may change
type MembershipPatch struct {
	Role               *constants.MemberRole       `json:"role,omitempty"`
	AdminRole          *string                     `json:"adminRole,omitempty"`
	Status             *constants.MembershipStatus `json:"status,omitempty"`
	ContributionStatus *string                     `json:"contributionStatus,omitempty"`
	DisplayName        *string                     `json:"displayName,omitempty"`
}
