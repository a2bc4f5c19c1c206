package constants

// MemberRole mirrors the role carried by a community membership
type MemberRole string

const (
	RoleMember     MemberRole = "member"
	RoleAdmin      MemberRole = "admin"
	RoleSuperAdmin MemberRole = "super_admin"
)

// String is convenient for fmt and logs
func (r MemberRole) String() string { return string(r) }

// MembershipStatus is the lifecycle state of a membership
type MembershipStatus string

const (
	MembershipActive  MembershipStatus = "active"
	MembershipExpired MembershipStatus = "expired"
)

// UploadKind names the upload slot families exposed by the API
type UploadKind string

const (
	UploadKindImage UploadKind = "image"
	UploadKindLogo  UploadKind = "logo"
)

// Valid reports whether k is one of the known upload kinds
func (k UploadKind) Valid() bool {
	return k == UploadKindImage || k == UploadKindLogo
}
