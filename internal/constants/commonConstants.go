package constants

import "time"

type (
	APIStatus   string
	CachePrefix string
	CacheTag    string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixWhiteLabel CachePrefix = "white-label-config:"
	CachePrefixQuery      CachePrefix = "query:"
	CachePrefixSession    CachePrefix = "session:"
)

// Query cache tags, one per upstream resource
const (
	TagCommunities CacheTag = "communities"
	TagPlans       CacheTag = "plans"
	TagUsers       CacheTag = "users"
	TagMemberships CacheTag = "memberships"
	TagNews        CacheTag = "news"
	TagEvents      CacheTag = "events"
	TagTickets     CacheTag = "tickets"
	TagFAQs        CacheTag = "faqs"
	TagMessages    CacheTag = "messages"
)

// Branding fallbacks used when neither the brand config nor the community set a value
const (
	DefaultAppName    = "Koomy"
	DefaultBrandColor = "#6366f1"
	DefaultLogo       = "/logo.png"
)

const (
	WhiteLabelStaleAfter = 5 * time.Minute
	MaxUploadBytes       = 5 << 20
	SessionCookieName    = "koomy_session"
	SessionTTL           = 12 * time.Hour
)
