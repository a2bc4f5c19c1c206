package dtos

// BrandConfig overrides community-level branding for a white-label tenant
type BrandConfig struct {
	AppName       *string `json:"appName,omitempty"`
	BrandColor    *string `json:"brandColor,omitempty"`
	LogoURL       *string `json:"logoUrl,omitempty"`
	ShowPoweredBy *bool   `json:"showPoweredBy,omitempty"`
	EmailFromName *string `json:"emailFromName,omitempty"`
	ReplyTo       *string `json:"replyTo,omitempty"`
}

// WhiteLabelConfig is what GET /api/white-label/config resolves for a host
type WhiteLabelConfig struct {
	WhiteLabel     bool         `json:"whiteLabel"`
	CommunityID    *string      `json:"communityId,omitempty"`
	CommunityName  *string      `json:"communityName,omitempty"`
	CommunityLogo  *string      `json:"communityLogo,omitempty"`
	BrandConfig    *BrandConfig `json:"brandConfig,omitempty"`
	WhiteLabelTier *string      `json:"whiteLabelTier,omitempty"`
	Hostname       *string      `json:"hostname,omitempty"`
}
