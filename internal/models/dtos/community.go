package dtos

// Community is the tenant record, fetched independently from memberships
type Community struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Logo          *string `json:"logo,omitempty"`
	Description   *string `json:"description,omitempty"`
	CommunityType string  `json:"communityType,omitempty"`
	Category      *string `json:"category,omitempty"`
	City          *string `json:"city,omitempty"`
	MemberCount   int     `json:"memberCount,omitempty"`
	PlanID        *string `json:"planId,omitempty"`
	PrimaryColor  *string `json:"primaryColor,omitempty"`
}

type CreateCommunityRequest struct {
	Name          string  `json:"name"`
	CommunityType string  `json:"communityType"`
	Description   *string `json:"description,omitempty"`
	Logo          *string `json:"logo,omitempty"`
}

// Plan is a subscription tier offered to communities
type Plan struct {
	ID           string   `json:"id"`
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	MaxMembers   *int     `json:"maxMembers,omitempty"`
	PriceMonthly *int     `json:"priceMonthly,omitempty"`
	PriceYearly  *int     `json:"priceYearly,omitempty"`
	Features     []string `json:"features,omitempty"`
	IsPopular    bool     `json:"isPopular,omitempty"`
}
