package dtos

import "time"

type NewsArticle struct {
	ID          string     `json:"id"`
	CommunityID string     `json:"communityId"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary,omitempty"`
	Content     string     `json:"content"`
	Category    string     `json:"category,omitempty"`
	Image       *string    `json:"image,omitempty"`
	Scope       string     `json:"scope,omitempty"`
	Status      string     `json:"status,omitempty"`
	AuthorID    *string    `json:"authorId,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

type Event struct {
	ID           string     `json:"id"`
	CommunityID  string     `json:"communityId"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Type         string     `json:"type,omitempty"`
	Location     string     `json:"location,omitempty"`
	Date         time.Time  `json:"date"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	Capacity     *int       `json:"capacity,omitempty"`
	Participants int        `json:"participants,omitempty"`
}

type Ticket struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	CommunityID *string   `json:"communityId,omitempty"`
	Subject     string    `json:"subject"`
	Message     string    `json:"message"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type FAQ struct {
	ID         string `json:"id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Category   string `json:"category,omitempty"`
	TargetRole string `json:"targetRole,omitempty"`
}

type Message struct {
	ID             string    `json:"id"`
	CommunityID    string    `json:"communityId"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	SenderType     string    `json:"senderType,omitempty"`
	Content        string    `json:"content"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"createdAt"`
}

// CommunityOverview aggregates the views a member lands on after selecting a community
type CommunityOverview struct {
	Community *Community    `json:"community,omitempty"`
	News      []NewsArticle `json:"news"`
	Events    []Event       `json:"events"`
	Tickets   []Ticket      `json:"tickets"`
}
