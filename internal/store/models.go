package store

import "time"

// Message roles. The boundary rejects anything else.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// AIPreferences is the per-user record controlling how the assistant answers.
type AIPreferences struct {
	MaxTokens    int    `json:"maxTokens"`
	Personality  string `json:"personality"` // "default", "robot", "cynic" or "expert"
	AddressStyle string `json:"addressStyle"`
}

type User struct {
	ID            int64          `json:"id"`
	Username      string         `json:"username"`
	Password      string         `json:"-"` // Do not expose this in JSON responses
	Email         *string        `json:"email"`
	ProfilePhoto  *string        `json:"profilePhoto"`
	Role          *string        `json:"role"`
	AIPreferences *AIPreferences `json:"aiPreferences"`
}

type Conversation struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Title     string    `json:"title"`
	IsPinned  bool      `json:"isPinned"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversationId"`
	Content        string    `json:"content"`
	Role           string    `json:"role"` // "user" or "assistant"
	Attachments    []string  `json:"attachments"`
	CreatedAt      time.Time `json:"createdAt"`
}

type TokenUsage struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	Date       time.Time `json:"date"`
	TokensUsed int       `json:"tokensUsed"`
}

// NewUser carries the caller-supplied fields for user creation. The store
// assigns the ID and fills default AI preferences when none are given.
type NewUser struct {
	Username      string
	Password      string
	Email         *string
	ProfilePhoto  *string
	Role          *string
	AIPreferences *AIPreferences
}

type NewConversation struct {
	UserID   int64
	Title    string
	IsPinned bool
}

type NewMessage struct {
	ConversationID int64
	Content        string
	Role           string
	Attachments    []string
}

type NewTokenUsage struct {
	UserID     int64
	TokensUsed int
}

// UserPatch enumerates the user fields that may be mutated after creation.
// Username is immutable and deliberately absent.
type UserPatch struct {
	Password      *string        `json:"password,omitempty"`
	Email         *string        `json:"email,omitempty"`
	ProfilePhoto  *string        `json:"profilePhoto,omitempty"`
	Role          *string        `json:"role,omitempty"`
	AIPreferences *AIPreferences `json:"aiPreferences,omitempty"`
}

// ConversationPatch carries the mutable conversation fields. It has no
// timestamp fields: UpdatedAt is always stamped by the store on update, so a
// caller cannot backdate a conversation.
type ConversationPatch struct {
	Title    *string `json:"title,omitempty"`
	IsPinned *bool   `json:"isPinned,omitempty"`
}
