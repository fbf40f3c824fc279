package model

import (
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Chat is the aggregate root for one persisted conversation.
type Chat struct {
	ID          string
	Title       string
	LastMessage time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ChatSummary is the listing projection (sidebar entries).
type ChatSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Message is one transcript entry. The auto-incrementing ID defines total
// order within a chat; role alternation is not enforced.
type Message struct {
	ID        int64     `json:"-"`
	ChatID    string    `json:"-"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

const maxTitleRunes = 50

// TitleFromContent derives a chat title from the first message: a prefix of
// at most 50 characters, with an ellipsis when truncated.
func TitleFromContent(content string) string {
	r := []rune(content)
	if len(r) <= maxTitleRunes {
		return content
	}
	return string(r[:maxTitleRunes]) + "..."
}
