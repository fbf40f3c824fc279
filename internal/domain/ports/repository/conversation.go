package repository

import (
	"context"
	"time"

	"mindful-chat/internal/domain/model"
)

// -----------------------------
// Chats & messages
// -----------------------------

// ConversationRepository is the durable transcript store. Implementations
// return errors; converting faults to fail-soft defaults happens at the
// use-case boundary so tests can still inspect the fault.
type ConversationRepository interface {
	// CreateChat inserts a new chat and returns its id.
	CreateChat(ctx context.Context, title string) (string, error)

	// SaveMessage appends a message and returns the effective chat id:
	// a fresh chat is created when chatID is empty, and a replacement chat
	// is minted when chatID no longer exists. Callers must adopt the
	// returned id.
	SaveMessage(ctx context.Context, chatID string, role model.Role, content string) (string, error)

	// History returns the full transcript ordered by sequence number.
	History(ctx context.Context, chatID string) ([]model.Message, error)

	// ListChats returns summaries ordered by last activity, newest first.
	ListChats(ctx context.Context) ([]model.ChatSummary, error)

	// DeleteChat removes a chat and cascades to its messages. Returns
	// false, not an error, when the chat does not exist.
	DeleteChat(ctx context.Context, chatID string) (bool, error)

	// DeleteIdleChats removes chats whose last activity predates cutoff
	// and returns how many were deleted.
	DeleteIdleChats(ctx context.Context, cutoff time.Time) (int64, error)
}
