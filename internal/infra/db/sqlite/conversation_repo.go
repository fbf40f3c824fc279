package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mindful-chat/internal/domain/model"
	"mindful-chat/internal/domain/ports/repository"
)

var _ repository.ConversationRepository = (*ConversationRepo)(nil)

// ConversationRepo persists chats and their transcripts.
type ConversationRepo struct {
	db  *sql.DB
	log *zerolog.Logger
}

func NewConversationRepo(db *sql.DB, logger *zerolog.Logger) *ConversationRepo {
	l := logger.With().Str("component", "ConversationRepo").Logger()
	return &ConversationRepo{db: db, log: &l}
}

func (r *ConversationRepo) CreateChat(ctx context.Context, title string) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	const q = `INSERT INTO chats (id, title, last_message, created_at, updated_at) VALUES (?,?,?,?,?);`
	if _, err := r.db.ExecContext(ctx, q, id, title, now, now, now); err != nil {
		return "", fmt.Errorf("create chat: %w", err)
	}
	return id, nil
}

// SaveMessage appends one transcript entry. Durability of the message takes
// priority over referential integrity: an empty chat id creates a new chat,
// and a chat id that no longer exists is replaced by a freshly minted chat.
// The effective chat id is returned and may differ from the input.
func (r *ConversationRepo) SaveMessage(ctx context.Context, chatID string, role model.Role, content string) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("save message: begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if chatID == "" {
		chatID, err = r.insertChat(ctx, tx, model.TitleFromContent(content), now)
		if err != nil {
			return "", err
		}
	} else {
		const touch = `UPDATE chats SET last_message = ?, updated_at = ? WHERE id = ?;`
		res, err := tx.ExecContext(ctx, touch, now, now, chatID)
		if err != nil {
			return "", fmt.Errorf("touch chat: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			r.log.Warn().Str("chat_id", chatID).Msg("chat not found, creating new chat")
			chatID, err = r.insertChat(ctx, tx, model.TitleFromContent(content), now)
			if err != nil {
				return "", err
			}
		}
	}

	const ins = `INSERT INTO messages (chat_id, role, content, created_at, updated_at) VALUES (?,?,?,?,?);`
	if _, err := tx.ExecContext(ctx, ins, chatID, string(role), content, now, now); err != nil {
		return "", fmt.Errorf("insert message: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("save message: commit: %w", err)
	}
	return chatID, nil
}

func (r *ConversationRepo) insertChat(ctx context.Context, tx *sql.Tx, title string, now time.Time) (string, error) {
	id := uuid.NewString()
	const q = `INSERT INTO chats (id, title, last_message, created_at, updated_at) VALUES (?,?,?,?,?);`
	if _, err := tx.ExecContext(ctx, q, id, title, now, now, now); err != nil {
		return "", fmt.Errorf("insert chat: %w", err)
	}
	return id, nil
}

func (r *ConversationRepo) History(ctx context.Context, chatID string) ([]model.Message, error) {
	const q = `SELECT id, chat_id, role, content, created_at, updated_at FROM messages WHERE chat_id = ? ORDER BY id ASC;`
	rows, err := r.db.QueryContext(ctx, q, chatID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	out := make([]model.Message, 0, 16)
	for rows.Next() {
		var m model.Message
		var role string
		if err := rows.Scan(&m.ID, &m.ChatID, &role, &m.Content, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Role = model.Role(role)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *ConversationRepo) ListChats(ctx context.Context) ([]model.ChatSummary, error) {
	const q = `SELECT id, title FROM chats ORDER BY last_message DESC;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	var out []model.ChatSummary
	for rows.Next() {
		var c model.ChatSummary
		if err := rows.Scan(&c.ID, &c.Title); err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ConversationRepo) DeleteChat(ctx context.Context, chatID string) (bool, error) {
	// Messages cascade via the foreign key.
	const q = `DELETE FROM chats WHERE id = ?;`
	res, err := r.db.ExecContext(ctx, q, chatID)
	if err != nil {
		return false, fmt.Errorf("delete chat: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *ConversationRepo) DeleteIdleChats(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM chats WHERE last_message < ?;`
	res, err := r.db.ExecContext(ctx, q, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete idle chats: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
