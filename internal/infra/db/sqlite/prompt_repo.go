package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mindful-chat/internal/domain"
	"mindful-chat/internal/domain/model"
	"mindful-chat/internal/domain/ports/repository"
)

var _ repository.PromptRepository = (*PromptRepo)(nil)

// PromptRepo persists named prompt templates. Names are unique at the
// schema level; Save upserts on name so repeated saves update in place.
type PromptRepo struct {
	db  *sql.DB
	log *zerolog.Logger
}

func NewPromptRepo(db *sql.DB, logger *zerolog.Logger) *PromptRepo {
	l := logger.With().Str("component", "PromptRepo").Logger()
	return &PromptRepo{db: db, log: &l}
}

func (r *PromptRepo) Save(ctx context.Context, tpl *model.PromptTemplate) error {
	if tpl.Name == "" {
		return domain.ErrInvalidArgument
	}
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	const q = `
INSERT INTO prompts (id, name, content, description, is_default, created_at, updated_at)
VALUES (?,?,?,?,?,?,?)
ON CONFLICT(name) DO UPDATE SET
  content = excluded.content,
  description = excluded.description,
  is_default = excluded.is_default,
  updated_at = excluded.updated_at;`
	desc := sql.NullString{String: tpl.Description, Valid: tpl.Description != ""}
	if _, err := r.db.ExecContext(ctx, q, tpl.ID, tpl.Name, tpl.Content, desc, boolToInt(tpl.IsDefault), now, now); err != nil {
		return fmt.Errorf("save prompt %q: %w", tpl.Name, err)
	}
	return nil
}

func (r *PromptRepo) FindByName(ctx context.Context, name string) (*model.PromptTemplate, error) {
	const q = `SELECT id, name, content, description, is_default, created_at, updated_at FROM prompts WHERE name = ?;`
	row := r.db.QueryRowContext(ctx, q, name)

	var tpl model.PromptTemplate
	var desc sql.NullString
	var isDefault int
	err := row.Scan(&tpl.ID, &tpl.Name, &tpl.Content, &desc, &isDefault, &tpl.CreatedAt, &tpl.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find prompt %q: %w", name, err)
	}
	tpl.Description = desc.String
	tpl.IsDefault = isDefault != 0
	return &tpl, nil
}

func (r *PromptRepo) ListAll(ctx context.Context) ([]*model.PromptTemplate, error) {
	const q = `SELECT id, name, content, description, is_default, created_at, updated_at FROM prompts ORDER BY name ASC;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	var out []*model.PromptTemplate
	for rows.Next() {
		var tpl model.PromptTemplate
		var desc sql.NullString
		var isDefault int
		if err := rows.Scan(&tpl.ID, &tpl.Name, &tpl.Content, &desc, &isDefault, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		tpl.Description = desc.String
		tpl.IsDefault = isDefault != 0
		out = append(out, &tpl)
	}
	return out, rows.Err()
}

func (r *PromptRepo) Delete(ctx context.Context, name string) (bool, error) {
	const q = `DELETE FROM prompts WHERE name = ?;`
	res, err := r.db.ExecContext(ctx, q, name)
	if err != nil {
		return false, fmt.Errorf("delete prompt %q: %w", name, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
