package repository

import (
	"context"

	"mindful-chat/internal/domain/model"
)

// PromptRepository is keyed template CRUD. Name is unique; Save upserts so
// repeated saves under one name update in place.
type PromptRepository interface {
	Save(ctx context.Context, tpl *model.PromptTemplate) error
	FindByName(ctx context.Context, name string) (*model.PromptTemplate, error)
	ListAll(ctx context.Context) ([]*model.PromptTemplate, error)
	// Delete returns false, not an error, when no template has that name.
	Delete(ctx context.Context, name string) (bool, error)
}
