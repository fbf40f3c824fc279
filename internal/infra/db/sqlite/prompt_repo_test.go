package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"mindful-chat/internal/domain"
	"mindful-chat/internal/domain/model"
)

func testPromptRepo(t *testing.T) *PromptRepo {
	t.Helper()
	logger := zerolog.Nop()
	return NewPromptRepo(testDB(t), &logger)
}

func TestPromptSaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := testPromptRepo(t)

	tpl := &model.PromptTemplate{
		Name:        "default",
		Content:     "You are a helpful AI assistant.",
		Description: "base prompt",
		IsDefault:   true,
	}
	if err := repo.Save(ctx, tpl); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := repo.FindByName(ctx, "default")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if got.Content != tpl.Content || got.Description != "base prompt" || !got.IsDefault {
		t.Errorf("round-trip mismatch: %+v", got)
	}
	if got.ID == "" {
		t.Error("expected an assigned id")
	}

	t.Run("missing name maps to ErrNotFound", func(t *testing.T) {
		if _, err := repo.FindByName(ctx, "nonexistent"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		if err := repo.Save(ctx, &model.PromptTemplate{Content: "x"}); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestPromptUpsert(t *testing.T) {
	ctx := context.Background()
	repo := testPromptRepo(t)

	if err := repo.Save(ctx, &model.PromptTemplate{Name: "greeting", Content: "v1"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := repo.Save(ctx, &model.PromptTemplate{Name: "greeting", Content: "v2", Description: "updated"}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	got, err := repo.FindByName(ctx, "greeting")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if got.Content != "v2" || got.Description != "updated" {
		t.Errorf("expected updated row, got %+v", got)
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected a single row after upsert, got %d", len(all))
	}
}

func TestPromptListOrder(t *testing.T) {
	ctx := context.Background()
	repo := testPromptRepo(t)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := repo.Save(ctx, &model.PromptTemplate{Name: name, Content: "c"}); err != nil {
			t.Fatalf("save %q failed: %v", name, err)
		}
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	want := []string{"alpha", "mid", "zeta"}
	for i, name := range want {
		if all[i].Name != name {
			t.Errorf("position %d: expected %q, got %q", i, name, all[i].Name)
		}
	}
}

func TestPromptDelete(t *testing.T) {
	ctx := context.Background()
	repo := testPromptRepo(t)

	repo.Save(ctx, &model.PromptTemplate{Name: "temp", Content: "c"})

	if ok, err := repo.Delete(ctx, "temp"); err != nil || !ok {
		t.Fatalf("expected delete true, got ok=%v err=%v", ok, err)
	}
	if ok, err := repo.Delete(ctx, "temp"); err != nil || ok {
		t.Errorf("expected delete false for missing row, got ok=%v err=%v", ok, err)
	}
}
