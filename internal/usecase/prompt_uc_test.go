package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"mindful-chat/internal/domain"
	"mindful-chat/internal/domain/model"
)

// memPromptRepo is an in-memory prompt store keyed by name.
type memPromptRepo struct {
	mu    sync.Mutex
	store map[string]*model.PromptTemplate
}

func newMemPromptRepo() *memPromptRepo {
	return &memPromptRepo{store: make(map[string]*model.PromptTemplate)}
}

func (m *memPromptRepo) Save(ctx context.Context, tpl *model.PromptTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tpl
	if existing, ok := m.store[tpl.Name]; ok {
		cp.ID = existing.ID
		cp.CreatedAt = existing.CreatedAt
	} else {
		cp.CreatedAt = time.Now()
	}
	cp.UpdatedAt = time.Now()
	m.store[tpl.Name] = &cp
	return nil
}

func (m *memPromptRepo) FindByName(ctx context.Context, name string) (*model.PromptTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tpl, ok := m.store[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *tpl
	return &cp, nil
}

func (m *memPromptRepo) ListAll(ctx context.Context) ([]*model.PromptTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.PromptTemplate, 0, len(m.store))
	for _, tpl := range m.store {
		cp := *tpl
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memPromptRepo) Delete(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[name]; !ok {
		return false, nil
	}
	delete(m.store, name)
	return true, nil
}

func newPromptFixture() (*promptUC, *memPromptRepo) {
	logger := zerolog.Nop()
	repo := newMemPromptRepo()
	return NewPromptUseCase(repo, &logger), repo
}

func TestEnsureDefaults(t *testing.T) {
	ctx := context.Background()
	uc, repo := newPromptFixture()

	if err := uc.EnsureDefaults(ctx); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	def, err := repo.FindByName(ctx, "default")
	if err != nil {
		t.Fatal("expected default template seeded")
	}
	if !def.IsDefault {
		t.Error("expected default template marked is_default")
	}
	for _, p := range model.Personalities() {
		tpl, err := repo.FindByName(ctx, "personality_"+p.Key)
		if err != nil {
			t.Errorf("expected persona template for %q seeded", p.Key)
			continue
		}
		wantDefault := p.Key == model.DefaultPersonalityKey
		if tpl.IsDefault != wantDefault {
			t.Errorf("persona %q is_default = %v, want %v", p.Key, tpl.IsDefault, wantDefault)
		}
	}

	t.Run("reseeding leaves edits alone", func(t *testing.T) {
		edited := &model.PromptTemplate{Name: "default", Content: "edited content"}
		if err := repo.Save(ctx, edited); err != nil {
			t.Fatal(err)
		}
		if err := uc.EnsureDefaults(ctx); err != nil {
			t.Fatalf("reseed failed: %v", err)
		}
		got, _ := repo.FindByName(ctx, "default")
		if got.Content != "edited content" {
			t.Errorf("reseed overwrote an edited template: %q", got.Content)
		}
	})
}

func TestPersonalityPrompt(t *testing.T) {
	ctx := context.Background()
	uc, repo := newPromptFixture()

	t.Run("builtin when nothing stored", func(t *testing.T) {
		persona, _ := model.PersonalityByKey("professional")
		if got := uc.PersonalityPrompt(ctx, "professional"); got != persona.Prompt {
			t.Errorf("expected builtin prompt, got %q", got)
		}
	})

	t.Run("stored template overrides builtin", func(t *testing.T) {
		override := &model.PromptTemplate{Name: "personality_professional", Content: "custom professional prompt"}
		if err := repo.Save(ctx, override); err != nil {
			t.Fatal(err)
		}
		if got := uc.PersonalityPrompt(ctx, "professional"); got != "custom professional prompt" {
			t.Errorf("expected override, got %q", got)
		}
	})

	t.Run("unknown key falls back to the default persona", func(t *testing.T) {
		def, _ := model.PersonalityByKey(model.DefaultPersonalityKey)
		if got := uc.PersonalityPrompt(ctx, "nonexistent"); got != def.Prompt {
			t.Errorf("expected default persona prompt, got %q", got)
		}
	})
}

func TestPromptCRUD(t *testing.T) {
	ctx := context.Background()
	uc, _ := newPromptFixture()

	t.Run("save validates name and content", func(t *testing.T) {
		if _, err := uc.Save(ctx, "", "content", "", false); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for empty name, got %v", err)
		}
		if _, err := uc.Save(ctx, "greeting", "   ", "", false); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for blank content, got %v", err)
		}
	})

	t.Run("save then get round-trips", func(t *testing.T) {
		saved, err := uc.Save(ctx, "  greeting  ", "Hello!", "a greeting", false)
		if err != nil {
			t.Fatalf("save failed: %v", err)
		}
		if saved.Name != "greeting" {
			t.Errorf("expected trimmed name, got %q", saved.Name)
		}
		got, err := uc.Get(ctx, "greeting")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Content != "Hello!" || got.Description != "a greeting" {
			t.Errorf("unexpected round-trip: %+v", got)
		}
	})

	t.Run("save on an existing name updates in place", func(t *testing.T) {
		if _, err := uc.Save(ctx, "greeting", "Hi again!", "", false); err != nil {
			t.Fatalf("update failed: %v", err)
		}
		got, _ := uc.Get(ctx, "greeting")
		if got.Content != "Hi again!" {
			t.Errorf("expected updated content, got %q", got.Content)
		}
		all, _ := uc.List(ctx)
		names := 0
		for _, tpl := range all {
			if strings.HasPrefix(tpl.Name, "greeting") {
				names++
			}
		}
		if names != 1 {
			t.Errorf("expected a single greeting template, found %d", names)
		}
	})

	t.Run("delete reports presence", func(t *testing.T) {
		if ok, _ := uc.Delete(ctx, "greeting"); !ok {
			t.Error("expected delete of existing template to report true")
		}
		if ok, _ := uc.Delete(ctx, "greeting"); ok {
			t.Error("expected delete of missing template to report false")
		}
	})
}
