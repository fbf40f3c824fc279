package model

import (
	"fmt"
	"strings"
	"testing"
)

// --- Chat title tests ---

func TestTitleFromContent(t *testing.T) {
	t.Run("short content is used verbatim", func(t *testing.T) {
		if got := TitleFromContent("hello there"); got != "hello there" {
			t.Errorf("expected 'hello there', got %q", got)
		}
	})

	t.Run("long content is truncated with ellipsis", func(t *testing.T) {
		long := strings.Repeat("a", 80)
		got := TitleFromContent(long)
		want := strings.Repeat("a", 50) + "..."
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("truncation counts runes, not bytes", func(t *testing.T) {
		long := strings.Repeat("é", 60)
		got := TitleFromContent(long)
		want := strings.Repeat("é", 50) + "..."
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})
}

// --- Memory window tests ---

func TestMemoryWindow(t *testing.T) {
	t.Run("keeps everything under the cap", func(t *testing.T) {
		w := NewMemoryWindow(5)
		w.AppendUser("hi")
		w.AppendAssistant("hello")

		entries := w.Entries()
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].Role != RoleUser || entries[0].Content != "hi" {
			t.Errorf("unexpected first entry: %+v", entries[0])
		}
		if entries[1].Role != RoleAssistant || entries[1].Content != "hello" {
			t.Errorf("unexpected second entry: %+v", entries[1])
		}
	})

	t.Run("evicts oldest exchanges past k", func(t *testing.T) {
		w := NewMemoryWindow(5)
		for i := 1; i <= 7; i++ {
			w.AppendUser(fmt.Sprintf("u%d", i))
			w.AppendAssistant(fmt.Sprintf("a%d", i))
		}

		entries := w.Entries()
		if len(entries) != 10 {
			t.Fatalf("expected 10 entries (5 exchanges), got %d", len(entries))
		}
		if entries[0].Content != "u3" {
			t.Errorf("expected oldest retained entry to be u3, got %q", entries[0].Content)
		}
		if entries[9].Content != "a7" {
			t.Errorf("expected newest entry to be a7, got %q", entries[9].Content)
		}
	})

	t.Run("entries returns a copy", func(t *testing.T) {
		w := NewMemoryWindow(5)
		w.AppendUser("original")
		entries := w.Entries()
		entries[0].Content = "mutated"
		if w.Entries()[0].Content != "original" {
			t.Error("mutating the returned slice changed the window")
		}
	})

	t.Run("non-positive k falls back to the default", func(t *testing.T) {
		w := NewMemoryWindow(0)
		for i := 0; i < 20; i++ {
			w.AppendUser("u")
			w.AppendAssistant("a")
		}
		if w.Len() != 2*MemoryWindowSize {
			t.Errorf("expected %d entries, got %d", 2*MemoryWindowSize, w.Len())
		}
	})
}

// --- Registry tests ---

func TestModels(t *testing.T) {
	t.Run("hosted models hidden without a provider", func(t *testing.T) {
		for _, m := range Models(false) {
			if m.API != "" {
				t.Errorf("expected only local models, got %q (api=%s)", m.Key, m.API)
			}
		}
	})

	t.Run("default model is hosted and listed", func(t *testing.T) {
		spec, ok := ModelByKey(DefaultModelKey)
		if !ok {
			t.Fatalf("default model %q missing from registry", DefaultModelKey)
		}
		if spec.API == "" {
			t.Errorf("default model %q should be provider-backed", DefaultModelKey)
		}
	})
}

func TestPersonalities(t *testing.T) {
	if _, ok := PersonalityByKey(DefaultPersonalityKey); !ok {
		t.Fatalf("default personality %q missing", DefaultPersonalityKey)
	}
	for _, p := range Personalities() {
		if p.Prompt == "" {
			t.Errorf("personality %q has an empty prompt", p.Key)
		}
	}
	if _, ok := PersonalityByKey("nonexistent"); ok {
		t.Error("expected lookup of unknown personality to fail")
	}
}
