package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"mindful-chat/internal/domain"
	"mindful-chat/internal/domain/model"
	"mindful-chat/internal/domain/ports/repository"
)

// Compile-time check
var _ PromptUseCase = (*promptUC)(nil)

// personalityPromptPrefix names the stored template that overrides a builtin
// persona prompt: "personality_friendly" overrides the friendly persona.
const personalityPromptPrefix = "personality_"

const defaultPromptName = "default"
const defaultPromptContent = "You are a helpful AI assistant."

type PromptUseCase interface {
	Save(ctx context.Context, name, content, description string, isDefault bool) (*model.PromptTemplate, error)
	Get(ctx context.Context, name string) (*model.PromptTemplate, error)
	List(ctx context.Context) ([]*model.PromptTemplate, error)
	Delete(ctx context.Context, name string) (bool, error)

	// PersonalityPrompt resolves the system prompt for a persona key:
	// stored override first, builtin second, default persona for unknown
	// keys. Never fails.
	PersonalityPrompt(ctx context.Context, key string) string

	// EnsureDefaults seeds the default template and one override slot per
	// builtin persona. Existing rows are left untouched.
	EnsureDefaults(ctx context.Context) error
}

type promptUC struct {
	prompts repository.PromptRepository
	log     *zerolog.Logger
}

func NewPromptUseCase(prompts repository.PromptRepository, logger *zerolog.Logger) *promptUC {
	l := logger.With().Str("component", "PromptUseCase").Logger()
	return &promptUC{prompts: prompts, log: &l}
}

func (p *promptUC) Save(ctx context.Context, name, content, description string, isDefault bool) (*model.PromptTemplate, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(content) == "" {
		return nil, domain.ErrInvalidArgument
	}
	tpl := &model.PromptTemplate{
		Name:        name,
		Content:     content,
		Description: description,
		IsDefault:   isDefault,
	}
	if err := p.prompts.Save(ctx, tpl); err != nil {
		return nil, err
	}
	return p.prompts.FindByName(ctx, name)
}

func (p *promptUC) Get(ctx context.Context, name string) (*model.PromptTemplate, error) {
	return p.prompts.FindByName(ctx, name)
}

func (p *promptUC) List(ctx context.Context) ([]*model.PromptTemplate, error) {
	return p.prompts.ListAll(ctx)
}

func (p *promptUC) Delete(ctx context.Context, name string) (bool, error) {
	return p.prompts.Delete(ctx, name)
}

func (p *promptUC) PersonalityPrompt(ctx context.Context, key string) string {
	persona, ok := model.PersonalityByKey(key)
	if !ok {
		persona, _ = model.PersonalityByKey(model.DefaultPersonalityKey)
	}

	tpl, err := p.prompts.FindByName(ctx, personalityPromptPrefix+persona.Key)
	if err == nil && strings.TrimSpace(tpl.Content) != "" {
		return tpl.Content
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		p.log.Warn().Err(err).Str("personality", persona.Key).Msg("prompt lookup failed, using builtin")
	}
	return persona.Prompt
}

func (p *promptUC) EnsureDefaults(ctx context.Context) error {
	seed := []*model.PromptTemplate{
		{
			Name:        defaultPromptName,
			Content:     defaultPromptContent,
			Description: "Base assistant prompt",
			IsDefault:   true,
		},
	}
	for _, persona := range model.Personalities() {
		seed = append(seed, &model.PromptTemplate{
			Name:        personalityPromptPrefix + persona.Key,
			Content:     persona.Prompt,
			Description: persona.Name + " persona prompt",
			IsDefault:   persona.Key == model.DefaultPersonalityKey,
		})
	}

	for _, tpl := range seed {
		if _, err := p.prompts.FindByName(ctx, tpl.Name); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if err := p.prompts.Save(ctx, tpl); err != nil {
			return err
		}
		p.log.Info().Str("name", tpl.Name).Msg("seeded prompt template")
	}
	return nil
}
