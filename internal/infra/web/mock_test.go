package web

import (
	"context"

	"mindful-chat/internal/domain"
	"mindful-chat/internal/domain/model"
	"mindful-chat/internal/usecase"
)

// fakeTurns is a scripted SessionUseCase for handler tests.
type fakeTurns struct {
	reading   model.SentimentReading
	resources []model.Resource
	frags     []string
	chats     []model.ChatSummary
	history   map[string][]model.Message

	deleted    []string
	loadedChat string
}

var _ usecase.SessionUseCase = (*fakeTurns)(nil)

func (f *fakeTurns) ProcessTurn(ctx context.Context, sess *usecase.Session, text string, sink usecase.TurnSink) (*usecase.TurnResult, error) {
	if sink.Sentiment != nil {
		if err := sink.Sentiment(f.reading, f.resources); err != nil {
			return nil, err
		}
	}
	reply := ""
	for _, frag := range f.frags {
		reply += frag
		if sink.Fragment != nil {
			if err := sink.Fragment(frag); err != nil {
				return nil, err
			}
		}
	}
	sess.CurrentChatID = "chat-1"
	return &usecase.TurnResult{
		ChatID:           "chat-1",
		Sentiment:        f.reading,
		SurfaceResources: len(f.resources) > 0,
		Resources:        f.resources,
		Reply:            reply,
	}, nil
}

func (f *fakeTurns) StartNewChat(sess *usecase.Session) { sess.CurrentChatID = "" }

func (f *fakeTurns) LoadChat(ctx context.Context, sess *usecase.Session, chatID string) error {
	f.loadedChat = chatID
	sess.CurrentChatID = chatID
	return nil
}

func (f *fakeTurns) SetPersonality(sess *usecase.Session, key string) error {
	if _, ok := model.PersonalityByKey(key); !ok {
		return domain.ErrInvalidArgument
	}
	sess.PersonalityKey = key
	return nil
}

func (f *fakeTurns) SetModel(sess *usecase.Session, key string) error {
	if _, ok := model.ModelByKey(key); !ok {
		return domain.ErrInvalidArgument
	}
	sess.ModelKey = key
	return nil
}

func (f *fakeTurns) QuickCheck(text string) (model.SentimentReading, []model.Resource) {
	return f.reading, f.resources
}

func (f *fakeTurns) SentimentSummary(sess *usecase.Session) usecase.SentimentSummary {
	return usecase.SentimentSummary{
		Turns:  1,
		Counts: map[model.Mood]int{f.reading.Mood: 1},
		Latest: &f.reading,
	}
}

func (f *fakeTurns) History(ctx context.Context, chatID string) []model.Message {
	return f.history[chatID]
}

func (f *fakeTurns) ListChats(ctx context.Context) []model.ChatSummary { return f.chats }

func (f *fakeTurns) DeleteChat(ctx context.Context, chatID string) bool {
	for _, c := range f.chats {
		if c.ID == chatID {
			f.deleted = append(f.deleted, chatID)
			return true
		}
	}
	return false
}

// fakePrompts is an in-memory PromptUseCase.
type fakePrompts struct {
	store map[string]*model.PromptTemplate
}

var _ usecase.PromptUseCase = (*fakePrompts)(nil)

func newFakePrompts() *fakePrompts {
	return &fakePrompts{store: make(map[string]*model.PromptTemplate)}
}

func (f *fakePrompts) Save(ctx context.Context, name, content, description string, isDefault bool) (*model.PromptTemplate, error) {
	if name == "" || content == "" {
		return nil, domain.ErrInvalidArgument
	}
	tpl := &model.PromptTemplate{Name: name, Content: content, Description: description, IsDefault: isDefault}
	f.store[name] = tpl
	return tpl, nil
}

func (f *fakePrompts) Get(ctx context.Context, name string) (*model.PromptTemplate, error) {
	tpl, ok := f.store[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return tpl, nil
}

func (f *fakePrompts) List(ctx context.Context) ([]*model.PromptTemplate, error) {
	out := make([]*model.PromptTemplate, 0, len(f.store))
	for _, tpl := range f.store {
		out = append(out, tpl)
	}
	return out, nil
}

func (f *fakePrompts) Delete(ctx context.Context, name string) (bool, error) {
	if _, ok := f.store[name]; !ok {
		return false, nil
	}
	delete(f.store, name)
	return true, nil
}

func (f *fakePrompts) PersonalityPrompt(ctx context.Context, key string) string { return "persona" }

func (f *fakePrompts) EnsureDefaults(ctx context.Context) error { return nil }
