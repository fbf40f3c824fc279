package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mindful-chat/internal/domain/model"
	"mindful-chat/internal/domain/ports/adapter"
)

// memConversationRepo is a small in-memory implementation used by unit tests.
type memConversationRepo struct {
	mu        sync.Mutex
	chats     map[string]*model.Chat
	messages  map[string][]model.Message
	nextChat  int
	nextMsgID int64
	saveErr   error // used by tests to simulate storage failures
}

func newMemConversationRepo() *memConversationRepo {
	return &memConversationRepo{
		chats:    make(map[string]*model.Chat),
		messages: make(map[string][]model.Message),
	}
}

func (m *memConversationRepo) newChatLocked(title string) string {
	m.nextChat++
	id := fmt.Sprintf("chat-%d", m.nextChat)
	now := time.Now()
	m.chats[id] = &model.Chat{ID: id, Title: title, LastMessage: now, CreatedAt: now, UpdatedAt: now}
	return id
}

func (m *memConversationRepo) CreateChat(ctx context.Context, title string) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.newChatLocked(title), nil
}

func (m *memConversationRepo) SaveMessage(ctx context.Context, chatID string, role model.Role, content string) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.chats[chatID]; chatID == "" || !ok {
		chatID = m.newChatLocked(model.TitleFromContent(content))
	}
	m.nextMsgID++
	now := time.Now()
	m.messages[chatID] = append(m.messages[chatID], model.Message{
		ID: m.nextMsgID, ChatID: chatID, Role: role, Content: content, CreatedAt: now, UpdatedAt: now,
	})
	m.chats[chatID].LastMessage = now
	return chatID, nil
}

func (m *memConversationRepo) History(ctx context.Context, chatID string) ([]model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Message, len(m.messages[chatID]))
	copy(out, m.messages[chatID])
	return out, nil
}

func (m *memConversationRepo) ListChats(ctx context.Context) ([]model.ChatSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.ChatSummary, 0, len(m.chats))
	for _, c := range m.chats {
		out = append(out, model.ChatSummary{ID: c.ID, Title: c.Title})
	}
	return out, nil
}

func (m *memConversationRepo) DeleteChat(ctx context.Context, chatID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.chats[chatID]; !ok {
		return false, nil
	}
	delete(m.chats, chatID)
	delete(m.messages, chatID)
	return true, nil
}

func (m *memConversationRepo) DeleteIdleChats(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, c := range m.chats {
		if c.LastMessage.Before(cutoff) {
			delete(m.chats, id)
			delete(m.messages, id)
			n++
		}
	}
	return n, nil
}

// scriptedAnalyzer returns a canned reading per exact input text and the
// neutral reading otherwise.
type scriptedAnalyzer struct {
	readings  map[string]model.SentimentReading
	resources []model.Resource
}

func (s *scriptedAnalyzer) Analyze(text string) model.SentimentReading {
	if r, ok := s.readings[text]; ok {
		return r
	}
	return model.NeutralReading()
}

func (s *scriptedAnalyzer) ResourcesFor(mood model.Mood) []model.Resource {
	return s.resources
}

// scriptedStream replays fragments; when failed is set it degrades to the
// single fallback fragment, matching the adapter contract.
type scriptedStream struct {
	frags []string
	i     int
}

func (s *scriptedStream) Next() bool {
	if s.i >= len(s.frags) {
		return false
	}
	s.i++
	return true
}

func (s *scriptedStream) Current() string {
	if s.i == 0 {
		return ""
	}
	return s.frags[s.i-1]
}

func (s *scriptedStream) Err() error   { return nil }
func (s *scriptedStream) Close() error { return nil }

type scriptedStreamer struct {
	mu       sync.Mutex
	frags    []string
	failing  bool
	requests [][]adapter.Message
	params   []adapter.ChatParams
}

func (s *scriptedStreamer) Provider() string { return "scripted" }

func (s *scriptedStreamer) StreamChat(ctx context.Context, params adapter.ChatParams, messages []adapter.Message) adapter.CompletionStream {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]adapter.Message, len(messages))
	copy(cp, messages)
	s.requests = append(s.requests, cp)
	s.params = append(s.params, params)
	if s.failing {
		return &scriptedStream{frags: []string{adapter.FallbackReply}}
	}
	return &scriptedStream{frags: s.frags}
}

func (s *scriptedStreamer) lastRequest() []adapter.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	return s.requests[len(s.requests)-1]
}
