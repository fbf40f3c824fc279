package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mindful-chat/internal/domain"
	"mindful-chat/internal/domain/model"
	"mindful-chat/internal/domain/ports/adapter"
	"mindful-chat/internal/domain/ports/repository"
	"mindful-chat/internal/infra/logging"
	"mindful-chat/internal/infra/metrics"
)

// Compile-time check
var _ SessionUseCase = (*sessionUC)(nil)

// Session is one client's conversational state. Everything here is
// process-local and ephemeral: memory windows and the sentiment log are
// lost on restart while transcripts survive in storage.
type Session struct {
	ID             string
	CurrentChatID  string
	PersonalityKey string
	ModelKey       string
	CreatedAt      time.Time
	LastActive     time.Time

	mu         sync.Mutex
	memories   map[string]*model.MemoryWindow
	sentiments []model.SentimentReading
}

func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:             id,
		PersonalityKey: model.DefaultPersonalityKey,
		ModelKey:       model.DefaultModelKey,
		CreatedAt:      now,
		LastActive:     now,
		memories:       make(map[string]*model.MemoryWindow),
	}
}

// window returns the memory window for the session's current chat,
// creating it lazily. Windows are never resynced from storage once created.
// Caller holds s.mu.
func (s *Session) window() *model.MemoryWindow {
	key := s.CurrentChatID
	if key == "" {
		key = model.DefaultMemoryKey
	}
	w, ok := s.memories[key]
	if !ok {
		w = model.NewMemoryWindow(model.MemoryWindowSize)
		s.memories[key] = w
	}
	return w
}

// Touch marks the session as recently used.
func (s *Session) Touch() {
	s.mu.Lock()
	s.LastActive = time.Now()
	s.mu.Unlock()
}

// ChatID returns the session's current chat id.
func (s *Session) ChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.CurrentChatID
}

// Settings returns the current chat, personality, and model keys together.
func (s *Session) Settings() (chatID, personality, modelKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.CurrentChatID, s.PersonalityKey, s.ModelKey
}

func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.LastActive.Before(cutoff)
}

// SentimentLog returns a copy of the session's per-turn readings in order.
func (s *Session) SentimentLog() []model.SentimentReading {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.SentimentReading, len(s.sentiments))
	copy(out, s.sentiments)
	return out
}

// adoptChatID rebinds the pre-chat default window to a freshly minted chat
// id so the first exchange is not lost. Caller holds s.mu.
func (s *Session) adoptChatID(chatID string) {
	if chatID == "" || chatID == s.CurrentChatID {
		return
	}
	if w, ok := s.memories[model.DefaultMemoryKey]; ok {
		s.memories[chatID] = w
		delete(s.memories, model.DefaultMemoryKey)
	}
	s.CurrentChatID = chatID
}

// SessionManager hands out sessions keyed by client-supplied id and evicts
// the ones nobody has touched in a while.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the session for id, creating it when absent. Session
// fields are guarded by the session's own mutex, never the manager's, so
// concurrent requests for the same id stay race-free.
func (m *SessionManager) GetOrCreate(id string) *Session {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		s = NewSession(id)
		m.sessions[id] = s
	}
	m.mu.Unlock()

	s.Touch()
	return s
}

func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *SessionManager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// PruneIdle drops sessions idle longer than maxIdle and reports how many.
func (m *SessionManager) PruneIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.idleSince(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// TurnSink receives turn output as it is produced. Both callbacks are
// optional; a non-nil error from Fragment stops delivery (the client went
// away) without aborting the turn.
type TurnSink struct {
	Sentiment func(reading model.SentimentReading, resources []model.Resource) error
	Fragment  func(text string) error
}

// TurnResult is the completed turn.
type TurnResult struct {
	ChatID           string                 `json:"chat_id"`
	Sentiment        model.SentimentReading `json:"sentiment"`
	SurfaceResources bool                   `json:"surface_resources"`
	Resources        []model.Resource       `json:"resources,omitempty"`
	Reply            string                 `json:"reply"`
}

// SentimentSummary aggregates a session's in-memory sentiment log.
type SentimentSummary struct {
	Turns           int                     `json:"turns"`
	Counts          map[model.Mood]int      `json:"counts"`
	AveragePolarity float64                 `json:"average_polarity"`
	Latest          *model.SentimentReading `json:"latest,omitempty"`
}

type SessionUseCase interface {
	// ProcessTurn runs one full exchange: classify, persist, assemble,
	// stream, remember. Turns on the same session are serialized.
	ProcessTurn(ctx context.Context, sess *Session, text string, sink TurnSink) (*TurnResult, error)

	StartNewChat(sess *Session)
	LoadChat(ctx context.Context, sess *Session, chatID string) error
	SetPersonality(sess *Session, key string) error
	SetModel(sess *Session, key string) error

	QuickCheck(text string) (model.SentimentReading, []model.Resource)
	SentimentSummary(sess *Session) SentimentSummary

	History(ctx context.Context, chatID string) []model.Message
	ListChats(ctx context.Context) []model.ChatSummary
	DeleteChat(ctx context.Context, chatID string) bool
}

type sessionUC struct {
	convs     repository.ConversationRepository
	prompts   PromptUseCase
	sentiment adapter.SentimentAnalyzer
	ai        adapter.CompletionStreamer
	assembler *PromptAssembler
	defaults  adapter.ChatParams
	log       *zerolog.Logger
}

func NewSessionUseCase(
	convs repository.ConversationRepository,
	prompts PromptUseCase,
	sentiment adapter.SentimentAnalyzer,
	ai adapter.CompletionStreamer,
	assembler *PromptAssembler,
	defaults adapter.ChatParams,
	logger *zerolog.Logger,
) *sessionUC {
	l := logger.With().Str("component", "SessionUseCase").Logger()
	return &sessionUC{
		convs:     convs,
		prompts:   prompts,
		sentiment: sentiment,
		ai:        ai,
		assembler: assembler,
		defaults:  defaults,
		log:       &l,
	}
}

func (s *sessionUC) ProcessTurn(ctx context.Context, sess *Session, text string, sink TurnSink) (*TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrInvalidArgument
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.LastActive = time.Now()

	log := logging.With(ctx, s.log)
	defer logging.TraceDuration(log, "SessionUC.ProcessTurn")()

	// Classification happens on the raw turn, before anything can fail.
	reading := s.sentiment.Analyze(text)
	sess.sentiments = append(sess.sentiments, reading)
	metrics.ObserveSentiment(string(reading.Mood))

	surface := reading.Mood == model.MoodNegative && reading.Confidence > 0.5
	var resources []model.Resource
	if surface {
		resources = s.sentiment.ResourcesFor(reading.Mood)
		metrics.IncResourcesSurfaced()
	}
	if sink.Sentiment != nil {
		if err := sink.Sentiment(reading, resources); err != nil {
			return nil, err
		}
	}

	// Persist the user turn. Storage failure never blocks the exchange:
	// the session carries on with an unpersisted chat id.
	if id, err := s.convs.SaveMessage(ctx, sess.CurrentChatID, model.RoleUser, text); err != nil {
		log.Error().Err(err).Msg("save user message failed")
		metrics.IncStoreError("save_message")
		if sess.CurrentChatID == "" {
			sess.adoptChatID(uuid.NewString())
		}
	} else {
		sess.adoptChatID(id)
	}

	win := sess.window()
	persona := s.prompts.PersonalityPrompt(ctx, sess.PersonalityKey)
	msgs := s.assembler.BuildMessages(persona, win.Entries(), text)

	params := s.defaults
	modelName := params.Model
	if spec, ok := model.ModelByKey(sess.ModelKey); ok && spec.API != "" {
		modelName = spec.Name
	}
	params.Model = modelName
	metrics.AddPromptTokens(modelName, s.assembler.EstimatePromptTokens(msgs))

	stream := s.ai.StreamChat(ctx, params, msgs)
	defer stream.Close()

	var b strings.Builder
	for stream.Next() {
		frag := stream.Current()
		b.WriteString(frag)
		if sink.Fragment != nil {
			if err := sink.Fragment(frag); err != nil {
				log.Debug().Err(err).Msg("fragment sink closed, draining stream")
				sink.Fragment = nil
			}
		}
	}
	reply := b.String()
	if reply == "" {
		reply = adapter.FallbackReply
	}

	if id, err := s.convs.SaveMessage(ctx, sess.CurrentChatID, model.RoleAssistant, reply); err != nil {
		log.Error().Err(err).Msg("save assistant message failed")
		metrics.IncStoreError("save_message")
	} else {
		sess.adoptChatID(id)
	}

	// The window picks up the exchange only after assembly, so the prompt
	// a turn sees never contains its own text.
	win.AppendUser(text)
	win.AppendAssistant(reply)

	return &TurnResult{
		ChatID:           sess.CurrentChatID,
		Sentiment:        reading,
		SurfaceResources: surface,
		Resources:        resources,
		Reply:            reply,
	}, nil
}

func (s *sessionUC) StartNewChat(sess *Session) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.CurrentChatID = ""
	delete(sess.memories, model.DefaultMemoryKey)
}

// LoadChat points the session at an existing chat and rebuilds its memory
// window from the transcript tail.
func (s *sessionUC) LoadChat(ctx context.Context, sess *Session, chatID string) error {
	history, err := s.convs.History(ctx, chatID)
	if err != nil {
		metrics.IncStoreError("history")
		return err
	}

	win := model.NewMemoryWindow(model.MemoryWindowSize)
	for _, m := range history {
		switch m.Role {
		case model.RoleUser:
			win.AppendUser(m.Content)
		case model.RoleAssistant:
			win.AppendAssistant(m.Content)
		}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.CurrentChatID = chatID
	sess.memories[chatID] = win
	return nil
}

func (s *sessionUC) SetPersonality(sess *Session, key string) error {
	if _, ok := model.PersonalityByKey(key); !ok {
		return domain.ErrInvalidArgument
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.PersonalityKey = key
	return nil
}

func (s *sessionUC) SetModel(sess *Session, key string) error {
	if _, ok := model.ModelByKey(key); !ok {
		return domain.ErrInvalidArgument
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.ModelKey = key
	return nil
}

// QuickCheck classifies standalone text without touching any session or
// chat state.
func (s *sessionUC) QuickCheck(text string) (model.SentimentReading, []model.Resource) {
	reading := s.sentiment.Analyze(strings.TrimSpace(text))
	return reading, s.sentiment.ResourcesFor(reading.Mood)
}

func (s *sessionUC) SentimentSummary(sess *Session) SentimentSummary {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	out := SentimentSummary{Counts: make(map[model.Mood]int)}
	var polSum float64
	for _, r := range sess.sentiments {
		out.Counts[r.Mood]++
		polSum += r.Polarity
	}
	out.Turns = len(sess.sentiments)
	if out.Turns > 0 {
		out.AveragePolarity = polSum / float64(out.Turns)
		latest := sess.sentiments[out.Turns-1]
		out.Latest = &latest
	}
	return out
}

// History, ListChats, and DeleteChat degrade to empty results on storage
// failure; read paths never surface errors to clients.
func (s *sessionUC) History(ctx context.Context, chatID string) []model.Message {
	msgs, err := s.convs.History(ctx, chatID)
	if err != nil {
		s.log.Error().Err(err).Str("chat_id", chatID).Msg("history failed")
		metrics.IncStoreError("history")
		return nil
	}
	return msgs
}

func (s *sessionUC) ListChats(ctx context.Context) []model.ChatSummary {
	chats, err := s.convs.ListChats(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("list chats failed")
		metrics.IncStoreError("list_chats")
		return nil
	}
	return chats
}

func (s *sessionUC) DeleteChat(ctx context.Context, chatID string) bool {
	ok, err := s.convs.DeleteChat(ctx, chatID)
	if err != nil {
		s.log.Error().Err(err).Str("chat_id", chatID).Msg("delete chat failed")
		metrics.IncStoreError("delete_chat")
		return false
	}
	return ok
}
