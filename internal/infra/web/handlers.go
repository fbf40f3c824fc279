package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"mindful-chat/internal/domain"
	"mindful-chat/internal/domain/model"
	"mindful-chat/internal/infra/logging"
	"mindful-chat/internal/usecase"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ===== turns (SSE) =====

type turnRequest struct {
	SessionID string `json:"session_id"`
	ChatID    string `json:"chat_id,omitempty"`
	Text      string `json:"text"`
}

type sentimentEvent struct {
	model.SentimentReading
	Resources []model.Resource `json:"resources,omitempty"`
}

type fragmentEvent struct {
	Text string `json:"text"`
}

// handleTurn runs one exchange and streams it back as server-sent events:
// one `sentiment` event, zero or more `fragment` events, one `done` event.
func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if !s.allowTurn(r) {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	if req.SessionID == "" {
		req.SessionID = ulid.Make().String()
	}
	ctx := logging.WithSessionID(r.Context(), req.SessionID)
	sess := s.sessions.GetOrCreate(req.SessionID)
	if req.ChatID != "" && req.ChatID != sess.ChatID() {
		ctx := logging.WithChatID(ctx, req.ChatID)
		if err := s.turns.LoadChat(ctx, sess, req.ChatID); err != nil {
			s.log.Warn().Err(err).Str("chat_id", req.ChatID).Msg("load chat failed, continuing with session state")
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Session-ID", req.SessionID)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sink := usecase.TurnSink{
		Sentiment: func(reading model.SentimentReading, resources []model.Resource) error {
			return writeSSE(w, flusher, "sentiment", sentimentEvent{SentimentReading: reading, Resources: resources})
		},
		Fragment: func(text string) error {
			return writeSSE(w, flusher, "fragment", fragmentEvent{Text: text})
		},
	}

	result, err := s.turns.ProcessTurn(ctx, sess, req.Text, sink)
	if err != nil {
		// Headers are committed; the best we can do is log and close.
		s.log.Error().Err(err).Str("session_id", req.SessionID).Msg("turn failed")
		return
	}
	_ = writeSSE(w, flusher, "done", result)
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

// ===== chats =====

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	chats := s.turns.ListChats(r.Context())
	if chats == nil {
		chats = []model.ChatSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"chats": chats})
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	msgs := s.turns.History(r.Context(), id)
	if msgs == nil {
		msgs = []model.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"chat_id": id, "messages": msgs})
}

func (s *Server) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	if !s.turns.DeleteChat(r.Context(), chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "chat not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ===== registries =====

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"models": model.Models(s.apiEnabled)})
}

func (s *Server) handleListPersonalities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"personalities": model.Personalities()})
}

// ===== sessions =====

func (s *Server) handleSessionSentiment(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary": s.turns.SentimentSummary(sess),
		"log":     sess.SentimentLog(),
	})
}

type sessionUpdateRequest struct {
	Personality *string `json:"personality,omitempty"`
	Model       *string `json:"model,omitempty"`
	// ChatID switches chats; the empty string starts a fresh one.
	ChatID *string `json:"chat_id,omitempty"`
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess := s.sessions.GetOrCreate(chi.URLParam(r, "id"))

	if req.Personality != nil {
		if err := s.turns.SetPersonality(sess, *req.Personality); err != nil {
			writeError(w, http.StatusBadRequest, "unknown personality")
			return
		}
	}
	if req.Model != nil {
		if err := s.turns.SetModel(sess, *req.Model); err != nil {
			writeError(w, http.StatusBadRequest, "unknown model")
			return
		}
	}
	if req.ChatID != nil {
		if *req.ChatID == "" {
			s.turns.StartNewChat(sess)
		} else if err := s.turns.LoadChat(r.Context(), sess, *req.ChatID); err != nil {
			writeError(w, http.StatusInternalServerError, "load chat failed")
			return
		}
	}

	chatID, personality, modelKey := sess.Settings()
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":  sess.ID,
		"chat_id":     chatID,
		"personality": personality,
		"model":       modelKey,
	})
}

// ===== quick mood check =====

type quickCheckRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleQuickCheck(w http.ResponseWriter, r *http.Request) {
	var req quickCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reading, resources := s.turns.QuickCheck(req.Text)
	writeJSON(w, http.StatusOK, sentimentEvent{SentimentReading: reading, Resources: resources})
}

// ===== admin =====

type loginRequest struct {
	APIKey string `json:"api_key"`
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !s.auth.CheckAPIKey(req.APIKey) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	token, err := s.auth.Mint(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to mint session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// ===== prompt templates (admin) =====

type promptRequest struct {
	Name        string `json:"name"`
	Content     string `json:"content"`
	Description string `json:"description"`
	IsDefault   bool   `json:"is_default"`
}

func (s *Server) handleListPrompts(w http.ResponseWriter, r *http.Request) {
	prompts, err := s.prompts.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list prompts")
		return
	}
	if prompts == nil {
		prompts = []*model.PromptTemplate{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"prompts": prompts})
}

func (s *Server) handleSavePrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tpl, err := s.prompts.Save(r.Context(), req.Name, req.Content, req.Description, req.IsDefault)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			writeError(w, http.StatusBadRequest, "name and content are required")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to save prompt")
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

func (s *Server) handleGetPrompt(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.prompts.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "prompt not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get prompt")
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (s *Server) handleUpdatePrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// The URL names the template; the body may omit it.
	req.Name = chi.URLParam(r, "name")
	tpl, err := s.prompts.Save(r.Context(), req.Name, req.Content, req.Description, req.IsDefault)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			writeError(w, http.StatusBadRequest, "content is required")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to save prompt")
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (s *Server) handleDeletePrompt(w http.ResponseWriter, r *http.Request) {
	ok, err := s.prompts.Delete(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete prompt")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "prompt not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
