package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"mindful-chat/internal/infra/logging"
	"mindful-chat/internal/infra/redis"
	"mindful-chat/internal/usecase"
)

type Server struct {
	sessions *usecase.SessionManager
	turns    usecase.SessionUseCase
	prompts  usecase.PromptUseCase
	auth     *AuthManager
	limiter  *redis.RateLimiter

	turnLimit  int
	turnWindow time.Duration
	apiEnabled bool

	log *zerolog.Logger
}

func NewServer(
	sessions *usecase.SessionManager,
	turns usecase.SessionUseCase,
	prompts usecase.PromptUseCase,
	auth *AuthManager,
	limiter *redis.RateLimiter,
	turnLimit int,
	turnWindow time.Duration,
	apiEnabled bool,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "web").Logger()
	return &Server{
		sessions:   sessions,
		turns:      turns,
		prompts:    prompts,
		auth:       auth,
		limiter:    limiter,
		turnLimit:  turnLimit,
		turnWindow: turnWindow,
		apiEnabled: apiEnabled,
		log:        &l,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/admin/login", s.handleAdminLogin)
	r.Post("/admin/logout", s.handleAdminLogout)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/turns", s.handleTurn)

		r.Get("/chats", s.handleListChats)
		r.Get("/chats/{id}/messages", s.handleChatHistory)
		r.Delete("/chats/{id}", s.handleDeleteChat)

		r.Get("/models", s.handleListModels)
		r.Get("/personalities", s.handleListPersonalities)

		r.Get("/sessions/{id}/sentiment", s.handleSessionSentiment)
		r.Put("/sessions/{id}", s.handleUpdateSession)
		r.Post("/sentiment", s.handleQuickCheck)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/prompts", s.handleListPrompts)
			r.Post("/prompts", s.handleSavePrompt)
			r.Get("/prompts/{name}", s.handleGetPrompt)
			r.Put("/prompts/{name}", s.handleUpdatePrompt)
			r.Delete("/prompts/{name}", s.handleDeletePrompt)
		})
	})

	return r
}

// requestID tags every request with a ULID, echoed back in X-Request-ID and
// attached to the request-scoped logger.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = ulid.Make().String()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := logging.WithTraceID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// allowTurn enforces the per-address turn rate. Limiter outages fail open:
// losing Redis should not take chat down with it.
func (s *Server) allowTurn(r *http.Request) bool {
	if s.limiter == nil {
		return true
	}
	ok, err := s.limiter.Allow(r.Context(), redis.TurnKey(r.RemoteAddr), s.turnLimit, s.turnWindow)
	if err != nil {
		s.log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
		return true
	}
	return ok
}
