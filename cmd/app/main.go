package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mindful-chat/internal/config"
	"mindful-chat/internal/domain/ports/adapter"
	aiAdapters "mindful-chat/internal/infra/adapters/ai"
	"mindful-chat/internal/infra/db/sqlite"
	"mindful-chat/internal/infra/logging"
	"mindful-chat/internal/infra/metrics"
	red "mindful-chat/internal/infra/redis"
	"mindful-chat/internal/infra/sched"
	"mindful-chat/internal/infra/sentiment"
	"mindful-chat/internal/infra/web"
	"mindful-chat/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop AI, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled")
	}
	metrics.MustRegister()

	// ---- SQLite store ----
	db, err := sqlite.Open(ctx, cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("sqlite open failed")
	}
	defer db.Close()

	convRepo := sqlite.NewConversationRepo(db, logger)
	promptRepo := sqlite.NewPromptRepo(db, logger)

	// ---- Use cases ----
	promptUC := usecase.NewPromptUseCase(promptRepo, logger)
	if err := promptUC.EnsureDefaults(ctx); err != nil {
		logger.Fatal().Err(err).Msg("prompt seeding failed")
	}

	classifier := sentiment.NewClassifier(logger)
	assembler := usecase.NewPromptAssembler(logger)

	// ---- AI provider (dev -> noop, then Groq, then Gemini) ----
	var ai adapter.CompletionStreamer
	switch {
	case cfg.Runtime.Dev:
		ai = aiAdapters.NewNoopStreamer()
		logger.Info().Msg("AI adapter: noop (dev)")
	case cfg.AI.GroqKey != "":
		ai, err = aiAdapters.NewGroqAdapter(cfg.AI.GroqKey, cfg.AI.GroqBaseURL, cfg.AI.DefaultModel, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("groq adapter failed")
		}
		logger.Info().Str("base", cfg.AI.GroqBaseURL).Str("model", cfg.AI.DefaultModel).Msg("AI adapter: Groq")
	case cfg.AI.GeminiKey != "":
		ai, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.DefaultModel, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini adapter failed")
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: Gemini")
	default:
		logger.Fatal().Msgf("no AI provider configured: set GROQ_API_KEY or GEMINI_API_KEY, or ai.groq_key/ai.gemini_key in %s", *cfgPath)
	}
	ai = aiAdapters.NewLimitedStreamer(ai, cfg.AI.ConcurrentLimit)

	defaults := adapter.ChatParams{
		Model:             cfg.AI.DefaultModel,
		Temperature:       cfg.AI.Temperature,
		TopP:              cfg.AI.TopP,
		MaxTokens:         cfg.AI.MaxTokens,
		RepetitionPenalty: cfg.AI.RepetitionPenalty,
	}
	sessionUC := usecase.NewSessionUseCase(convRepo, promptUC, classifier, ai, assembler, defaults, logger)
	sessions := usecase.NewSessionManager()

	// ---- Redis rate limiter (optional) ----
	var limiter *red.RateLimiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connect failed")
		}
		defer redisClient.Close()
		limiter = red.NewRateLimiter(redisClient)
		logger.Info().Str("addr", cfg.Redis.URL).Msg("turn rate limiting enabled")
	}

	// ---- HTTP server ----
	auth := web.NewAuthManager(cfg.Admin.APIKey, cfg.Admin.SessionSecret, !cfg.Runtime.Dev, cfg.Admin.SessionTTL)
	apiEnabled := cfg.Runtime.Dev || cfg.AI.GroqKey != "" || cfg.AI.GeminiKey != ""
	srv := web.NewServer(sessions, sessionUC, promptUC, auth, limiter,
		cfg.Redis.TurnLimit, cfg.Redis.TurnWindow, apiEnabled, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Retention worker ----
	if cfg.Retention.MaxIdle > 0 {
		worker := sched.NewRetentionWorker(cfg.Retention.SweepInterval, cfg.Retention.MaxIdle, convRepo, sessions, logger)
		go func() { _ = worker.Run(ctx) }()
	}

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
}
