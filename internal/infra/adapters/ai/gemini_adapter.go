package ai

import (
	"context"
	"errors"
	"iter"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"mindful-chat/internal/domain/ports/adapter"
	"mindful-chat/internal/infra/metrics"
)

var _ adapter.CompletionStreamer = (*GeminiAdapter)(nil)

// GeminiAdapter streams chat completions from the Gemini API.
type GeminiAdapter struct {
	client *genai.Client
	model  string
	log    *zerolog.Logger
}

func NewGeminiAdapter(ctx context.Context, apiKey, defaultModel string, logger *zerolog.Logger) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key empty")
	}
	if defaultModel == "" {
		defaultModel = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	l := logger.With().Str("component", "GeminiAdapter").Logger()
	return &GeminiAdapter{client: client, model: defaultModel, log: &l}, nil
}

func (g *GeminiAdapter) Provider() string { return "gemini" }

func (g *GeminiAdapter) StreamChat(ctx context.Context, params adapter.ChatParams, messages []adapter.Message) adapter.CompletionStream {
	model := params.Model
	if model == "" {
		model = g.model
	}

	cfg := &genai.GenerateContentConfig{}
	if params.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*params.Temperature))
	}
	if params.TopP != nil {
		cfg.TopP = genai.Ptr(float32(*params.TopP))
	}
	if params.MaxTokens != nil {
		cfg.MaxOutputTokens = int32(*params.MaxTokens)
	}
	// RepetitionPenalty has no Gemini equivalent and is dropped.

	var contents []*genai.Content
	for _, m := range messages {
		switch strings.ToLower(m.Role) {
		case "system":
			// Gemini takes the system turn out of band.
			cfg.SystemInstruction = genai.NewContentFromText(m.Content, genai.RoleUser)
		case "assistant":
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	next, stop := iter.Pull2(g.client.Models.GenerateContentStream(ctx, model, contents, cfg))
	return &geminiStream{next: next, stop: stop, model: model, log: g.log, started: time.Now()}
}

var _ adapter.CompletionStream = (*geminiStream)(nil)

type geminiStream struct {
	next    func() (*genai.GenerateContentResponse, error, bool)
	stop    func()
	model   string
	log     *zerolog.Logger
	started time.Time

	cur   string
	frags int
	done  bool
}

func (g *geminiStream) Next() bool {
	if g.done {
		return false
	}
	for {
		resp, err, ok := g.next()
		if !ok {
			g.done = true
			metrics.ObserveStream("gemini", g.model, g.frags, time.Since(g.started).Milliseconds(), true)
			return false
		}
		if err != nil {
			g.done = true
			g.log.Error().Err(err).Str("model", g.model).Msg("completion stream failed")
			metrics.ObserveStream("gemini", g.model, g.frags, time.Since(g.started).Milliseconds(), false)
			g.cur = adapter.FallbackReply
			return true
		}
		if text := resp.Text(); text != "" {
			g.cur = text
			g.frags++
			return true
		}
	}
}

func (g *geminiStream) Current() string { return g.cur }

// Err is always nil: remote failures are contained as the fallback fragment.
func (g *geminiStream) Err() error { return nil }

func (g *geminiStream) Close() error {
	g.stop()
	return nil
}
