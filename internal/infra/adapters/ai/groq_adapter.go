package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/packages/ssestream"
	"github.com/rs/zerolog"

	"mindful-chat/internal/domain/ports/adapter"
	"mindful-chat/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.CompletionStreamer = (*GroqAdapter)(nil)

// GroqAdapter streams chat completions from Groq's OpenAI-compatible
// gateway. Base URL defaults to https://api.groq.com/openai/v1
// (configurable); the chat completions path and auth scheme match OpenAI.
type GroqAdapter struct {
	client openai.Client
	model  string
	log    *zerolog.Logger
}

func NewGroqAdapter(apiKey, baseURL, defaultModel string, logger *zerolog.Logger) (*GroqAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("groq api key empty")
	}
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}
	if defaultModel == "" {
		defaultModel = "llama3-8b-8192"
	}
	l := logger.With().Str("component", "GroqAdapter").Logger()
	return &GroqAdapter{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"),
		),
		model: defaultModel,
		log:   &l,
	}, nil
}

func (g *GroqAdapter) Provider() string { return "groq" }

func (g *GroqAdapter) StreamChat(ctx context.Context, params adapter.ChatParams, messages []adapter.Message) adapter.CompletionStream {
	model := params.Model
	if model == "" {
		model = g.model
	}

	body := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: toOpenAIMessages(messages),
	}
	// Each optional parameter is included only when present.
	if params.Temperature != nil {
		body.Temperature = openai.Float(*params.Temperature)
	}
	if params.MaxTokens != nil {
		body.MaxTokens = openai.Int(*params.MaxTokens)
	}
	if params.TopP != nil {
		body.TopP = openai.Float(*params.TopP)
	}
	// params.RepetitionPenalty has no wire equivalent here and is dropped.

	s := g.client.Chat.Completions.NewStreaming(ctx, body)
	return &groqStream{s: s, model: model, log: g.log, started: time.Now()}
}

func toOpenAIMessages(messages []adapter.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch strings.ToLower(m.Role) {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

var _ adapter.CompletionStream = (*groqStream)(nil)

type groqStream struct {
	s       *ssestream.Stream[openai.ChatCompletionChunk]
	model   string
	log     *zerolog.Logger
	started time.Time

	cur   string
	frags int
	done  bool
}

func (g *groqStream) Next() bool {
	if g.done {
		return false
	}
	for g.s.Next() {
		chunk := g.s.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			g.cur = delta
			g.frags++
			return true
		}
	}
	g.done = true
	latency := time.Since(g.started).Milliseconds()
	if err := g.s.Err(); err != nil {
		g.log.Error().Err(err).Str("model", g.model).Msg("completion stream failed")
		metrics.ObserveStream("groq", g.model, g.frags, latency, false)
		g.cur = adapter.FallbackReply
		return true
	}
	metrics.ObserveStream("groq", g.model, g.frags, latency, true)
	return false
}

func (g *groqStream) Current() string { return g.cur }

// Err is always nil: remote failures are contained as the fallback fragment.
func (g *groqStream) Err() error { return nil }

func (g *groqStream) Close() error { return g.s.Close() }
