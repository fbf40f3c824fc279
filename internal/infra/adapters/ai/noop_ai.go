package ai

import (
	"context"
	"strings"

	"mindful-chat/internal/domain/ports/adapter"
)

var _ adapter.CompletionStreamer = (*NoopStreamer)(nil)

// NoopStreamer implements adapter.CompletionStreamer for local/dev runs.
// It echoes a canned reply word by word instead of calling a real provider.
type NoopStreamer struct{}

func NewNoopStreamer() *NoopStreamer { return &NoopStreamer{} }

func (a *NoopStreamer) Provider() string { return "noop" }

func (a *NoopStreamer) StreamChat(ctx context.Context, params adapter.ChatParams, messages []adapter.Message) adapter.CompletionStream {
	last := ""
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			last = messages[i].Content
			break
		}
	}
	reply := "I hear you. Tell me more about that."
	if last != "" {
		reply = "I hear you saying: " + last + ". Tell me more about that."
	}
	words := strings.Fields(reply)
	frags := make([]string, len(words))
	for i, w := range words {
		if i == 0 {
			frags[i] = w
		} else {
			frags[i] = " " + w
		}
	}
	return newTextStream(frags...)
}
