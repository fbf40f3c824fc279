package adapter

import "context"

// Message represents a chat message on the wire.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// FallbackReply is the single fragment a stream yields when the remote call
// fails at any point. Callers treat it as the whole response.
const FallbackReply = "Sorry, I encountered an error."

// ChatParams carries generation settings. Optional fields are pointers and
// each is presence-checked independently before inclusion in the outbound
// request. RepetitionPenalty is accepted but not forwarded by any current
// provider; it is dropped from the wire request rather than erroring.
type ChatParams struct {
	Model             string
	Temperature       *float64
	MaxTokens         *int64
	TopP              *float64
	RepetitionPenalty *float64
}

// CompletionStream is a finite, single-pass sequence of text fragments.
// Consumers drive pacing by pulling; abandoning the stream just requires
// Close. Err is nil even after a remote failure: the failure is contained
// as the FallbackReply fragment.
type CompletionStream interface {
	Next() bool
	Current() string
	Err() error
	Close() error
}

// CompletionStreamer is the port for streaming LLM chat completions.
type CompletionStreamer interface {
	// StreamChat issues the streaming request. Re-invoking issues a new
	// remote request; streams are not restartable.
	StreamChat(ctx context.Context, params ChatParams, messages []Message) CompletionStream

	// Provider names the backing service for logs and metrics labels.
	Provider() string
}
