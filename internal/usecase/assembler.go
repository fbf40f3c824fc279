package usecase

import (
	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"

	"mindful-chat/internal/domain/model"
	"mindful-chat/internal/domain/ports/adapter"
)

// PromptAssembler turns a persona, a memory window, and the new user text
// into the ordered message sequence sent to the provider: one system turn,
// the window oldest-first, then the user turn.
type PromptAssembler struct {
	enc *tiktoken.Tiktoken
	log *zerolog.Logger
}

func NewPromptAssembler(logger *zerolog.Logger) *PromptAssembler {
	l := logger.With().Str("component", "PromptAssembler").Logger()
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		// Token counts fall back to a byte heuristic.
		l.Warn().Err(err).Msg("tiktoken encoding unavailable")
		enc = nil
	}
	return &PromptAssembler{enc: enc, log: &l}
}

// historyInstruction is fixed: it is appended to every system turn, with or
// without retained exchanges, so prompts keep a stable shape.
const historyInstruction = "\n\nYou have access to the conversation history and should use it to maintain context."

func (a *PromptAssembler) BuildMessages(personaPrompt string, window []model.MemoryEntry, userText string) []adapter.Message {
	msgs := make([]adapter.Message, 0, len(window)+2)
	msgs = append(msgs, adapter.Message{Role: "system", Content: personaPrompt + historyInstruction})
	for _, e := range window {
		msgs = append(msgs, adapter.Message{Role: string(e.Role), Content: e.Content})
	}
	msgs = append(msgs, adapter.Message{Role: "user", Content: userText})
	return msgs
}

// EstimatePromptTokens is advisory only; it feeds metrics, never gating.
func (a *PromptAssembler) EstimatePromptTokens(messages []adapter.Message) int {
	total := 0
	for _, m := range messages {
		if a.enc != nil {
			total += len(a.enc.Encode(m.Content, nil, nil)) + 4 // per-message framing overhead
		} else {
			total += len(m.Content)/4 + 4
		}
	}
	return total
}
