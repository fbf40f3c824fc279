package ai

import "mindful-chat/internal/domain/ports/adapter"

var _ adapter.CompletionStream = (*textStream)(nil)

// textStream replays a fixed fragment sequence. Used for the error fallback
// and by the noop adapter.
type textStream struct {
	frags []string
	i     int
}

func newTextStream(frags ...string) *textStream {
	return &textStream{frags: frags}
}

// newFallbackStream contains a remote failure as the single user-visible
// fallback fragment.
func newFallbackStream() *textStream {
	return newTextStream(adapter.FallbackReply)
}

func (s *textStream) Next() bool {
	if s.i >= len(s.frags) {
		return false
	}
	s.i++
	return true
}

func (s *textStream) Current() string {
	if s.i == 0 || s.i > len(s.frags) {
		return ""
	}
	return s.frags[s.i-1]
}

func (s *textStream) Err() error   { return nil }
func (s *textStream) Close() error { return nil }
