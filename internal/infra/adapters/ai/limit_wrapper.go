package ai

import (
	"context"
	"sync"

	"mindful-chat/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.CompletionStreamer = (*limitedStreamer)(nil)

type limitedStreamer struct {
	inner adapter.CompletionStreamer
	sem   chan struct{}
}

// NewLimitedStreamer caps the number of concurrently open completion
// streams. The slot is held for the lifetime of the stream and released
// when the stream is exhausted or closed.
func NewLimitedStreamer(inner adapter.CompletionStreamer, maxConcurrent int) adapter.CompletionStreamer {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedStreamer{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedStreamer) Provider() string { return l.inner.Provider() }

func (l *limitedStreamer) StreamChat(ctx context.Context, params adapter.ChatParams, messages []adapter.Message) adapter.CompletionStream {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return newFallbackStream()
	}
	return &limitedStream{
		CompletionStream: l.inner.StreamChat(ctx, params, messages),
		release:          func() { <-l.sem },
	}
}

type limitedStream struct {
	adapter.CompletionStream
	once    sync.Once
	release func()
}

func (s *limitedStream) Next() bool {
	ok := s.CompletionStream.Next()
	if !ok {
		s.once.Do(s.release)
	}
	return ok
}

func (s *limitedStream) Close() error {
	err := s.CompletionStream.Close()
	s.once.Do(s.release)
	return err
}
