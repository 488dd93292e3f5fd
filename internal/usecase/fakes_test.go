package usecase

import (
	"context"
	"sync"

	"aomame/internal/domain"
)

// fakeTranslator prefixes units with "T:" unless fn overrides the response.
type fakeTranslator struct {
	mu     sync.Mutex
	limits domain.Limits
	calls  [][]string
	fn     func(call int, units []string) ([]string, error)
}

func newFakeTranslator(limits domain.Limits) *fakeTranslator {
	return &fakeTranslator{limits: limits}
}

func (f *fakeTranslator) Name() string { return "fake" }

func (f *fakeTranslator) Limits() domain.Limits { return f.limits }

func (f *fakeTranslator) Translate(_ context.Context, units []string, _, _ string) ([]string, error) {
	f.mu.Lock()
	call := len(f.calls)
	f.calls = append(f.calls, append([]string(nil), units...))
	fn := f.fn
	f.mu.Unlock()

	if fn != nil {
		return fn(call, units)
	}
	return prefixed(units), nil
}

func (f *fakeTranslator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func prefixed(units []string) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = "T:" + u
	}
	return out
}

type fakeSegmenter struct {
	pieces []string
	err    error
	calls  int
}

func (s *fakeSegmenter) SegmentSentences(context.Context, string, string) ([]string, error) {
	s.calls++
	return s.pieces, s.err
}
