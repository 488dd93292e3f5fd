package provider

import (
	"context"
	"strings"
	"sync/atomic"

	"aomame/internal/adapter/segmenter"
	"aomame/internal/domain"
)

// Mock is an offline provider that prefixes every unit. It is used by the
// "mock" API and in tests.
type Mock struct {
	prefix string
	limits domain.Limits
	calls  atomic.Int64

	// Fail, when set, is consulted before every Translate call with the
	// 1-based call number. A non-nil error fails that call.
	Fail func(call int64, units []string) error
}

// NewMock creates a mock provider. Zero limits fall back to the Google ones.
func NewMock(prefix string, limits domain.Limits) *Mock {
	if prefix == "" {
		prefix = "MOCK"
	}
	return &Mock{prefix: prefix, limits: Options{Limits: limits}.limits(GoogleLimits())}
}

func (m *Mock) Name() string { return ProviderMock }

func (m *Mock) Limits() domain.Limits { return m.limits }

// Calls returns the number of Translate requests served.
func (m *Mock) Calls() int64 { return m.calls.Load() }

func (m *Mock) Translate(ctx context.Context, units []string, src, tgt string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	call := m.calls.Add(1)
	if m.Fail != nil {
		if err := m.Fail(call, units); err != nil {
			return nil, err
		}
	}
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = m.render(u, tgt)
	}
	return out, nil
}

// render keeps surrounding whitespace in place so split translations
// concatenate the same way the source does.
func (m *Mock) render(unit, tgt string) string {
	core := strings.TrimSpace(unit)
	if core == "" {
		return unit
	}
	i := strings.Index(unit, core)
	return unit[:i] + "[" + m.prefix + ":" + tgt + "] " + core + unit[i+len(core):]
}

func (m *Mock) SegmentSentences(_ context.Context, text, _ string) ([]string, error) {
	return segmenter.Split(text), nil
}

func (m *Mock) Languages(context.Context) ([]domain.Language, error) {
	return []domain.Language{{Code: "de", Name: "German"}, {Code: "en", Name: "English"}, {Code: "fr", Name: "French"}}, nil
}

func (m *Mock) Detect(_ context.Context, text string) ([]domain.Detection, error) {
	return []domain.Detection{{Lang: "en", Confidence: 1}}, nil
}
