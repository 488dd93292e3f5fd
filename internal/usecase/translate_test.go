package usecase

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aomame/internal/adapter/provider"
	"aomame/internal/domain"
)

func TestTranslateLines(t *testing.T) {
	tr := newFakeTranslator(domain.Limits{MaxChars: 10, MaxItems: 2})
	uc := NewTranslateUseCase(tr, nil, TranslateConfig{Retry: fastRetry(2)}, nil)

	out, err := uc.TranslateLines(context.Background(), []string{"one", "two", "three", ""}, "en", "fr")

	require.NoError(t, err)
	assert.Equal(t, []string{"T:one", "T:two", "T:three", "T:"}, out)
}

func TestTranslateLinesEmpty(t *testing.T) {
	tr := newFakeTranslator(domain.Limits{MaxChars: 10, MaxItems: 2})
	uc := NewTranslateUseCase(tr, nil, TranslateConfig{}, nil)

	out, err := uc.TranslateLines(context.Background(), nil, "en", "fr")

	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
	assert.Zero(t, tr.callCount())
}

func TestTranslateLinesInvalidLimits(t *testing.T) {
	tr := newFakeTranslator(domain.Limits{MaxChars: 0, MaxItems: 2})
	uc := NewTranslateUseCase(tr, nil, TranslateConfig{}, nil)

	_, err := uc.TranslateLines(context.Background(), []string{"a"}, "en", "fr")

	assert.ErrorIs(t, err, ErrInvalidLimits)
}

func TestTranslateRejectsHardCapBelowSizeLimit(t *testing.T) {
	tr := newFakeTranslator(domain.Limits{MaxChars: 5000, MaxItems: 100, HardCap: 500})
	seg := &fakeSegmenter{pieces: []string{"x"}}
	uc := NewTranslateUseCase(tr, seg, TranslateConfig{}, nil)
	long := strings.Repeat("a", 600)

	out, err := uc.TranslateLines(context.Background(), []string{"a", long}, "en", "fr")

	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrInvalidLimits)
	assert.Contains(t, err.Error(), "hard_cap 500 is below max_chars 5000")
	assert.Zero(t, tr.callCount())
	assert.Zero(t, seg.calls)

	_, err = uc.TranslateText(context.Background(), long, "en", "fr")
	assert.ErrorIs(t, err, ErrInvalidLimits)
	assert.Zero(t, tr.callCount())
}

func TestTranslateAcceptsHardCapAboveSizeLimit(t *testing.T) {
	tr := newFakeTranslator(domain.Limits{MaxChars: 10, MaxItems: 5, HardCap: 20})
	uc := NewTranslateUseCase(tr, nil, TranslateConfig{}, nil)

	out, err := uc.TranslateLines(context.Background(), []string{"a", "b"}, "en", "fr")

	require.NoError(t, err)
	assert.Equal(t, []string{"T:a", "T:b"}, out)
}

func TestTranslateLinesLargeInputSplitsIntoBatches(t *testing.T) {
	tr := newFakeTranslator(domain.Limits{MaxChars: 1000, MaxItems: 100})
	uc := NewTranslateUseCase(tr, nil, TranslateConfig{Workers: 2}, nil)
	lines := slices.Repeat([]string{"a"}, 150)

	out, err := uc.TranslateLines(context.Background(), lines, "en", "fr")

	require.NoError(t, err)
	assert.Len(t, out, 150)
	assert.Equal(t, 2, tr.callCount())
}

func TestTranslateTextRetries(t *testing.T) {
	tr := newFakeTranslator(domain.Limits{MaxChars: 100, MaxItems: 10})
	tr.fn = func(call int, units []string) ([]string, error) {
		if call < 2 {
			return nil, &domain.TransientError{Op: "fake", Err: errors.New("reset")}
		}
		return prefixed(units), nil
	}
	uc := NewTranslateUseCase(tr, nil, TranslateConfig{Retry: fastRetry(10)}, nil)

	out, err := uc.TranslateText(context.Background(), "hello", "en", "fr")

	require.NoError(t, err)
	assert.Equal(t, "T:hello", out)
	assert.Equal(t, 3, tr.callCount())
}

func TestTranslateTextOversized(t *testing.T) {
	tr := newFakeTranslator(domain.Limits{MaxChars: 8, MaxItems: 10})
	seg := &fakeSegmenter{pieces: []string{"Hello. ", "World."}}
	uc := NewTranslateUseCase(tr, seg, TranslateConfig{Retry: fastRetry(1)}, nil)

	out, err := uc.TranslateText(context.Background(), "Hello. World.", "en", "fr")

	require.NoError(t, err)
	assert.Equal(t, "T:Hello. T:World.", out)
}

func TestTranslateLinesWithMockProvider(t *testing.T) {
	m := provider.NewMock("", domain.Limits{MaxChars: 30, MaxItems: 10})
	uc := NewTranslateUseCase(m, provider.SegmenterFor(m), TranslateConfig{Retry: fastRetry(1)}, nil)
	lines := []string{"Short line.", "This is one sentence. And here is another.", ""}

	out, err := uc.TranslateLines(context.Background(), lines, "en", "fr")

	require.NoError(t, err)
	assert.Equal(t, []string{
		"[MOCK:fr] Short line.",
		"[MOCK:fr] This is one sentence. [MOCK:fr] And here is another.",
		"",
	}, out)
}

func TestTranslateLinesMockBatchFailure(t *testing.T) {
	m := provider.NewMock("", domain.Limits{MaxChars: 100, MaxItems: 2})
	m.Fail = func(call int64, _ []string) error {
		if call == 2 {
			return &domain.ResponseError{Provider: provider.ProviderMock, Status: 500, Payload: []byte(`{"message":"boom"}`)}
		}
		return nil
	}
	uc := NewTranslateUseCase(m, nil, TranslateConfig{}, nil)

	out, err := uc.TranslateLines(context.Background(), []string{"a", "b", "c", "d", "e", "f"}, "en", "fr")

	assert.Nil(t, out)
	var re *domain.ResponseError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "boom", re.Message())
	assert.Equal(t, int64(2), m.Calls())
}
