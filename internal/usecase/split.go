package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"aomame/internal/domain"
	"aomame/internal/port"
)

// ErrPieceOversized is returned when a sentence piece of an oversized unit
// still reaches the provider's hard cap. Pieces are not split recursively.
var ErrPieceOversized = errors.New("sentence piece exceeds per-request cap")

// Splitter translates single units, including units too large for one
// request, through the retried single-unit path.
type Splitter struct {
	translator port.Translator
	segmenter  port.SentenceSegmenter
	retry      RetryPolicy
	logger     *zap.Logger
}

// NewSplitter creates a splitter. segmenter may be nil, in which case
// oversized units fail.
func NewSplitter(translator port.Translator, segmenter port.SentenceSegmenter, retry RetryPolicy, logger *zap.Logger) *Splitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Splitter{
		translator: translator,
		segmenter:  segmenter,
		retry:      retry,
		logger:     logger,
	}
}

// TranslateOne translates one unit with retries.
func (s *Splitter) TranslateOne(ctx context.Context, unit, src, tgt string) (string, error) {
	return Retry(ctx, s.retry, s.logger, func(ctx context.Context) (string, error) {
		out, err := s.translator.Translate(ctx, []string{unit}, src, tgt)
		if err != nil {
			return "", err
		}
		if len(out) != 1 {
			return "", &domain.ConsistencyError{Stage: "single-unit translate", Want: 1, Got: len(out)}
		}
		return out[0], nil
	})
}

// TranslateOversized segments unit into sentences, translates each piece on
// its own and concatenates the translations in order with no separator.
func (s *Splitter) TranslateOversized(ctx context.Context, unit, src, tgt string) (domain.UnitResult, error) {
	if s.segmenter == nil {
		return domain.UnitResult{}, fmt.Errorf("unit of %d chars exceeds the %s request cap and no sentence segmenter is configured",
			domain.Size(unit), s.translator.Name())
	}

	pieces, err := s.segmenter.SegmentSentences(ctx, unit, src)
	if err != nil {
		return domain.UnitResult{}, fmt.Errorf("segment oversized unit: %w", err)
	}
	if joined := strings.Join(pieces, ""); joined != unit {
		return domain.UnitResult{}, &domain.ConsistencyError{
			Stage: "sentence segmentation",
			Want:  domain.Size(unit),
			Got:   domain.Size(joined),
		}
	}

	s.logger.Info("Splitting oversized unit",
		zap.Int("chars", domain.Size(unit)),
		zap.Int("pieces", len(pieces)),
	)

	limit := s.translator.Limits().Cap()
	var b strings.Builder
	for i, piece := range pieces {
		if strings.TrimSpace(piece) == "" {
			b.WriteString(piece)
			continue
		}
		if limit > 0 && domain.Size(piece) >= limit {
			return domain.UnitResult{}, fmt.Errorf("piece %d (%d chars): %w", i, domain.Size(piece), ErrPieceOversized)
		}
		out, err := s.TranslateOne(ctx, piece, src, tgt)
		if err != nil {
			return domain.UnitResult{}, fmt.Errorf("translate piece %d of oversized unit: %w", i, err)
		}
		b.WriteString(out)
	}

	return domain.UnitResult{Text: b.String(), Origin: domain.OriginSplit, Pieces: len(pieces)}, nil
}
