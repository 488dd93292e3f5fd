package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"aomame/internal/domain"
	"aomame/internal/port"
)

// ErrInvalidLimits is returned when a provider reports unusable batch limits.
var ErrInvalidLimits = errors.New("invalid batch limits")

// TranslateConfig holds the tunables of a translation run.
type TranslateConfig struct {
	Retry    RetryPolicy
	Workers  int
	Progress ProgressFunc
}

// TranslateUseCase translates ordered lines through one provider.
type TranslateUseCase struct {
	translator port.Translator
	splitter   *Splitter
	assembler  *Assembler
	logger     *zap.Logger
}

// NewTranslateUseCase wires the planner, splitter and assembler around a
// provider. segmenter may be nil.
func NewTranslateUseCase(translator port.Translator, segmenter port.SentenceSegmenter, cfg TranslateConfig, logger *zap.Logger) *TranslateUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	splitter := NewSplitter(translator, segmenter, cfg.Retry, logger)
	assembler := NewAssembler(translator, splitter, AssemblerConfig{
		Workers:  cfg.Workers,
		Progress: cfg.Progress,
	}, logger)

	return &TranslateUseCase{
		translator: translator,
		splitter:   splitter,
		assembler:  assembler,
		logger:     logger,
	}
}

// TranslateLines translates lines from src to tgt and returns one translated
// line per input line, in input order.
func (u *TranslateUseCase) TranslateLines(ctx context.Context, lines []string, src, tgt string) ([]string, error) {
	lim := u.translator.Limits()
	if err := checkLimits(lim); err != nil {
		return nil, fmt.Errorf("%s: %w", u.translator.Name(), err)
	}
	if len(lines) == 0 {
		return []string{}, nil
	}

	out, err := u.assembler.Execute(ctx, Plan(lines, lim), src, tgt)
	if err != nil {
		return nil, err
	}
	u.logger.Debug("Translated lines",
		zap.String("provider", u.translator.Name()),
		zap.Int("lines", len(lines)),
	)
	return out, nil
}

// TranslateText translates a single text through the retried single-unit
// path, splitting it into sentences when it reaches the provider's cap.
func (u *TranslateUseCase) TranslateText(ctx context.Context, text, src, tgt string) (string, error) {
	lim := u.translator.Limits()
	if err := checkLimits(lim); err != nil {
		return "", fmt.Errorf("%s: %w", u.translator.Name(), err)
	}
	if domain.Size(text) >= lim.Cap() {
		r, err := u.splitter.TranslateOversized(ctx, text, src, tgt)
		if err != nil {
			return "", err
		}
		return r.Text, nil
	}
	return u.splitter.TranslateOne(ctx, text, src, tgt)
}

// checkLimits rejects limits the planner cannot honor. A hard cap below the
// size limit would let a unit over the cap ride along in a multi-unit batch.
func checkLimits(lim domain.Limits) error {
	if lim.MaxChars <= 0 || lim.MaxItems <= 0 {
		return fmt.Errorf("%w: max_chars and max_items must be positive", ErrInvalidLimits)
	}
	if lim.HardCap < 0 || (lim.HardCap > 0 && lim.HardCap < lim.MaxChars) {
		return fmt.Errorf("%w: hard_cap %d is below max_chars %d", ErrInvalidLimits, lim.HardCap, lim.MaxChars)
	}
	return nil
}
