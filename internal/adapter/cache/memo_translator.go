package cache

import (
	"context"

	"go.uber.org/zap"

	"aomame/internal/domain"
	"aomame/internal/port"
)

// MemoTranslator serves repeated units from a translation memory and only
// sends the misses to the wrapped provider.
type MemoTranslator struct {
	translator port.Translator
	memory     port.TranslationMemory
	logger     *zap.Logger
}

func NewMemoTranslator(translator port.Translator, memory port.TranslationMemory, logger *zap.Logger) *MemoTranslator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoTranslator{
		translator: translator,
		memory:     memory,
		logger:     logger,
	}
}

func (t *MemoTranslator) Name() string { return t.translator.Name() }

func (t *MemoTranslator) Limits() domain.Limits { return t.translator.Limits() }

// Translate keeps the provider contract: one result per unit, in order.
func (t *MemoTranslator) Translate(ctx context.Context, units []string, src, tgt string) ([]string, error) {
	hits, err := t.memory.Lookup(t.Name(), src, tgt, units)
	if err != nil {
		t.logger.Warn("Translation memory lookup failed", zap.Error(err))
		hits = nil
	}

	if len(hits) == len(units) {
		t.logger.Debug("Translation memory hit", zap.Int("units", len(units)))
		out := make([]string, len(units))
		for i := range units {
			out[i] = hits[i]
		}
		return out, nil
	}

	var (
		missUnits []string
		missIdx   []int
	)
	for i, u := range units {
		if _, ok := hits[i]; !ok {
			missUnits = append(missUnits, u)
			missIdx = append(missIdx, i)
		}
	}

	translated, err := t.translator.Translate(ctx, missUnits, src, tgt)
	if err != nil {
		return nil, err
	}
	if len(translated) != len(missUnits) {
		return nil, &domain.ConsistencyError{Stage: "memo translate", Want: len(missUnits), Got: len(translated)}
	}

	if err := t.memory.Store(t.Name(), src, tgt, missUnits, translated); err != nil {
		t.logger.Warn("Translation memory store failed", zap.Error(err))
	}

	out := make([]string, len(units))
	for i, text := range hits {
		out[i] = text
	}
	for j, i := range missIdx {
		out[i] = translated[j]
	}
	t.logger.Debug("Translation memory partial hit",
		zap.Int("hits", len(hits)),
		zap.Int("misses", len(missUnits)),
	)
	return out, nil
}
