package usecase

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"aomame/internal/domain"
	"aomame/internal/port"
)

// ProgressFunc is called after each batch with the number of units it held.
type ProgressFunc func(units int)

// AssemblerConfig tunes batch dispatch.
type AssemblerConfig struct {
	// Workers is the number of batches in flight. Values below 2 dispatch
	// sequentially.
	Workers  int
	Progress ProgressFunc
}

// Assembler sends planned batches to a provider and flattens the responses
// into one result per input unit.
type Assembler struct {
	translator port.Translator
	splitter   *Splitter
	workers    int
	progress   ProgressFunc
	logger     *zap.Logger
}

// NewAssembler creates an assembler.
func NewAssembler(translator port.Translator, splitter *Splitter, cfg AssemblerConfig, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{
		translator: translator,
		splitter:   splitter,
		workers:    cfg.Workers,
		progress:   cfg.Progress,
		logger:     logger,
	}
}

// Execute dispatches batches and returns the translated strings in input order.
func (a *Assembler) Execute(ctx context.Context, batches iter.Seq[domain.Batch], src, tgt string) ([]string, error) {
	results, err := a.ExecuteResults(ctx, batches, src, tgt)
	if err != nil {
		return nil, err
	}
	return domain.Texts(results), nil
}

// ExecuteResults is Execute keeping the origin of every result.
//
// The first failing batch aborts the whole operation and nothing collected
// so far is returned.
func (a *Assembler) ExecuteResults(ctx context.Context, batches iter.Seq[domain.Batch], src, tgt string) ([]domain.UnitResult, error) {
	var (
		results []domain.UnitResult
		want    int
		err     error
	)
	if a.workers > 1 {
		results, want, err = a.executeParallel(ctx, batches, src, tgt)
	} else {
		results, want, err = a.executeSequential(ctx, batches, src, tgt)
	}
	if err != nil {
		return nil, err
	}
	if len(results) != want {
		return nil, &domain.ConsistencyError{Stage: "assembly", Want: want, Got: len(results)}
	}
	return results, nil
}

func (a *Assembler) executeSequential(ctx context.Context, batches iter.Seq[domain.Batch], src, tgt string) ([]domain.UnitResult, int, error) {
	var (
		results []domain.UnitResult
		want    int
	)
	for b := range batches {
		want += b.Count()
		out, err := a.dispatch(ctx, b, src, tgt)
		if err != nil {
			return nil, want, err
		}
		results = append(results, out...)
		a.report(b.Count())
	}
	return results, want, nil
}

func (a *Assembler) executeParallel(ctx context.Context, batches iter.Seq[domain.Batch], src, tgt string) ([]domain.UnitResult, int, error) {
	all := slices.Collect(batches)
	slots := make([][]domain.UnitResult, len(all))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	want := 0
	for i, b := range all {
		want += b.Count()
		g.Go(func() error {
			out, err := a.dispatch(gctx, b, src, tgt)
			if err != nil {
				return err
			}
			slots[i] = out
			mu.Lock()
			a.report(b.Count())
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, want, err
	}

	results := make([]domain.UnitResult, 0, want)
	for _, out := range slots {
		results = append(results, out...)
	}
	return results, want, nil
}

func (a *Assembler) dispatch(ctx context.Context, b domain.Batch, src, tgt string) ([]domain.UnitResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if b.Oversized(a.translator.Limits()) {
		r, err := a.splitter.TranslateOversized(ctx, b.Units[0], src, tgt)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", b.Index, err)
		}
		return []domain.UnitResult{r}, nil
	}

	a.logger.Debug("Dispatching batch",
		zap.String("provider", a.translator.Name()),
		zap.Int("batch", b.Index),
		zap.Int("units", b.Count()),
		zap.Int("chars", b.Chars),
	)

	out, err := a.translator.Translate(ctx, b.Units, src, tgt)
	if err != nil {
		return nil, fmt.Errorf("batch %d: %w", b.Index, err)
	}
	if len(out) != b.Count() {
		return nil, &domain.ConsistencyError{Stage: fmt.Sprintf("batch %d", b.Index), Want: b.Count(), Got: len(out)}
	}

	results := make([]domain.UnitResult, len(out))
	for i, t := range out {
		results[i] = domain.UnitResult{Text: t, Origin: domain.OriginBatch}
	}
	return results, nil
}

func (a *Assembler) report(units int) {
	if a.progress != nil {
		a.progress(units)
	}
}
