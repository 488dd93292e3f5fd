package usecase

import (
	"iter"
	"slices"

	"aomame/internal/domain"
)

// Plan partitions units into batches lazily, in input order.
//
// A unit joins the current batch while the cumulative size stays strictly
// below lim.MaxChars and the batch holds fewer than lim.MaxItems units.
// Otherwise the current batch is flushed and the unit starts a new one, so a
// unit that alone reaches MaxChars always ends up in a singleton batch.
func Plan(units []string, lim domain.Limits) iter.Seq[domain.Batch] {
	return func(yield func(domain.Batch) bool) {
		var (
			cur   []string
			chars int
			index int
		)
		for _, u := range units {
			size := domain.Size(u)
			if chars+size < lim.MaxChars && len(cur) < lim.MaxItems {
				cur = append(cur, u)
				chars += size
				continue
			}
			if len(cur) > 0 {
				if !yield(domain.Batch{Index: index, Units: cur, Chars: chars}) {
					return
				}
				index++
			}
			cur = []string{u}
			chars = size
		}
		if len(cur) > 0 {
			yield(domain.Batch{Index: index, Units: cur, Chars: chars})
		}
	}
}

// PlanAll collects Plan into a slice.
func PlanAll(units []string, lim domain.Limits) []domain.Batch {
	return slices.Collect(Plan(units, lim))
}
