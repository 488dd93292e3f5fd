package domain

import "unicode/utf8"

// Size returns the size of a text unit as used for batching decisions.
// Sizes are counted in characters (runes), not bytes.
func Size(unit string) int {
	return utf8.RuneCountInString(unit)
}

// Limits bounds a single remote request.
type Limits struct {
	// MaxChars is the exclusive upper bound on the cumulative size of a batch.
	MaxChars int `yaml:"max_chars"`
	// MaxItems is the inclusive upper bound on the number of units in a batch.
	MaxItems int `yaml:"max_items"`
	// HardCap is the absolute per-request size a single unit may not reach.
	// Units at or above it are split into sentences. Zero means MaxChars.
	HardCap int `yaml:"hard_cap"`
}

// Cap returns the effective hard per-request cap.
func (l Limits) Cap() int {
	if l.HardCap > 0 {
		return l.HardCap
	}
	return l.MaxChars
}

// Batch is an ordered group of text units sent in one remote request.
type Batch struct {
	Index int
	Units []string
	Chars int
}

// Count returns the number of units in the batch.
func (b Batch) Count() int {
	return len(b.Units)
}

// Oversized reports whether the batch is a single unit that reaches the hard cap.
func (b Batch) Oversized(l Limits) bool {
	return len(b.Units) == 1 && b.Chars >= l.Cap()
}

// Origin tells where a per-unit result came from.
type Origin int

const (
	// OriginBatch marks a result extracted from a batched remote response.
	OriginBatch Origin = iota
	// OriginSplit marks a result recombined locally from sentence pieces.
	OriginSplit
)

func (o Origin) String() string {
	switch o {
	case OriginBatch:
		return "batch"
	case OriginSplit:
		return "split"
	default:
		return "unknown"
	}
}

// UnitResult is the translation of one text unit.
type UnitResult struct {
	Text   string
	Origin Origin
	Pieces int // number of sentence pieces, set for OriginSplit
}

// Texts flattens results into plain translated strings.
func Texts(results []UnitResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Text
	}
	return out
}

// Language is a language supported by a provider.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name,omitempty"`
}

// Detection is a detected language with a confidence in [0,1].
// Providers that do not report confidence leave it at zero.
type Detection struct {
	Lang       string  `json:"lang"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Lemma pairs a surface token with its lemma.
type Lemma struct {
	Text  string `json:"text"`
	Lemma string `json:"lemma"`
}

// TaggedToken pairs a token with its part-of-speech tag.
type TaggedToken struct {
	Text string `json:"text"`
	POS  string `json:"pos"`
}
