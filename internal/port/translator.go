package port

import (
	"context"
	"time"

	"aomame/internal/domain"
)

// Translator translates a batch of text units in one remote request.
// It returns exactly one result per unit, in submission order, or an error
// and no results.
type Translator interface {
	Translate(ctx context.Context, units []string, src, tgt string) ([]string, error)

	// Name identifies the provider, e.g. in errors and memory keys.
	Name() string

	// Limits returns the provider's request limits.
	Limits() domain.Limits
}

// SentenceSegmenter splits a text into sentence-like pieces whose
// concatenation is exactly the original text.
type SentenceSegmenter interface {
	SegmentSentences(ctx context.Context, text, lang string) ([]string, error)
}

// LanguageLister lists the languages a provider can translate.
type LanguageLister interface {
	Languages(ctx context.Context) ([]domain.Language, error)
}

// LanguageDetector identifies the language of a document.
type LanguageDetector interface {
	Detect(ctx context.Context, text string) ([]domain.Detection, error)
}

// TranslationMemory persists translations keyed by provider, language pair
// and source text.
type TranslationMemory interface {
	// Lookup returns the stored translations of units, keyed by unit index.
	Lookup(provider, src, tgt string, units []string) (map[int]string, error)

	// Store records translations[i] as the translation of units[i].
	Store(provider, src, tgt string, units, translations []string) error
}

// LanguageStore keeps fetched language lists between runs.
type LanguageStore interface {
	// LoadLanguages returns the list saved under key, or nil when none is.
	LoadLanguages(key string) ([]domain.Language, time.Time, error)

	SaveLanguages(key string, langs []domain.Language, fetched time.Time) error
}
