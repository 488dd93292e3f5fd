package port

import (
	"context"
	"encoding/json"

	"aomame/internal/domain"
)

// Analyzer exposes single-document linguistic annotations.
type Analyzer interface {
	Lemmatize(ctx context.Context, text, lang string) ([]domain.Lemma, error)
	POS(ctx context.Context, text, lang string) ([]domain.TaggedToken, error)
	// PosTag tags text that is already split into tokens.
	PosTag(ctx context.Context, tokens []string, lang string) ([]domain.TaggedToken, error)
	WordTokenize(ctx context.Context, text, lang string) ([]string, error)
	SentTokenize(ctx context.Context, text, lang string) ([]string, error)
	DocTokenize(ctx context.Context, text, lang string) ([][]string, error)
	NER(ctx context.Context, text, lang string) (json.RawMessage, error)
}

// Transliterator converts text between scripts of one language.
type Transliterator interface {
	Transliterate(ctx context.Context, text, lang, fromScript, toScript string) (string, error)
	Scripts(ctx context.Context) (map[string]string, error)
}

// Transcriber turns recorded speech into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, lang string) (string, error)
}
