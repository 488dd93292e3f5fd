package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"aomame/internal/domain"
)

// SystranHost is the default RapidAPI host of the Systran platform.
const SystranHost = "systran-systran-platform-for-language-processing-v1.p.rapidapi.com"

// SystranLimits are the limits of the GET translate endpoint, which carries
// every unit in the query string.
func SystranLimits() domain.Limits {
	return domain.Limits{MaxChars: 1000, MaxItems: 10, HardCap: 1000}
}

const (
	systranLemmatize = "nlp/morphology/extract/lemma"
	systranPOS       = "nlp/morphology/extract/pos"
	systranLangID    = "nlp/lid/detectLanguage/document"
	systranNER       = "nlp/ner/extract/annotations"
	systranTokenize  = "nlp/segmentation/segmentAndTokenize"
	systranTranslate = "translation/text/translate"
	systranLanguages = "translation/supportedLanguages"
)

// Systran is an adapter for the Systran translation and NLP API.
type Systran struct {
	client  *apiClient
	baseURL string
	host    string
	key     string
	limits  domain.Limits
}

// NewSystran creates a Systran adapter.
func NewSystran(o Options) *Systran {
	host := o.Host
	if host == "" {
		host = SystranHost
	}
	return &Systran{
		client:  newAPIClient(ProviderSystran, o),
		baseURL: o.baseURL(SystranHost),
		host:    host,
		key:     o.APIKey,
		limits:  o.limits(SystranLimits()),
	}
}

func (s *Systran) Name() string { return ProviderSystran }

func (s *Systran) Limits() domain.Limits { return s.limits }

func (s *Systran) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	h := http.Header{}
	h.Set("x-rapidapi-host", s.host)
	h.Set("x-rapidapi-key", s.key)
	return s.client.call(ctx, http.MethodGet, s.baseURL+"/"+path+"?"+query.Encode(), h, nil)
}

func (s *Systran) nlp(ctx context.Context, path, text, lang string) (gjson.Result, error) {
	query := url.Values{"input": {text}}
	if lang != "" {
		query.Set("lang", lang)
	}
	data, err := s.get(ctx, path, query)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, s.client.shapeError("invalid JSON from %s", path)
	}
	return gjson.ParseBytes(data), nil
}

// Translate translates units in one request, one input parameter per unit.
// An error reported on any single output fails the whole batch.
func (s *Systran) Translate(ctx context.Context, units []string, src, tgt string) ([]string, error) {
	if len(units) == 0 {
		return []string{}, nil
	}
	query := url.Values{"target": {tgt}, "input": units}
	if src != "" {
		query.Set("source", src)
	}
	data, err := s.get(ctx, systranTranslate, query)
	if err != nil {
		return nil, err
	}

	outputs := gjson.GetBytes(data, "outputs")
	if !outputs.IsArray() {
		return nil, s.client.shapeError("missing outputs")
	}
	var out []string
	for _, o := range outputs.Array() {
		if e := o.Get("error"); e.Exists() {
			return nil, &domain.ResponseError{
				Provider: ProviderSystran,
				Status:   http.StatusOK,
				Payload:  json.RawMessage(o.Raw),
			}
		}
		out = append(out, o.Get("output").String())
	}
	return out, nil
}

// Languages lists the supported target languages.
func (s *Systran) Languages(ctx context.Context) ([]domain.Language, error) {
	data, err := s.get(ctx, systranLanguages, url.Values{})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var langs []domain.Language
	gjson.GetBytes(data, "languagePairs").ForEach(func(_, p gjson.Result) bool {
		code := p.Get("target").String()
		if code != "" && !seen[code] {
			seen[code] = true
			langs = append(langs, domain.Language{Code: code})
		}
		return true
	})
	return langs, nil
}

// Detect identifies the language of a document.
func (s *Systran) Detect(ctx context.Context, text string) ([]domain.Detection, error) {
	res, err := s.nlp(ctx, systranLangID, text, "")
	if err != nil {
		return nil, err
	}
	var dets []domain.Detection
	res.Get("detectedLanguages").ForEach(func(_, l gjson.Result) bool {
		dets = append(dets, domain.Detection{Lang: l.Get("lang").String(), Confidence: l.Get("confidence").Float()})
		return true
	})
	return dets, nil
}

// Lemmatize returns each token with its lemma.
func (s *Systran) Lemmatize(ctx context.Context, text, lang string) ([]domain.Lemma, error) {
	res, err := s.nlp(ctx, systranLemmatize, text, lang)
	if err != nil {
		return nil, err
	}
	var lemmas []domain.Lemma
	res.Get("lemmas").ForEach(func(_, t gjson.Result) bool {
		lemmas = append(lemmas, domain.Lemma{Text: t.Get("text").String(), Lemma: t.Get("lemma").String()})
		return true
	})
	return lemmas, nil
}

// POS tags each token of text with its part of speech.
func (s *Systran) POS(ctx context.Context, text, lang string) ([]domain.TaggedToken, error) {
	res, err := s.nlp(ctx, systranPOS, text, lang)
	if err != nil {
		return nil, err
	}
	var tags []domain.TaggedToken
	res.Get("partsOfSpeech").ForEach(func(_, t gjson.Result) bool {
		tags = append(tags, domain.TaggedToken{Text: t.Get("text").String(), POS: t.Get("pos").String()})
		return true
	})
	return tags, nil
}

// PosTag tags already tokenized text.
func (s *Systran) PosTag(ctx context.Context, tokens []string, lang string) ([]domain.TaggedToken, error) {
	return s.POS(ctx, strings.Join(tokens, " "), lang)
}

// NER returns the raw named-entity annotations.
func (s *Systran) NER(ctx context.Context, text, lang string) (json.RawMessage, error) {
	res, err := s.nlp(ctx, systranNER, text, lang)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(res.Raw), nil
}

func (s *Systran) segments(ctx context.Context, text, lang string) ([]gjson.Result, error) {
	res, err := s.nlp(ctx, systranTokenize, text, lang)
	if err != nil {
		return nil, err
	}
	segs := res.Get("segments")
	if !segs.IsArray() {
		return nil, s.client.shapeError("missing segments")
	}
	return segs.Array(), nil
}

// WordTokenize returns the tokens of text without separators.
func (s *Systran) WordTokenize(ctx context.Context, text, lang string) ([]string, error) {
	doc, err := s.DocTokenize(ctx, text, lang)
	if err != nil {
		return nil, err
	}
	var words []string
	for _, sent := range doc {
		words = append(words, sent...)
	}
	return words, nil
}

// SentTokenize returns the source text of each segment.
func (s *Systran) SentTokenize(ctx context.Context, text, lang string) ([]string, error) {
	segs, err := s.segments(ctx, text, lang)
	if err != nil {
		return nil, err
	}
	sents := make([]string, 0, len(segs))
	for _, seg := range segs {
		sents = append(sents, seg.Get("source").String())
	}
	return sents, nil
}

// DocTokenize returns the tokens of each segment without separators.
func (s *Systran) DocTokenize(ctx context.Context, text, lang string) ([][]string, error) {
	segs, err := s.segments(ctx, text, lang)
	if err != nil {
		return nil, err
	}
	doc := make([][]string, 0, len(segs))
	for _, seg := range segs {
		var toks []string
		seg.Get("tokens").ForEach(func(_, t gjson.Result) bool {
			if t.Get("type").String() != "separator" {
				toks = append(toks, t.Get("source").String())
			}
			return true
		})
		doc = append(doc, toks)
	}
	return doc, nil
}

// SegmentSentences splits text into sentences. Segments returned by the
// service drop inter-sentence whitespace, so they are realigned onto text.
func (s *Systran) SegmentSentences(ctx context.Context, text, lang string) ([]string, error) {
	sents, err := s.SentTokenize(ctx, text, lang)
	if err != nil {
		return nil, err
	}
	pieces, ok := realign(text, sents)
	if !ok {
		return nil, s.client.shapeError("segments do not match the source text")
	}
	return pieces, nil
}

// realign locates each sentence in text in order and returns contiguous
// pieces covering text exactly. Text between two sentences is attached to the
// earlier one; leading text is attached to the first.
func realign(text string, sents []string) ([]string, bool) {
	var pieces []string
	pos := 0
	for _, sent := range sents {
		if sent == "" {
			continue
		}
		idx := strings.Index(text[pos:], sent)
		if idx < 0 {
			return nil, false
		}
		start := pos + idx
		if len(pieces) == 0 {
			start = 0
		} else {
			pieces[len(pieces)-1] += text[pos:start]
		}
		end := pos + idx + len(sent)
		pieces = append(pieces, text[start:end])
		pos = end
	}
	if len(pieces) == 0 {
		if text == "" {
			return nil, true
		}
		return []string{text}, true
	}
	pieces[len(pieces)-1] += text[pos:]
	return pieces, true
}
