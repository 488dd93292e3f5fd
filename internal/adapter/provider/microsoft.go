package provider

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"aomame/internal/domain"
)

// MicrosoftHost is the default Translator v3 host.
const MicrosoftHost = "api.cognitive.microsofttranslator.com"

// MicrosoftLimits are the per-request limits used for the v3 translate endpoint.
func MicrosoftLimits() domain.Limits {
	return domain.Limits{MaxChars: 5000, MaxItems: 100, HardCap: 5000}
}

// Microsoft is an adapter for the Azure Translator v3 API.
type Microsoft struct {
	client  *apiClient
	baseURL string
	key     string
	region  string
	limits  domain.Limits
}

type msText struct {
	Text string `json:"Text"`
}

type msTranslation struct {
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

// NewMicrosoft creates a Microsoft adapter. Language and script lists are
// fetched on demand, never at construction.
func NewMicrosoft(o Options) *Microsoft {
	return &Microsoft{
		client:  newAPIClient(ProviderMicrosoft, o),
		baseURL: o.baseURL(MicrosoftHost),
		key:     o.APIKey,
		region:  o.Region,
		limits:  o.limits(MicrosoftLimits()),
	}
}

func (m *Microsoft) Name() string { return ProviderMicrosoft }

func (m *Microsoft) Limits() domain.Limits { return m.limits }

func (m *Microsoft) headers() http.Header {
	h := http.Header{}
	h.Set("Ocp-Apim-Subscription-Key", m.key)
	if m.region != "" {
		h.Set("Ocp-Apim-Subscription-Region", m.region)
	}
	h.Set("Content-Type", "application/json")
	h.Set("X-ClientTraceId", uuid.NewString())
	return h
}

func (m *Microsoft) endpoint(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api-version", "3.0")
	return m.baseURL + path + "?" + params.Encode()
}

func texts(units []string) []msText {
	body := make([]msText, len(units))
	for i, u := range units {
		body[i] = msText{Text: u}
	}
	return body
}

// Translate translates units in one request.
func (m *Microsoft) Translate(ctx context.Context, units []string, src, tgt string) ([]string, error) {
	if len(units) == 0 {
		return []string{}, nil
	}
	params := url.Values{"to": {tgt}}
	if src != "" {
		params.Set("from", src)
	}
	data, err := m.client.call(ctx, http.MethodPost, m.endpoint("/translate", params), m.headers(), texts(units))
	if err != nil {
		return nil, err
	}

	var resp []msTranslation
	if err := m.client.decode(data, &resp); err != nil {
		return nil, err
	}
	out := make([]string, len(resp))
	for i, r := range resp {
		if len(r.Translations) == 0 {
			return nil, m.client.shapeError("item %d has no translations", i)
		}
		out[i] = r.Translations[len(r.Translations)-1].Text
	}
	return out, nil
}

// Transliterate converts text of lang from one script to another.
func (m *Microsoft) Transliterate(ctx context.Context, text, lang, fromScript, toScript string) (string, error) {
	params := url.Values{
		"language":   {lang},
		"fromScript": {fromScript},
		"toScript":   {toScript},
	}
	data, err := m.client.call(ctx, http.MethodPost, m.endpoint("/transliterate", params), m.headers(), texts([]string{text}))
	if err != nil {
		return "", err
	}
	r := gjson.GetBytes(data, "0.text")
	if !r.Exists() {
		return "", m.client.shapeError("missing transliteration text")
	}
	return r.String(), nil
}

// Detect identifies the language of text.
func (m *Microsoft) Detect(ctx context.Context, text string) ([]domain.Detection, error) {
	data, err := m.client.call(ctx, http.MethodPost, m.endpoint("/detect", nil), m.headers(), texts([]string{text}))
	if err != nil {
		return nil, err
	}
	first := gjson.GetBytes(data, "0")
	if !first.Exists() {
		return nil, m.client.shapeError("no detections returned")
	}
	dets := []domain.Detection{{
		Lang:       first.Get("language").String(),
		Confidence: first.Get("score").Float(),
	}}
	first.Get("alternatives").ForEach(func(_, alt gjson.Result) bool {
		dets = append(dets, domain.Detection{
			Lang:       alt.Get("language").String(),
			Confidence: alt.Get("score").Float(),
		})
		return true
	})
	return dets, nil
}

// SegmentSentences splits text using the breaksentence endpoint. The
// reported sentence lengths are applied to the original text, so the pieces
// always concatenate back to it.
func (m *Microsoft) SegmentSentences(ctx context.Context, text, lang string) ([]string, error) {
	params := url.Values{}
	if lang != "" {
		params.Set("language", lang)
	}
	data, err := m.client.call(ctx, http.MethodPost, m.endpoint("/breaksentence", params), m.headers(), texts([]string{text}))
	if err != nil {
		return nil, err
	}
	lens := gjson.GetBytes(data, "0.sentLen")
	if !lens.IsArray() {
		return nil, m.client.shapeError("missing sentLen")
	}
	var sizes []int
	for _, l := range lens.Array() {
		sizes = append(sizes, int(l.Int()))
	}
	return sliceByLengths(text, sizes), nil
}

// sliceByLengths cuts text into consecutive pieces of the given rune
// lengths. Any remainder is appended to the last piece.
func sliceByLengths(text string, sizes []int) []string {
	runes := []rune(text)
	var pieces []string
	pos := 0
	for _, n := range sizes {
		if n <= 0 || pos >= len(runes) {
			continue
		}
		end := pos + n
		if end > len(runes) {
			end = len(runes)
		}
		pieces = append(pieces, string(runes[pos:end]))
		pos = end
	}
	if pos < len(runes) {
		if len(pieces) == 0 {
			pieces = append(pieces, string(runes[pos:]))
		} else {
			pieces[len(pieces)-1] += string(runes[pos:])
		}
	}
	return pieces
}

func (m *Microsoft) fetchLanguages(ctx context.Context, scope string) ([]byte, error) {
	params := url.Values{"scope": {scope}}
	return m.client.call(ctx, http.MethodGet, m.endpoint("/languages", params), m.headers(), nil)
}

// Languages lists the languages available for translation.
func (m *Microsoft) Languages(ctx context.Context) ([]domain.Language, error) {
	data, err := m.fetchLanguages(ctx, "translation")
	if err != nil {
		return nil, err
	}
	translation := gjson.GetBytes(data, "translation")
	if !translation.IsObject() {
		return nil, m.client.shapeError("missing translation scope")
	}
	var langs []domain.Language
	translation.ForEach(func(code, v gjson.Result) bool {
		langs = append(langs, domain.Language{Code: code.String(), Name: v.Get("name").String()})
		return true
	})
	sort.Slice(langs, func(i, j int) bool { return langs[i].Code < langs[j].Code })
	return langs, nil
}

// Scripts maps lower-cased target script codes to their names for every
// transliteration pair. The two Han scripts are renamed to tell them apart.
func (m *Microsoft) Scripts(ctx context.Context) (map[string]string, error) {
	data, err := m.fetchLanguages(ctx, "transliteration")
	if err != nil {
		return nil, err
	}
	translit := gjson.GetBytes(data, "transliteration")
	if !translit.IsObject() {
		return nil, m.client.shapeError("missing transliteration scope")
	}

	scripts := make(map[string]string)
	translit.ForEach(func(_, lang gjson.Result) bool {
		lang.Get("scripts").ForEach(func(_, s gjson.Result) bool {
			s.Get("toScripts").ForEach(func(_, to gjson.Result) bool {
				code := strings.ToLower(to.Get("code").String())
				switch name := to.Get("name").String(); name {
				case "Hat":
					scripts[code] = "Han Traditional"
				case "Han":
					scripts[code] = "Han Simplified"
				default:
					scripts[code] = name
				}
				return true
			})
			return true
		})
		return true
	})
	return scripts, nil
}
