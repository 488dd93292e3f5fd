package provider

import (
	"context"
	"net/http"
	"net/url"

	"aomame/internal/domain"
)

// GoogleHost is the default Cloud Translation API host.
const GoogleHost = "translation.googleapis.com"

// GoogleLimits are the per-request quotas of the v2 translate endpoint.
func GoogleLimits() domain.Limits {
	return domain.Limits{MaxChars: 5000, MaxItems: 100, HardCap: 5000}
}

// Google is an adapter for the Cloud Translation v2 API.
type Google struct {
	client  *apiClient
	baseURL string
	key     string
	limits  domain.Limits
}

type googleTranslateRequest struct {
	Q      []string `json:"q"`
	Target string   `json:"target"`
	Source string   `json:"source,omitempty"`
	Format string   `json:"format"`
}

type googleTranslateResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

type googleLanguagesResponse struct {
	Data struct {
		Languages []struct {
			Language string `json:"language"`
			Name     string `json:"name"`
		} `json:"languages"`
	} `json:"data"`
}

type googleDetectResponse struct {
	Data struct {
		Detections [][]struct {
			Language   string  `json:"language"`
			Confidence float64 `json:"confidence"`
		} `json:"detections"`
	} `json:"data"`
}

// NewGoogle creates a Google adapter. Nothing is fetched at construction.
func NewGoogle(o Options) *Google {
	return &Google{
		client:  newAPIClient(ProviderGoogle, o),
		baseURL: o.baseURL(GoogleHost),
		key:     o.APIKey,
		limits:  o.limits(GoogleLimits()),
	}
}

func (g *Google) Name() string { return ProviderGoogle }

func (g *Google) Limits() domain.Limits { return g.limits }

func (g *Google) endpoint(path string) string {
	return g.baseURL + "/language/translate/v2" + path + "?key=" + url.QueryEscape(g.key)
}

// Translate translates units in one request.
func (g *Google) Translate(ctx context.Context, units []string, src, tgt string) ([]string, error) {
	if len(units) == 0 {
		return []string{}, nil
	}
	body := googleTranslateRequest{Q: units, Target: tgt, Source: src, Format: "text"}
	data, err := g.client.call(ctx, http.MethodPost, g.endpoint(""), nil, body)
	if err != nil {
		return nil, err
	}

	var resp googleTranslateResponse
	if err := g.client.decode(data, &resp); err != nil {
		return nil, err
	}
	out := make([]string, len(resp.Data.Translations))
	for i, t := range resp.Data.Translations {
		out[i] = t.TranslatedText
	}
	return out, nil
}

// Languages lists the supported language codes.
func (g *Google) Languages(ctx context.Context) ([]domain.Language, error) {
	data, err := g.client.call(ctx, http.MethodGet, g.endpoint("/languages"), nil, nil)
	if err != nil {
		return nil, err
	}
	var resp googleLanguagesResponse
	if err := g.client.decode(data, &resp); err != nil {
		return nil, err
	}
	langs := make([]domain.Language, 0, len(resp.Data.Languages))
	for _, l := range resp.Data.Languages {
		langs = append(langs, domain.Language{Code: l.Language, Name: l.Name})
	}
	return langs, nil
}

// Detect identifies the language of text.
func (g *Google) Detect(ctx context.Context, text string) ([]domain.Detection, error) {
	body := map[string][]string{"q": {text}}
	data, err := g.client.call(ctx, http.MethodPost, g.endpoint("/detect"), nil, body)
	if err != nil {
		return nil, err
	}
	var resp googleDetectResponse
	if err := g.client.decode(data, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data.Detections) == 0 {
		return nil, g.client.shapeError("no detections returned")
	}
	dets := make([]domain.Detection, 0, len(resp.Data.Detections[0]))
	for _, d := range resp.Data.Detections[0] {
		dets = append(dets, domain.Detection{Lang: d.Language, Confidence: d.Confidence})
	}
	return dets, nil
}
