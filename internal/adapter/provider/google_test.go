package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aomame/internal/domain"
)

func TestGoogleTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/language/translate/v2", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))

		var req googleTranslateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"hello", "world"}, req.Q)
		assert.Equal(t, "fr", req.Target)
		assert.Equal(t, "en", req.Source)
		assert.Equal(t, "text", req.Format)

		w.Write([]byte(`{"data":{"translations":[{"translatedText":"bonjour"},{"translatedText":"monde"}]}}`))
	}))
	defer srv.Close()

	g := NewGoogle(Options{BaseURL: srv.URL, APIKey: "secret"})
	out, err := g.Translate(context.Background(), []string{"hello", "world"}, "en", "fr")

	require.NoError(t, err)
	assert.Equal(t, []string{"bonjour", "monde"}, out)
	assert.Equal(t, GoogleLimits(), g.Limits())
}

func TestGoogleTranslateErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"API key not valid"}}`))
	}))
	defer srv.Close()

	g := NewGoogle(Options{BaseURL: srv.URL})
	_, err := g.Translate(context.Background(), []string{"hello"}, "", "fr")

	var re *domain.ResponseError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusForbidden, re.Status)
	assert.Equal(t, "API key not valid", re.Message())
	assert.JSONEq(t, `{"error":{"code":403,"message":"API key not valid"}}`, string(re.Payload))
}

func TestGoogleTranslateUnexpectedShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	g := NewGoogle(Options{BaseURL: srv.URL})
	_, err := g.Translate(context.Background(), []string{"hello"}, "", "fr")

	assert.ErrorIs(t, err, ErrUnexpectedShape)
}

func TestDecodePreviewKeepsRunesWhole(t *testing.T) {
	c := newAPIClient(ProviderGoogle, Options{})
	body := []byte("<" + strings.Repeat("é", 150))

	err := c.decode(body, &googleTranslateResponse{})

	require.ErrorIs(t, err, ErrUnexpectedShape)
	assert.True(t, utf8.ValidString(err.Error()))
	assert.Contains(t, err.Error(), "...")
}

func TestGoogleTransportFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	g := NewGoogle(Options{BaseURL: url})
	_, err := g.Translate(context.Background(), []string{"hello"}, "", "fr")

	assert.Equal(t, domain.KindTransient, domain.KindOf(err))
}

func TestGoogleLanguagesAndDetect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/language/translate/v2/languages":
			w.Write([]byte(`{"data":{"languages":[{"language":"de"},{"language":"fr"}]}}`))
		case "/language/translate/v2/detect":
			w.Write([]byte(`{"data":{"detections":[[{"language":"ja","confidence":0.98}]]}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	g := NewGoogle(Options{BaseURL: srv.URL})

	langs, err := g.Languages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Language{{Code: "de"}, {Code: "fr"}}, langs)

	dets, err := g.Detect(context.Background(), "こんにちは")
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, "ja", dets[0].Lang)
	assert.InDelta(t, 0.98, dets[0].Confidence, 1e-9)
}

func TestGoogleSpeechTranscribe(t *testing.T) {
	dir := t.TempDir()
	audio := dir + "/clip.raw"
	require.NoError(t, os.WriteFile(audio, []byte{0, 1, 2, 3}, 0644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/speech:recognize", r.URL.Path)
		var req speechRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "LINEAR16", req.Config.Encoding)
		assert.Equal(t, 16000, req.Config.SampleRateHertz)
		assert.Equal(t, "en-US", req.Config.LanguageCode)
		assert.Equal(t, "AAECAw==", req.Audio.Content)
		w.Write([]byte(`{"results":[{"alternatives":[{"transcript":"hello there"}]},{"alternatives":[]},{"alternatives":[{"transcript":"general"}]}]}`))
	}))
	defer srv.Close()

	s := NewGoogleSpeech(Options{BaseURL: srv.URL, APIKey: "k"})
	s.DumpPath = dir + "/dump.json"

	text, err := s.Transcribe(context.Background(), audio, "en-US")

	require.NoError(t, err)
	assert.Equal(t, "hello there general", text)
	assert.FileExists(t, s.DumpPath)
}
