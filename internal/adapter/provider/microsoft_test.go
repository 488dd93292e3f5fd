package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aomame/internal/domain"
)

func newMicrosoftServer(t *testing.T, h http.HandlerFunc) *Microsoft {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("Ocp-Apim-Subscription-Key"))
		assert.Equal(t, "westeurope", r.Header.Get("Ocp-Apim-Subscription-Region"))
		assert.Equal(t, "3.0", r.URL.Query().Get("api-version"))
		_, err := uuid.Parse(r.Header.Get("X-ClientTraceId"))
		assert.NoError(t, err)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewMicrosoft(Options{BaseURL: srv.URL, APIKey: "key", Region: "westeurope"})
}

func TestMicrosoftTranslate(t *testing.T) {
	m := newMicrosoftServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate", r.URL.Path)
		assert.Equal(t, "de", r.URL.Query().Get("to"))
		assert.Equal(t, "en", r.URL.Query().Get("from"))
		var body []msText
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []msText{{Text: "cat"}, {Text: "dog"}}, body)
		w.Write([]byte(`[{"translations":[{"text":"Katze","to":"de"}]},{"translations":[{"text":"Hund","to":"de"}]}]`))
	})

	out, err := m.Translate(context.Background(), []string{"cat", "dog"}, "en", "de")

	require.NoError(t, err)
	assert.Equal(t, []string{"Katze", "Hund"}, out)
}

func TestMicrosoftTranslateMissingTranslations(t *testing.T) {
	m := newMicrosoftServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"translations":[]}]`))
	})

	_, err := m.Translate(context.Background(), []string{"cat"}, "", "de")

	assert.ErrorIs(t, err, ErrUnexpectedShape)
}

func TestMicrosoftSegmentSentences(t *testing.T) {
	m := newMicrosoftServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/breaksentence", r.URL.Path)
		w.Write([]byte(`[{"sentLen":[7,6]}]`))
	})

	pieces, err := m.SegmentSentences(context.Background(), "Hello. World.", "en")

	require.NoError(t, err)
	assert.Equal(t, []string{"Hello. ", "World."}, pieces)
}

func TestSliceByLengths(t *testing.T) {
	assert.Equal(t, []string{"日本。", "です"}, sliceByLengths("日本。です", []int{3, 2}))
	assert.Equal(t, []string{"ab", "cdef"}, sliceByLengths("abcdef", []int{2, 2}))
	assert.Equal(t, []string{"abc"}, sliceByLengths("abc", []int{5}))
	assert.Equal(t, []string{"abc"}, sliceByLengths("abc", nil))
	assert.Empty(t, sliceByLengths("", []int{1}))
}

func TestMicrosoftTransliterateAndDetect(t *testing.T) {
	m := newMicrosoftServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/transliterate":
			q := r.URL.Query()
			assert.Equal(t, "ja", q.Get("language"))
			assert.Equal(t, "Jpan", q.Get("fromScript"))
			assert.Equal(t, "Latn", q.Get("toScript"))
			w.Write([]byte(`[{"text":"konnichiwa","script":"Latn"}]`))
		case "/detect":
			w.Write([]byte(`[{"language":"de","score":0.92,"alternatives":[{"language":"nl","score":0.4}]}]`))
		}
	})

	out, err := m.Transliterate(context.Background(), "こんにちは", "ja", "Jpan", "Latn")
	require.NoError(t, err)
	assert.Equal(t, "konnichiwa", out)

	dets, err := m.Detect(context.Background(), "Guten Tag")
	require.NoError(t, err)
	assert.Equal(t, []domain.Detection{{Lang: "de", Confidence: 0.92}, {Lang: "nl", Confidence: 0.4}}, dets)
}

func TestMicrosoftLanguagesAndScripts(t *testing.T) {
	m := newMicrosoftServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("scope") {
		case "translation":
			w.Write([]byte(`{"translation":{"fr":{"name":"French"},"de":{"name":"German"}}}`))
		case "transliteration":
			w.Write([]byte(`{"transliteration":{"zh-Hans":{"scripts":[{"code":"Hans","toScripts":[{"code":"Latn","name":"Latin"}]}]},
				"zh-Hant":{"scripts":[{"code":"Hant","toScripts":[{"code":"Hant","name":"Hat"},{"code":"Hans","name":"Han"}]}]}}}`))
		}
	})

	langs, err := m.Languages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Language{{Code: "de", Name: "German"}, {Code: "fr", Name: "French"}}, langs)

	scripts, err := m.Scripts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"latn": "Latin",
		"hant": "Han Traditional",
		"hans": "Han Simplified",
	}, scripts)
}
