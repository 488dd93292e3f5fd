package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// GoogleSpeechHost is the default Cloud Speech-to-Text API host.
const GoogleSpeechHost = "speech.googleapis.com"

// GoogleSpeech transcribes LINEAR16 16kHz recordings.
type GoogleSpeech struct {
	client  *apiClient
	baseURL string
	key     string
	// DumpPath, when set, receives the raw JSON response of every call.
	DumpPath string
}

type speechRequest struct {
	Config speechConfig `json:"config"`
	Audio  speechAudio  `json:"audio"`
}

type speechConfig struct {
	Encoding                   string `json:"encoding"`
	SampleRateHertz            int    `json:"sampleRateHertz"`
	LanguageCode               string `json:"languageCode"`
	EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
}

type speechAudio struct {
	Content string `json:"content"`
}

type speechResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
}

// NewGoogleSpeech creates a speech adapter.
func NewGoogleSpeech(o Options) *GoogleSpeech {
	return &GoogleSpeech{
		client:  newAPIClient(ProviderGoogle+"-speech", o),
		baseURL: o.baseURL(GoogleSpeechHost),
		key:     o.APIKey,
	}
}

// Transcribe returns the best transcript of each result joined by spaces.
// A response without results yields an empty transcript.
func (s *GoogleSpeech) Transcribe(ctx context.Context, audioPath, lang string) (string, error) {
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to read audio: %w", err)
	}

	body := speechRequest{
		Config: speechConfig{
			Encoding:                   "LINEAR16",
			SampleRateHertz:            16000,
			LanguageCode:               lang,
			EnableAutomaticPunctuation: true,
		},
		Audio: speechAudio{Content: base64.StdEncoding.EncodeToString(audio)},
	}

	endpoint := s.baseURL + "/v1/speech:recognize?key=" + url.QueryEscape(s.key)
	data, err := s.client.call(ctx, http.MethodPost, endpoint, nil, body)
	if err != nil {
		return "", err
	}

	if s.DumpPath != "" {
		if err := os.WriteFile(s.DumpPath, data, 0644); err != nil {
			return "", fmt.Errorf("failed to write response dump: %w", err)
		}
	}

	var resp speechResponse
	if err := s.client.decode(data, &resp); err != nil {
		return "", err
	}
	parts := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		parts = append(parts, r.Alternatives[0].Transcript)
	}
	return strings.Join(parts, " "), nil
}
