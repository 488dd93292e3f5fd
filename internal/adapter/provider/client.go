package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"aomame/internal/domain"
)

// ErrUnexpectedShape is returned when a successful response cannot be mapped
// onto the expected structure.
var ErrUnexpectedShape = errors.New("unexpected response shape")

// Options configures a provider adapter.
type Options struct {
	// Host is the API host, e.g. "translation.googleapis.com".
	Host string
	// BaseURL overrides the URL derived from Host ("https://" + Host).
	BaseURL string
	APIKey  string
	// Region is the Azure resource region (Microsoft only).
	Region  string
	Limits  domain.Limits
	RPS     float64
	Timeout time.Duration

	HTTPClient *http.Client
	Logger     *zap.Logger
}

func (o Options) baseURL(defaultHost string) string {
	if o.BaseURL != "" {
		return strings.TrimSuffix(o.BaseURL, "/")
	}
	host := o.Host
	if host == "" {
		host = defaultHost
	}
	return "https://" + strings.TrimSuffix(host, "/")
}

func (o Options) limits(def domain.Limits) domain.Limits {
	l := def
	if o.Limits.MaxChars > 0 {
		l.MaxChars = o.Limits.MaxChars
	}
	if o.Limits.MaxItems > 0 {
		l.MaxItems = o.Limits.MaxItems
	}
	if o.Limits.HardCap > 0 {
		l.HardCap = o.Limits.HardCap
	}
	return l
}

// apiClient performs JSON calls against one provider and turns failures into
// domain errors.
type apiClient struct {
	provider string
	http     *http.Client
	limiter  *rate.Limiter
	logger   *zap.Logger
}

func newAPIClient(provider string, o Options) *apiClient {
	hc := o.HTTPClient
	if hc == nil {
		timeout := o.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := o.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var limiter *rate.Limiter
	if o.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(o.RPS), 1)
	}
	return &apiClient{
		provider: provider,
		http:     hc,
		limiter:  limiter,
		logger:   logger,
	}
}

// call sends body (JSON encoded when non-nil) and returns the raw response
// body of a 2xx response.
func (c *apiClient) call(ctx context.Context, method, url string, header http.Header, body any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s request throttled: %w", c.provider, err)
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &domain.TransientError{Op: c.provider + " " + method, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransientError{Op: c.provider + " read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Provider returned non-success status",
			zap.String("provider", c.provider),
			zap.Int("status", resp.StatusCode),
		)
		return nil, &domain.ResponseError{
			Provider: c.provider,
			Status:   resp.StatusCode,
			Payload:  rawPayload(data),
		}
	}
	return data, nil
}

// decode unmarshals a successful response body into v.
func (c *apiClient) decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		preview := domain.Truncate(string(data), 200)
		return fmt.Errorf("%s: %w (body: %s): %v", c.provider, ErrUnexpectedShape, preview, err)
	}
	return nil
}

func (c *apiClient) shapeError(format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", c.provider, ErrUnexpectedShape, fmt.Sprintf(format, args...))
}

// rawPayload keeps JSON bodies as they are and wraps anything else in a JSON
// string so the payload is always valid JSON.
func rawPayload(data []byte) json.RawMessage {
	if json.Valid(data) {
		return json.RawMessage(data)
	}
	quoted, _ := json.Marshal(string(data))
	return json.RawMessage(quoted)
}
