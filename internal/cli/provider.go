package cli

import (
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"

	"aomame/internal/adapter/provider"
	"aomame/internal/port"
)

// providerOptions builds adapter options for name from the loaded config.
// A non-empty key overrides the configured environment variable.
func providerOptions(name, key string) (provider.Options, error) {
	pc, err := GetConfig().Provider(name)
	if err != nil {
		return provider.Options{}, err
	}
	if key == "" {
		key = pc.APIKey()
	}
	if key == "" && name != provider.ProviderMock {
		return provider.Options{}, fmt.Errorf("no API key for %s: set %s or pass --key", name, pc.APIKeyEnv)
	}
	return provider.Options{
		Host:    pc.Host,
		APIKey:  key,
		Region:  pc.Region,
		Limits:  pc.Limits(),
		RPS:     pc.RPS,
		Timeout: pc.Timeout,
		Logger:  GetLogger(),
	}, nil
}

func newTranslator(name, key string) (port.Translator, error) {
	opts, err := providerOptions(name, key)
	if err != nil {
		return nil, err
	}
	return provider.New(name, opts)
}

// capability returns the provider as T, or an error naming the missing
// capability.
func capability[T any](name, key, what string) (T, error) {
	var zero T
	tr, err := newTranslator(name, key)
	if err != nil {
		return zero, err
	}
	c, ok := tr.(T)
	if !ok {
		return zero, fmt.Errorf("provider %s does not support %s", name, what)
	}
	return c, nil
}

// normalizeLang canonicalizes a BCP 47 code ("EN" -> "en", "zh-hans" ->
// "zh-Hans"). Empty stays empty.
func normalizeLang(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", nil
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("invalid language code %q: %w", code, err)
	}
	return tag.String(), nil
}

// detectLocalLang guesses the ISO 639-1 code of text offline. It returns "" when
// the language has no two-letter code or the guess is unreliable.
func detectLocalLang(text string) (string, float64) {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return "", info.Confidence
	}
	return info.Lang.Iso6391(), info.Confidence
}
