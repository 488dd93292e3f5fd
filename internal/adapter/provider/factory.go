package provider

import (
	"fmt"

	"aomame/internal/adapter/segmenter"
	"aomame/internal/port"
)

// Provider names accepted by New.
const (
	ProviderGoogle    = "google"
	ProviderMicrosoft = "microsoft"
	ProviderSystran   = "systran"
	ProviderMock      = "mock"
)

// Names lists the providers accepted by New.
func Names() []string {
	return []string{ProviderGoogle, ProviderMicrosoft, ProviderSystran, ProviderMock}
}

// New creates the translator adapter for name.
func New(name string, o Options) (port.Translator, error) {
	switch name {
	case ProviderGoogle:
		return NewGoogle(o), nil
	case ProviderMicrosoft:
		return NewMicrosoft(o), nil
	case ProviderSystran:
		return NewSystran(o), nil
	case ProviderMock:
		return NewMock("", o.Limits), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}

// SegmenterFor returns the provider's own sentence boundary capability, or
// the local rule segmenter when it has none.
func SegmenterFor(t port.Translator) port.SentenceSegmenter {
	if s, ok := t.(port.SentenceSegmenter); ok {
		return s
	}
	return segmenter.NewRules()
}
