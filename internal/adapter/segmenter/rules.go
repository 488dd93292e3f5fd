// Package segmenter provides a local sentence segmenter for providers that
// have no boundary endpoint.
package segmenter

import (
	"context"
	"regexp"
)

// boundary matches sentence terminators with trailing closers and spacing.
// Latin terminators need following whitespace so "3.14" and "e.g." inside a
// word are not cut; CJK full-width terminators end a sentence on their own.
var boundary = regexp.MustCompile(`(?:[.!?…]+["'”’)\]]*\s+)|(?:[。！？]+["'”’」』)\]]*\s*)`)

// Rules splits text after sentence terminators. Whitespace that follows a
// terminator stays with the sentence before it, so pieces concatenate back
// to the input exactly.
type Rules struct{}

// NewRules creates a rule based segmenter.
func NewRules() *Rules {
	return &Rules{}
}

// SegmentSentences implements port.SentenceSegmenter. lang is ignored.
func (r *Rules) SegmentSentences(_ context.Context, text, _ string) ([]string, error) {
	return Split(text), nil
}

// Split cuts text into sentences.
func Split(text string) []string {
	if text == "" {
		return nil
	}
	var pieces []string
	start := 0
	for _, m := range boundary.FindAllStringIndex(text, -1) {
		if m[1] <= start {
			continue
		}
		pieces = append(pieces, text[start:m[1]])
		start = m[1]
	}
	if start < len(text) {
		pieces = append(pieces, text[start:])
	}
	return pieces
}
