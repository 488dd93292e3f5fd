package segmenter

import (
	"context"
	"strings"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	got := Split("Hello. World.")
	want := []string{"Hello. ", "World."}
	if len(got) != len(want) {
		t.Fatalf("expected %d pieces, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("piece %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestSplitKeepsDecimals(t *testing.T) {
	got := Split("Pi is 3.14 roughly. Yes!")
	if len(got) != 2 {
		t.Fatalf("expected 2 pieces, got %q", got)
	}
	if got[0] != "Pi is 3.14 roughly. " {
		t.Errorf("unexpected first piece %q", got[0])
	}
}

func TestSplitCJK(t *testing.T) {
	got := Split("今日は晴れ。明日は雨！")
	if len(got) != 2 {
		t.Fatalf("expected 2 pieces, got %q", got)
	}
}

func TestSplitRoundTrip(t *testing.T) {
	texts := []string{
		"",
		"no terminator at all",
		"One.  Two?   Three!\nFour…  \"Five.\" Six",
		"  leading space. trailing space.  ",
		"Ünïcödé text. Ελληνικά! 中文。English.",
	}
	seg := NewRules()
	for _, text := range texts {
		pieces, err := seg.SegmentSentences(context.Background(), text, "en")
		if err != nil {
			t.Fatal(err)
		}
		if joined := strings.Join(pieces, ""); joined != text {
			t.Errorf("round trip failed: %q -> %q", text, joined)
		}
		for _, p := range pieces {
			if p == "" {
				t.Errorf("empty piece for %q", text)
			}
		}
	}
}
