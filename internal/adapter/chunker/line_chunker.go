package chunker

import (
	"bufio"
	"io"
	"iter"
	"strings"
	"unicode"
)

// DefaultCacheSize is the number of lines held in memory per cache.
const DefaultCacheSize = 10000

const maxLineBytes = 16 << 20

// LineChunker streams input lines in fixed-size caches so a large input is
// never held in memory at once.
type LineChunker struct {
	size int
}

func NewLineChunker(size int) *LineChunker {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &LineChunker{size: size}
}

// Chunks yields caches of at most size lines, in input order. Trailing
// whitespace is stripped from every line. A read error is yielded once with
// a nil cache and ends the sequence.
func (c *LineChunker) Chunks(r io.Reader) iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

		cache := make([]string, 0, c.size)
		for sc.Scan() {
			cache = append(cache, strings.TrimRightFunc(sc.Text(), unicode.IsSpace))
			if len(cache) == c.size {
				if !yield(cache, nil) {
					return
				}
				cache = make([]string, 0, c.size)
			}
		}
		if err := sc.Err(); err != nil {
			yield(nil, err)
			return
		}
		if len(cache) > 0 {
			yield(cache, nil)
		}
	}
}
