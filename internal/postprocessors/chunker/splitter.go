// Package chunker splits document text into overlapping chunks.
package chunker

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Splitter implements the interface.
var _ driven.TextSplitter = (*Splitter)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

var (
	sentenceBreak  = []rune(". ")
	paragraphBreak = []rune("\n\n")
)

// Splitter cuts text into windows of at most chunkSize characters, preferring
// to end a window at a sentence or paragraph boundary. Consecutive windows
// share overlap characters. Lengths are counted in runes.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		s.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		s.overlap = overlap
	}
}

// New creates a splitter. It fails when the window could not advance,
// that is when overlap is not smaller than the chunk size.
func New(opts ...Option) (*Splitter, error) {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	cfg := domain.ChunkingSettings{Size: s.chunkSize, Overlap: s.overlap}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("chunker: %w", err)
	}

	return s, nil
}

// FromSettings creates a splitter from configured chunking settings.
func FromSettings(cfg domain.ChunkingSettings) (*Splitter, error) {
	return New(WithChunkSize(cfg.Size), WithOverlap(cfg.Overlap))
}

// ChunkSize returns the maximum chunk length in characters.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the number of characters shared by consecutive chunks.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split returns the trimmed, non-empty chunks of text in order.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	n := len(runes)

	if n <= s.chunkSize {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return []string{trimmed}
		}
		return nil
	}

	chunks := make([]string, 0, n/(s.chunkSize-s.overlap)+1)
	start := 0

	for start < n {
		end := min(start+s.chunkSize, n)
		window := runes[start:end]
		chunkLen := len(window)

		// Only shorten windows that stop before the end of the text, and only
		// when the boundary is past the middle of the window.
		if end < n {
			bp := max(lastIndex(window, sentenceBreak), lastIndex(window, paragraphBreak))
			if bp*2 > len(window) {
				chunkLen = bp + 1
			}
		}

		if chunk := strings.TrimSpace(string(window[:chunkLen])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		// The tail is already covered by the previous chunk.
		if end == n && chunkLen <= s.overlap {
			break
		}

		start += max(chunkLen-s.overlap, 1)
	}

	return chunks
}

// lastIndex returns the rune index of the last occurrence of sep in s, or -1.
func lastIndex(s, sep []rune) int {
	for i := len(s) - len(sep); i >= 0; i-- {
		match := true
		for j := range sep {
			if s[i+j] != sep[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
