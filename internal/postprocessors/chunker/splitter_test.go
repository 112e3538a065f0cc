package chunker

import (
	"errors"
	"strings"
	"testing"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		s, err := New()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.ChunkSize() != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, s.ChunkSize())
		}
		if s.Overlap() != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, s.Overlap())
		}
	})

	t.Run("custom values", func(t *testing.T) {
		s, err := New(WithChunkSize(500), WithOverlap(100))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.ChunkSize() != 500 || s.Overlap() != 100 {
			t.Errorf("expected 500/100, got %d/%d", s.ChunkSize(), s.Overlap())
		}
	})

	t.Run("overlap equal to chunk size rejected", func(t *testing.T) {
		_, err := New(WithChunkSize(100), WithOverlap(100))
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("overlap exceeds chunk size rejected", func(t *testing.T) {
		_, err := New(WithChunkSize(100), WithOverlap(150))
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("non-positive chunk size rejected", func(t *testing.T) {
		if _, err := New(WithChunkSize(0)); err == nil {
			t.Error("expected error for zero chunk size")
		}
	})

	t.Run("negative overlap rejected", func(t *testing.T) {
		if _, err := New(WithOverlap(-1)); err == nil {
			t.Error("expected error for negative overlap")
		}
	})
}

func mustNew(t *testing.T, opts ...Option) *Splitter {
	t.Helper()
	s, err := New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestSplit_Empty(t *testing.T) {
	s := mustNew(t)

	for _, in := range []string{"", "   ", "\n\n\t"} {
		if got := s.Split(in); len(got) != 0 {
			t.Errorf("Split(%q) = %v, want no chunks", in, got)
		}
	}
}

func TestSplit_ShortText(t *testing.T) {
	s := mustNew(t)

	got := s.Split("  The quick brown fox jumps over the lazy dog.  ")
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(got))
	}
	if got[0] != "The quick brown fox jumps over the lazy dog." {
		t.Errorf("unexpected chunk %q", got[0])
	}
}

func TestSplit_ExactlyChunkSize(t *testing.T) {
	s := mustNew(t)

	got := s.Split(strings.Repeat("a", DefaultChunkSize))
	if len(got) != 1 {
		t.Errorf("expected 1 chunk, got %d", len(got))
	}
}

func TestSplit_RepeatedCharacter(t *testing.T) {
	s := mustNew(t)

	got := s.Split(strings.Repeat("a", 2500))

	wantLens := []int{1000, 1000, 900, 200}
	if len(got) != len(wantLens) {
		t.Fatalf("expected %d chunks, got %d", len(wantLens), len(got))
	}
	for i, want := range wantLens {
		if len(got[i]) != want {
			t.Errorf("chunk %d: expected length %d, got %d", i, want, len(got[i]))
		}
	}
}

func TestSplit_OverlapIsCharacterIdentical(t *testing.T) {
	s := mustNew(t)

	// No ". " or blank lines, so every window is full length.
	var b strings.Builder
	for i := 0; i < 2500; i++ {
		b.WriteByte(byte('a' + i%26))
	}
	got := s.Split(b.String())

	if len(got) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(got))
	}
	for i := 0; i+1 < len(got); i++ {
		prev, next := got[i], got[i+1]
		tail := prev[len(prev)-DefaultChunkOverlap:]
		head := next[:DefaultChunkOverlap]
		if tail != head {
			t.Errorf("chunks %d and %d do not share %d characters", i, i+1, DefaultChunkOverlap)
		}
	}
}

func TestSplit_PrefersSentenceBoundary(t *testing.T) {
	s := mustNew(t, WithChunkSize(50), WithOverlap(10))

	text := strings.Repeat("x", 35) + ". " + strings.Repeat("y", 40)
	got := s.Split(text)

	if len(got) < 2 {
		t.Fatalf("expected several chunks, got %d", len(got))
	}
	want := strings.Repeat("x", 35) + "."
	if got[0] != want {
		t.Errorf("first chunk should end at the sentence, got %q", got[0])
	}
	for i, c := range got {
		if len([]rune(c)) > 50 {
			t.Errorf("chunk %d exceeds chunk size: %d", i, len([]rune(c)))
		}
	}
	if !strings.HasSuffix(got[len(got)-1], "y") {
		t.Errorf("last chunk should reach the end of the text, got %q", got[len(got)-1])
	}
}

func TestSplit_PrefersParagraphBoundary(t *testing.T) {
	s := mustNew(t, WithChunkSize(50), WithOverlap(5))

	text := strings.Repeat("p", 40) + "\n\n" + strings.Repeat("q", 40)
	got := s.Split(text)

	if got[0] != strings.Repeat("p", 40) {
		t.Errorf("first chunk should end at the paragraph, got %q", got[0])
	}
}

func TestSplit_IgnoresEarlyBoundary(t *testing.T) {
	s := mustNew(t, WithChunkSize(50), WithOverlap(10))

	// Boundary in the first half of the window is not used.
	text := strings.Repeat("x", 10) + ". " + strings.Repeat("z", 80)
	got := s.Split(text)

	if len([]rune(got[0])) != 50 {
		t.Errorf("expected a full 50 character window, got %d", len([]rune(got[0])))
	}
}

func TestSplit_CountsRunes(t *testing.T) {
	s := mustNew(t, WithChunkSize(10), WithOverlap(2))

	got := s.Split(strings.Repeat("é", 25))
	for i, c := range got {
		if n := len([]rune(c)); n > 10 {
			t.Errorf("chunk %d has %d runes", i, n)
		}
	}
	if len(got) == 0 || []rune(got[0])[0] != 'é' {
		t.Errorf("runes were split: %q", got)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	s := mustNew(t, WithChunkSize(80), WithOverlap(20))
	text := strings.Repeat("Sentence number one. Another paragraph follows.\n\n", 20)

	first := s.Split(text)
	second := s.Split(text)

	if len(first) != len(second) {
		t.Fatalf("chunk count differs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs", i)
		}
		if strings.TrimSpace(first[i]) == "" {
			t.Errorf("chunk %d is blank", i)
		}
	}
}

func TestSplit_Terminates(t *testing.T) {
	// Largest legal overlap advances one character at a time.
	s := mustNew(t, WithChunkSize(10), WithOverlap(9))

	got := s.Split(strings.Repeat("ab. ", 30))
	if len(got) == 0 {
		t.Fatal("expected chunks")
	}
	if len(got) > 120 {
		t.Errorf("unexpectedly many chunks: %d", len(got))
	}
}

func TestLastIndex(t *testing.T) {
	tests := []struct {
		s, sep string
		want   int
	}{
		{"a. b. c", ". ", 4},
		{"abc", ". ", -1},
		{"x\n\ny", "\n\n", 1},
		{"", ". ", -1},
		{"é. ", ". ", 1},
	}

	for _, tt := range tests {
		if got := lastIndex([]rune(tt.s), []rune(tt.sep)); got != tt.want {
			t.Errorf("lastIndex(%q, %q) = %d, want %d", tt.s, tt.sep, got, tt.want)
		}
	}
}

func TestFromSettings(t *testing.T) {
	s, err := FromSettings(domain.ChunkingSettings{Size: 300, Overlap: 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ChunkSize() != 300 || s.Overlap() != 30 {
		t.Errorf("expected 300/30, got %d/%d", s.ChunkSize(), s.Overlap())
	}

	if _, err := FromSettings(domain.ChunkingSettings{Size: 10, Overlap: 10}); err == nil {
		t.Error("expected error when overlap equals size")
	}
}
