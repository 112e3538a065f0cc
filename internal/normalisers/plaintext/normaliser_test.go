package plaintext

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

func TestSupportedMIMETypes(t *testing.T) {
	n := New()
	assert.Contains(t, n.SupportedMIMETypes(), "text/plain")
	assert.NotContains(t, n.SupportedMIMETypes(), "application/json")
	assert.Equal(t, 5, n.Priority())
}

func TestNormalise_Success(t *testing.T) {
	n := New()
	raw := &domain.RawDocument{
		URI:      "/tmp/notes/meeting-notes.txt",
		MIMEType: "text/plain",
		Content:  []byte("Line one.\n\nLine two."),
	}

	result, err := n.Normalise(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, "meeting-notes.txt", result.Name)
	assert.Equal(t, "Line one.\n\nLine two.", result.Content)
	assert.Equal(t, "text/plain", result.MIMEType)
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_EmptyContent(t *testing.T) {
	result, err := New().Normalise(context.Background(), &domain.RawDocument{URI: "empty.txt"})
	require.NoError(t, err)
	assert.Empty(t, result.Content)
}

func TestNormalise_UnicodeContent(t *testing.T) {
	content := "日本語 Ελληνικά émoji 🎉"
	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:     "u.txt",
		Content: []byte(content),
	})
	require.NoError(t, err)
	assert.Equal(t, content, result.Content)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"utf-8", []byte("café"), "café"},
		{"utf-8 bom", []byte("\uFEFFok"), "ok"},
		{"utf-8 bom with bad bytes", append([]byte("\uFEFFok "), 0xff), "ok \uFFFD"},
		{"utf-16le bom", []byte{0xFF, 0xFE, 'h', 0, 'i', 0}, "hi"},
		{"utf-16be bom", []byte{0xFE, 0xFF, 0, 'h', 0, 'i'}, "hi"},
		{"windows-1252", []byte{'c', 'a', 'f', 0xE9, ' ', 0x80}, "café €"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decode(tt.in))
		})
	}
}

func TestNormalise_CRLF(t *testing.T) {
	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:     "dos.txt",
		Content: []byte("one\r\ntwo\r\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", result.Content)
}

func TestNormalise_LargeContent(t *testing.T) {
	content := strings.Repeat("lorem ipsum ", 100000)
	result, err := New().Normalise(context.Background(), &domain.RawDocument{URI: "big.txt", Content: []byte(content)})
	require.NoError(t, err)
	assert.Len(t, result.Content, len(content))
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = New()
}
