// Package plaintext is the fallback normaliser for text files.
package plaintext

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser decodes bytes into text. The registry also routes any text/*
// type without a better match here.
type Normaliser struct{}

// New returns the plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes lists the types registered explicitly.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/csv",
		"text/x-go",
		"text/x-python",
		"text/yaml",
		"text/toml",
	}
}

// Priority is the lowest band, so any specific normaliser wins.
func (n *Normaliser) Priority() int {
	return 5
}

// Normalise decodes raw.Content and normalises line endings to \n.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text := decode(raw.Content)
	text = strings.ReplaceAll(text, "\r\n", "\n")

	return &driven.NormaliseResult{
		Name:     filepath.Base(raw.URI),
		Content:  text,
		MIMEType: raw.MIMEType,
	}, nil
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decode picks an encoding from the byte order mark. Without one, valid
// UTF-8 is taken as is and anything else is read as Windows-1252, the
// usual encoding of legacy text files.
func decode(b []byte) string {
	switch {
	case bytes.HasPrefix(b, bomUTF8):
		return strings.ToValidUTF8(string(b[len(bomUTF8):]), "\uFFFD")
	case bytes.HasPrefix(b, bomUTF16LE):
		return transform(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), b)
	case bytes.HasPrefix(b, bomUTF16BE):
		return transform(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), b)
	case utf8.Valid(b):
		return string(b)
	default:
		return transform(charmap.Windows1252, b)
	}
}

func transform(enc encoding.Encoding, b []byte) string {
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "\uFFFD")
	}
	return string(out)
}
