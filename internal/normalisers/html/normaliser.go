// Package html extracts readable text from HTML pages.
package html

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser turns HTML into one line of text per block element.
type Normaliser struct{}

// New returns the HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes lists HTML and XHTML.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority ranks above the plain text fallback.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise keeps the file name as the document name. The page title is
// put in front of the text unless the body already opens with it.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	page := extract(string(raw.Content))
	content := page.body
	if page.title != "" && !strings.HasPrefix(content, page.title) {
		content = strings.TrimSpace(page.title + "\n\n" + content)
	}

	return &driven.NormaliseResult{
		Name:     filepath.Base(raw.URI),
		Content:  content,
		MIMEType: raw.MIMEType,
	}, nil
}
