// Package pdf extracts the text layer of PDF files with
// github.com/ledongthuc/pdf. Scanned pages without text come out empty.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser extracts the text layer of a PDF.
type Normaliser struct{}

// New returns the PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

func (n *Normaliser) Priority() int {
	return 50
}

// Normalise joins the pages with a blank line between them.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	pages, err := readPages(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("pdf: %s: %w", filepath.Base(raw.URI), err)
	}

	return &driven.NormaliseResult{
		Name:     filepath.Base(raw.URI),
		Content:  joinPages(pages),
		MIMEType: raw.MIMEType,
	}, nil
}

// readPages returns the text of each page. The parser panics on some
// malformed files; that is reported as an error.
func readPages(data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	fonts := map[string]*pdf.Font{}
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// joinPages collapses runs of spaces, drops blank lines inside a page and
// separates pages with one blank line. Empty pages are skipped.
func joinPages(pages []string) string {
	var kept []string
	for _, p := range pages {
		var lines []string
		for line := range strings.Lines(p) {
			if line = strings.Join(strings.Fields(line), " "); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			kept = append(kept, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(kept, "\n\n")
}
