package html

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type page struct {
	title string
	body  string
}

// skipped elements contribute no text.
var skipped = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Svg:      true,
	atom.Template: true,
	atom.Iframe:   true,
}

// breaks start and end a line.
var breaks = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Br: true, atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Figcaption: true, atom.Footer: true, atom.H1: true, atom.H2: true,
	atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true, atom.Header: true,
	atom.Hr: true, atom.Li: true, atom.Main: true, atom.Nav: true, atom.Ol: true,
	atom.P: true, atom.Pre: true, atom.Section: true, atom.Table: true,
	atom.Tr: true, atom.Ul: true,
}

// extract walks the token stream once. It does not build a DOM, so
// unclosed skipped elements are ended by <body>.
func extract(src string) page {
	z := html.NewTokenizer(strings.NewReader(src))

	var title, body strings.Builder
	skip, inTitle, inPre := 0, false, 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return page{
				title: strings.Join(strings.Fields(title.String()), " "),
				body:  tidy(body.String()),
			}

		case html.TextToken:
			text := string(z.Text())
			switch {
			case inTitle:
				title.WriteString(text)
			case skip > 0:
			case inPre > 0:
				body.WriteString(text)
			default:
				body.WriteString(strings.ReplaceAll(text, "\n", " "))
			}

		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			start := tt != html.EndTagToken

			switch {
			case a == atom.Title:
				inTitle = tt == html.StartTagToken
			case a == atom.Body && start:
				skip = 0
			case skipped[a] && tt == html.StartTagToken:
				skip++
			case skipped[a] && tt == html.EndTagToken:
				skip = max(skip-1, 0)
			case a == atom.Td || a == atom.Th:
				if !start {
					body.WriteByte(' ')
				}
			case breaks[a]:
				body.WriteByte('\n')
				if a == atom.Pre && tt != html.SelfClosingTagToken {
					if start {
						inPre++
					} else {
						inPre = max(inPre-1, 0)
					}
				}
			}
		}
	}
}

// tidy collapses spaces within lines and drops blank lines.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
