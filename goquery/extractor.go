// Package goquery implements HTML content extraction using CSS selectors.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/doccache"
)

// Compile-time check that Extractor implements doccache.Extractor.
var _ doccache.Extractor = (*Extractor)(nil)

// defaultContentSelectors are tried in order; the first one that matches
// a non-empty element wins. Semantic elements come before class and id
// conventions used by documentation generators.
var defaultContentSelectors = []string{
	"main",
	"article",
	"section",
	".content",
	"#content",
	".documentation",
	"#documentation",
}

// stripSelector matches elements removed from the page before content
// selection. Scripts and styles carry no text; nav, footer, header and
// aside are boilerplate around the document body.
const stripSelector = "script, style, iframe, nav, footer, header, aside"

// Extractor extracts main content from HTML using CSS selectors.
type Extractor struct {
	selectors []string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithSelectors replaces the default content selector priority list.
func WithSelectors(selectors []string) Option {
	return func(e *Extractor) {
		e.selectors = selectors
	}
}

// NewExtractor creates an Extractor with the default selector list.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{selectors: defaultContentSelectors}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses the HTML, strips boilerplate, and returns the main
// content region together with the title, meta description and heading
// outline. When no selector matches, the whole body is used.
func (e *Extractor) Extract(html string) (*doccache.ExtractResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, doccache.Errorf(doccache.EINVALID, "failed to parse HTML: %v", err)
	}

	title := extractTitle(doc)
	description := extractDescription(doc)

	doc.Find(stripSelector).Remove()

	content := selectContent(doc, e.selectors)

	contentHTML, err := goquery.OuterHtml(content)
	if err != nil {
		return nil, doccache.Errorf(doccache.EINTERNAL, "failed to render content: %v", err)
	}

	return &doccache.ExtractResult{
		Title:       title,
		Description: description,
		Headings:    extractHeadings(content),
		ContentHTML: contentHTML,
	}, nil
}

// selectContent returns the first non-empty match from the selector
// priority list, falling back to body.
func selectContent(doc *goquery.Document, selectors []string) *goquery.Selection {
	for _, selector := range selectors {
		sel := doc.Find(selector).First()
		if sel.Length() > 0 && strings.TrimSpace(sel.Text()) != "" {
			return sel
		}
	}
	return doc.Find("body").First()
}

// extractTitle prefers the document title, then og:title.
func extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		return strings.TrimSpace(og)
	}
	return ""
}

// extractDescription reads the meta description, then og:description.
func extractDescription(doc *goquery.Document) string {
	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		if desc = strings.TrimSpace(desc); desc != "" {
			return desc
		}
	}
	if og, ok := doc.Find(`meta[property="og:description"]`).First().Attr("content"); ok {
		return strings.TrimSpace(og)
	}
	return ""
}

// extractHeadings collects h1-h6 within the content region in document
// order.
func extractHeadings(content *goquery.Selection) []doccache.Heading {
	var headings []doccache.Heading
	content.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		headings = append(headings, doccache.Heading{
			Level: int(sel.Get(0).Data[1] - '0'),
			Text:  text,
		})
	})
	return headings
}
