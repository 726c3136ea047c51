// Package trafilatura implements HTML content extraction using the
// go-trafilatura readability engine. It serves pages whose markup does
// not follow documentation-site conventions, where selector-based
// extraction retains too much or too little.
package trafilatura

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/fwojciec/doccache"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements doccache.Extractor at compile time.
var _ doccache.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content with its
// title, description and heading outline.
func (e *Extractor) Extract(rawHTML string) (*doccache.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, doccache.Errorf(doccache.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, doccache.WrapError(err, doccache.EINVALID, "content extraction failed")
	}

	var contentHTML string
	var headings []doccache.Heading
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, doccache.WrapError(err, doccache.EINTERNAL, "failed to render content")
		}
		headings = collectHeadings(result.ContentNode)
	}

	return &doccache.ExtractResult{
		Title:       result.Metadata.Title,
		Description: result.Metadata.Description,
		Headings:    headings,
		ContentHTML: contentHTML,
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// collectHeadings walks the content tree and returns h1-h6 elements in
// document order.
func collectHeadings(root *html.Node) []doccache.Heading {
	var headings []doccache.Heading
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && len(n.Data) == 2 && n.Data[0] == 'h' {
			if level, err := strconv.Atoi(n.Data[1:]); err == nil && level >= 1 && level <= 6 {
				if text := strings.TrimSpace(nodeText(n)); text != "" {
					headings = append(headings, doccache.Heading{Level: level, Text: text})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return headings
}

// nodeText concatenates the text content of a node's subtree.
func nodeText(n *html.Node) string {
	var buf strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}
