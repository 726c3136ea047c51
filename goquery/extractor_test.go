package goquery_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/doccache"
	"github.com/fwojciec/doccache/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Story: Content Extraction
// Boilerplate is stripped and the main content region is selected by
// priority, with metadata and headings preserved.

func TestExtractor_SelectsMainElement(t *testing.T) {
	t.Parallel()

	html := `<html><head><title>Guide</title></head><body>
		<nav><a href="/">Home</a></nav>
		<main><h1>Install</h1><p>Run the installer.</p></main>
		<footer>footer text</footer>
	</body></html>`

	result, err := goquery.NewExtractor().Extract(html)
	require.NoError(t, err)

	assert.Equal(t, "Guide", result.Title)
	assert.Contains(t, result.ContentHTML, "Run the installer.")
	assert.NotContains(t, result.ContentHTML, "Home")
	assert.NotContains(t, result.ContentHTML, "footer text")
}

func TestExtractor_FallsBackThroughSelectorPriority(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<div class="documentation"><h2>API</h2><p>Reference.</p></div>
	</body></html>`

	result, err := goquery.NewExtractor().Extract(html)
	require.NoError(t, err)

	assert.Contains(t, result.ContentHTML, "Reference.")
}

func TestExtractor_UsesBodyWhenNoSelectorMatches(t *testing.T) {
	t.Parallel()

	html := `<html><body><p>Plain page.</p></body></html>`

	result, err := goquery.NewExtractor().Extract(html)
	require.NoError(t, err)

	assert.Contains(t, result.ContentHTML, "Plain page.")
}

func TestExtractor_SkipsEmptyContentRegions(t *testing.T) {
	t.Parallel()

	// main exists but is empty so selection must move on to article
	html := `<html><body>
		<main>   </main>
		<article><p>Actual content.</p></article>
	</body></html>`

	result, err := goquery.NewExtractor().Extract(html)
	require.NoError(t, err)

	assert.Contains(t, result.ContentHTML, "Actual content.")
}

func TestExtractor_StripsScriptsAndStyles(t *testing.T) {
	t.Parallel()

	html := `<html><body><main>
		<script>var x = 1;</script>
		<style>p { color: red; }</style>
		<iframe src="https://example.com/ad"></iframe>
		<p>Visible text.</p>
	</main></body></html>`

	result, err := goquery.NewExtractor().Extract(html)
	require.NoError(t, err)

	assert.Contains(t, result.ContentHTML, "Visible text.")
	assert.NotContains(t, result.ContentHTML, "var x = 1")
	assert.NotContains(t, result.ContentHTML, "color: red")
	assert.NotContains(t, result.ContentHTML, "iframe")
}

func TestExtractor_ExtractsMetadataAndHeadings(t *testing.T) {
	t.Parallel()

	html := `<html><head>
		<title>My Library</title>
		<meta name="description" content="A useful library.">
	</head><body><main>
		<h1>My Library</h1>
		<h2>Installation</h2>
		<h3>From source</h3>
	</main></body></html>`

	result, err := goquery.NewExtractor().Extract(html)
	require.NoError(t, err)

	assert.Equal(t, "My Library", result.Title)
	assert.Equal(t, "A useful library.", result.Description)
	assert.Equal(t, []doccache.Heading{
		{Level: 1, Text: "My Library"},
		{Level: 2, Text: "Installation"},
		{Level: 3, Text: "From source"},
	}, result.Headings)
}

func TestExtractor_FallsBackToOpenGraphMetadata(t *testing.T) {
	t.Parallel()

	html := `<html><head>
		<meta property="og:title" content="OG Title">
		<meta property="og:description" content="OG description.">
	</head><body><main><p>content</p></main></body></html>`

	result, err := goquery.NewExtractor().Extract(html)
	require.NoError(t, err)

	assert.Equal(t, "OG Title", result.Title)
	assert.Equal(t, "OG description.", result.Description)
}

func TestExtractor_CustomSelectors(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<main><p>wrong region</p></main>
		<div class="docs-body"><p>right region</p></div>
	</body></html>`

	e := goquery.NewExtractor(goquery.WithSelectors([]string{".docs-body"}))
	result, err := e.Extract(html)
	require.NoError(t, err)

	assert.Contains(t, result.ContentHTML, "right region")
	assert.NotContains(t, result.ContentHTML, "wrong region")
}

func TestExtractor_LargeDocument(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString(`<html><body><main>`)
	for range 1000 {
		b.WriteString(`<p>paragraph</p>`)
	}
	b.WriteString(`</main></body></html>`)

	result, err := goquery.NewExtractor().Extract(b.String())
	require.NoError(t, err)
	assert.Contains(t, result.ContentHTML, "paragraph")
}
