package doccache

import "context"

// Conditional carries validators for a conditional HTTP request.
// Zero value means an unconditional fetch.
type Conditional struct {
	ETag         string
	LastModified string
}

// FetchResult is the outcome of retrieving a document from its origin.
type FetchResult struct {
	// Content is normalized text (markdown for HTML origins).
	Content string

	// ContentType is the detected type, e.g. "text/markdown", "text/html".
	ContentType string

	// Validators returned by the origin, when available.
	ETag         string
	LastModified string

	// NotModified reports a 304 response to a conditional fetch. Content
	// is empty and callers must treat the result as "skip save", not as
	// an error.
	NotModified bool

	// Metadata extracted during HTML normalization, nil otherwise.
	Metadata *ContentMetadata
}

// ContentMetadata describes normalized HTML content.
type ContentMetadata struct {
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Headings    []Heading `json:"headings,omitempty"`
}

// Heading is one entry of a document's section outline.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Fetcher retrieves documents from their origin. Implementations hide
// protocol dispatch (HTTP, local file, GitHub blob/gist, npm registry),
// retry logic and HTML normalization.
type Fetcher interface {
	// Fetch retrieves the document at url. The context controls timeout
	// and cancellation. Validators in cond are passed through as
	// If-None-Match / If-Modified-Since.
	Fetch(ctx context.Context, url string, cond Conditional) (*FetchResult, error)
}

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// Description is the meta description, if present.
	Description string

	// Headings is the section outline of the retained content.
	Headings []Heading

	// ContentHTML is the main content as clean HTML. Boilerplate
	// (nav, footer, sidebar, scripts) has been removed.
	ContentHTML string
}

// Extractor extracts main content from HTML pages, removing boilerplate.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown. The input should be
	// clean HTML (e.g., from an Extractor).
	Convert(html string) (string, error)
}

// RepoContentFetcher retrieves file content from a code-hosting provider.
// The http fetcher delegates github.com blob and gist URLs to it.
type RepoContentFetcher interface {
	// BlobContent returns the decoded content of a file in a repository
	// at the given ref.
	BlobContent(ctx context.Context, owner, repo, ref, path string) (string, error)

	// GistContent returns the content and filename of the first file of
	// a gist.
	GistContent(ctx context.Context, id string) (content, filename string, err error)
}
