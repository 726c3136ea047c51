// Package http provides the HTTP-based implementation of doccache.Fetcher.
// It dispatches on URL shape (local file, GitHub gist, GitHub blob, npm
// package, direct HTTP) and normalizes HTML origins to Markdown.
package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/doccache"
	"golang.org/x/net/html/charset"
)

const (
	// DefaultFetchTimeout is the default timeout for HTTP requests.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultMaxSize rejects responses whose Content-Length exceeds it
	// before the body is read.
	DefaultMaxSize = 10 * 1024 * 1024

	// DefaultMaxRetries is the total number of attempts per fetch.
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the base backoff delay. Attempt n waits
	// retryDelay * 2^(n-1).
	DefaultRetryDelay = time.Second
)

// HTML size thresholds for the normalization pipeline.
const (
	DefaultWarnHTMLSize   = 500 * 1024
	DefaultLargeHTMLSize  = 2 * 1024 * 1024
	DefaultRejectHTMLSize = 5 * 1024 * 1024
)

// Ensure Fetcher implements doccache.Fetcher at compile time.
var _ doccache.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves documents over HTTP and delegates GitHub-hosted
// URLs to a RepoContentFetcher. HTML responses run through the
// Extractor/Converter pipeline so cached content is Markdown.
type Fetcher struct {
	client      *http.Client
	repo        doccache.RepoContentFetcher
	extractor   doccache.Extractor
	converter   doccache.Converter
	logger      *slog.Logger
	timeout     time.Duration
	maxSize     int64
	maxRetries  int
	retryDelay  time.Duration
	warnHTML    int
	largeHTML   int
	rejectHTML  int
	registryURL string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.timeout = d }
}

// WithMaxSize sets the Content-Length rejection threshold in bytes.
func WithMaxSize(n int64) Option {
	return func(f *Fetcher) { f.maxSize = n }
}

// WithRetry sets the attempt count and base backoff delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(f *Fetcher) {
		f.maxRetries = attempts
		f.retryDelay = delay
	}
}

// WithRepoContentFetcher sets the provider used for GitHub blob and
// gist URLs. Without one those URLs fail with EINVALID.
func WithRepoContentFetcher(repo doccache.RepoContentFetcher) Option {
	return func(f *Fetcher) { f.repo = repo }
}

// WithHTMLPipeline sets the extractor and converter used to normalize
// HTML responses.
func WithHTMLPipeline(e doccache.Extractor, c doccache.Converter) Option {
	return func(f *Fetcher) {
		f.extractor = e
		f.converter = c
	}
}

// WithHTMLSizeThresholds sets the warn, large and reject byte
// thresholds for the HTML pipeline.
func WithHTMLSizeThresholds(warn, large, reject int) Option {
	return func(f *Fetcher) {
		f.warnHTML = warn
		f.largeHTML = large
		f.rejectHTML = reject
	}
}

// WithRegistryURL overrides the npm registry endpoint.
func WithRegistryURL(u string) Option {
	return func(f *Fetcher) { f.registryURL = strings.TrimSuffix(u, "/") }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = logger }
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		logger:      slog.Default(),
		timeout:     DefaultFetchTimeout,
		maxSize:     DefaultMaxSize,
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		warnHTML:    DefaultWarnHTMLSize,
		largeHTML:   DefaultLargeHTMLSize,
		rejectHTML:  DefaultRejectHTMLSize,
		registryURL: "https://registry.npmjs.org",
	}
	for _, opt := range opts {
		opt(f)
	}
	f.client = &http.Client{Timeout: f.timeout}
	return f
}

// Fetch retrieves the document at rawURL, dispatching on the URL shape.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, cond doccache.Conditional) (*doccache.FetchResult, error) {
	if strings.HasPrefix(rawURL, "file://") {
		return f.fetchFile(rawURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, doccache.Errorf(doccache.EINVALID, "invalid URL %q: %v", rawURL, err)
	}

	switch {
	case strings.Contains(u.Host, "gist.github.com"):
		return f.fetchGist(ctx, u)
	case strings.Contains(u.Host, "github.com") && strings.Contains(u.Path, "/blob/"):
		return f.fetchBlob(ctx, u)
	case strings.Contains(u.Host, "npmjs.com") && strings.Contains(u.Path, "/package/"):
		return f.fetchNPMPackage(ctx, u)
	default:
		return f.fetchHTTP(ctx, rawURL, cond)
	}
}

// fetchHTTP performs a direct GET with conditional headers and retry.
func (f *Fetcher) fetchHTTP(ctx context.Context, rawURL string, cond doccache.Conditional) (*doccache.FetchResult, error) {
	var lastErr error
	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		result, err := f.doGet(ctx, rawURL, cond)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !retryable(err) || attempt == f.maxRetries {
			break
		}

		delay := f.retryDelay << (attempt - 1)
		f.logger.Debug("retrying fetch", "url", rawURL, "attempt", attempt, "delay", delay, "error", err)
		select {
		case <-ctx.Done():
			return nil, doccache.WrapError(ctx.Err(), doccache.ENETWORK, "fetch canceled: %s", rawURL)
		case <-time.After(delay):
		}
	}
	return nil, lastErr
}

func (f *Fetcher) doGet(ctx context.Context, rawURL string, cond doccache.Conditional) (*doccache.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, doccache.Errorf(doccache.EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	req.Header.Set("Accept", "*/*")
	if cond.ETag != "" {
		req.Header.Set("If-None-Match", cond.ETag)
	}
	if cond.LastModified != "" {
		req.Header.Set("If-Modified-Since", cond.LastModified)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, doccache.WrapError(err, doccache.ENETWORK, "fetch failed: %s", rawURL)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified:
		return &doccache.FetchResult{
			NotModified:  true,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}, nil
	case resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return nil, doccache.Errorf(doccache.ERATELIMIT, "provider rate limit exceeded: %s", rawURL)
	case resp.StatusCode == http.StatusNotFound:
		return nil, doccache.Errorf(doccache.ENOTFOUND, "not found: %s", rawURL)
	case resp.StatusCode != http.StatusOK:
		return nil, doccache.Errorf(doccache.ENETWORK, "HTTP %d for %s", resp.StatusCode, rawURL)
	}

	if resp.ContentLength > f.maxSize {
		return nil, doccache.Errorf(doccache.ETOOLARGE, "content length %d exceeds limit %d: %s", resp.ContentLength, f.maxSize, rawURL)
	}

	// Decode the body to UTF-8 using the charset declared in the
	// Content-Type header or sniffed from the content.
	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, doccache.WrapError(err, doccache.ENETWORK, "failed to decode response: %s", rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(reader, f.maxSize+1))
	if err != nil {
		return nil, doccache.WrapError(err, doccache.ENETWORK, "failed to read response: %s", rawURL)
	}
	if int64(len(body)) > f.maxSize {
		return nil, doccache.Errorf(doccache.ETOOLARGE, "response body exceeds limit %d: %s", f.maxSize, rawURL)
	}

	result := &doccache.FetchResult{
		Content:      string(body),
		ContentType:  detectContentType(rawURL, resp.Header.Get("Content-Type")),
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
	}

	if result.ContentType == "text/html" {
		return f.normalizeHTML(result)
	}
	return result, nil
}

// normalizeHTML runs the extractor/converter pipeline over an HTML
// result, replacing content with Markdown and attaching metadata.
func (f *Fetcher) normalizeHTML(result *doccache.FetchResult) (*doccache.FetchResult, error) {
	size := len(result.Content)
	switch {
	case size > f.rejectHTML:
		return nil, doccache.Errorf(doccache.ETOOLARGE, "HTML document of %d bytes exceeds limit %d", size, f.rejectHTML)
	case size > f.largeHTML:
		f.logger.Warn("large HTML document", "bytes", size)
	case size > f.warnHTML:
		f.logger.Info("sizable HTML document", "bytes", size)
	}

	if f.extractor == nil || f.converter == nil {
		return result, nil
	}

	extracted, err := f.extractor.Extract(result.Content)
	if err != nil {
		return nil, err
	}

	markdown, err := f.converter.Convert(extracted.ContentHTML)
	if err != nil {
		return nil, err
	}

	result.Content = markdown
	result.ContentType = "text/markdown"
	result.Metadata = &doccache.ContentMetadata{
		Title:       extracted.Title,
		Description: extracted.Description,
		Headings:    extracted.Headings,
	}
	return result, nil
}

// retryable reports whether a fetch error is worth another attempt.
// Validation failures, oversized content, missing resources and
// provider rate limits will not improve on retry.
func retryable(err error) bool {
	switch doccache.ErrorCode(err) {
	case doccache.EINVALID, doccache.ETOOLARGE, doccache.ENOTFOUND, doccache.ERATELIMIT:
		return false
	}
	var appErr *doccache.Error
	if errors.As(err, &appErr) && appErr.Err != nil {
		if errors.Is(appErr.Err, context.Canceled) || errors.Is(appErr.Err, context.DeadlineExceeded) {
			return false
		}
	}
	return true
}

// detectContentType infers the type from the URL extension first, then
// from URL shape, then from the response header.
func detectContentType(rawURL, header string) string {
	if ct := typeByExtension(rawURL); ct != "" {
		return ct
	}
	if u, err := url.Parse(rawURL); err == nil {
		p := strings.ToLower(u.Path)
		if strings.Contains(p, "/docs/") || strings.Contains(p, "/documentation/") {
			return "text/html"
		}
	}
	if header != "" {
		mediaType, _, _ := strings.Cut(header, ";")
		return strings.TrimSpace(strings.ToLower(mediaType))
	}
	return "text/plain"
}

// typeByExtension maps known file extensions to content types. Unknown
// extensions return "".
func typeByExtension(path string) string {
	lower := strings.ToLower(path)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	switch {
	case strings.HasSuffix(lower, ".md"), strings.HasSuffix(lower, ".markdown"):
		return "text/markdown"
	case strings.HasSuffix(lower, ".html"), strings.HasSuffix(lower, ".htm"):
		return "text/html"
	case strings.HasSuffix(lower, ".json"):
		return "application/json"
	case strings.HasSuffix(lower, ".txt"):
		return "text/plain"
	default:
		return ""
	}
}
