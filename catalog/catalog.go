// Package catalog implements the document catalog boundary: the
// operations a transport adapter calls on behalf of a client. It wires
// the store, the fetcher and the rate limiter together.
package catalog

import (
	"context"
	"log/slog"

	"github.com/fwojciec/doccache"
	"github.com/google/uuid"
)

// DefaultRefreshConcurrency bounds the refresh-all fan-out.
const DefaultRefreshConcurrency = 4

// Ensure Catalog implements doccache.CatalogService at compile time.
var _ doccache.CatalogService = (*Catalog)(nil)

// Catalog orchestrates document operations over a store and a fetcher,
// admitting every call through a per-client rate limiter.
type Catalog struct {
	store   doccache.DocumentService
	fetcher doccache.Fetcher
	limiter doccache.ClientLimiter
	logger  *slog.Logger

	refreshConcurrency int
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) { c.logger = logger }
}

// WithRefreshConcurrency bounds how many documents refresh in parallel.
func WithRefreshConcurrency(n int) Option {
	return func(c *Catalog) { c.refreshConcurrency = n }
}

// NewCatalog creates a Catalog over the given collaborators.
func NewCatalog(store doccache.DocumentService, fetcher doccache.Fetcher, limiter doccache.ClientLimiter, opts ...Option) *Catalog {
	c := &Catalog{
		store:              store,
		fetcher:            fetcher,
		limiter:            limiter,
		logger:             slog.Default(),
		refreshConcurrency: DefaultRefreshConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// admit runs the rate-limit check for one call and returns the request
// id used to correlate log lines.
func (c *Catalog) admit(clientID, op string) (string, error) {
	requestID := uuid.NewString()
	res := c.limiter.Check(clientID)
	if !res.Allowed {
		c.logger.Warn("request denied by rate limit",
			"requestId", requestID, "clientId", clientID, "op", op, "retryAfter", res.RetryAfter)
		return requestID, doccache.Errorf(doccache.ERATELIMIT,
			"rate limit exceeded for client %q, retry after %s", clientID, res.RetryAfter)
	}
	c.logger.Debug("request admitted",
		"requestId", requestID, "clientId", clientID, "op", op, "remaining", res.Remaining)
	return requestID, nil
}

// List returns documents matching the filter.
func (c *Catalog) List(ctx context.Context, clientID string, filter doccache.DocumentFilter) ([]*doccache.Document, error) {
	if _, err := c.admit(clientID, "list"); err != nil {
		return nil, err
	}
	return c.store.FindDocuments(ctx, filter)
}

// AddOrUpdate registers a document or updates its caller-supplied
// fields, then fetches content when a source URL is set. A failed fetch
// still persists the record, with UpdateError set and no content.
func (c *Catalog) AddOrUpdate(ctx context.Context, clientID string, req doccache.UpsertRequest) (*doccache.Document, error) {
	requestID, err := c.admit(clientID, "addOrUpdate")
	if err != nil {
		return nil, err
	}

	doc := &doccache.Document{
		Name:        req.Name,
		SourceURL:   req.SourceURL,
		AltURL:      req.AltURL,
		Description: req.Description,
		Category:    req.Category,
		Tags:        req.Tags,
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	// The store's upsert merges content state (versions, validators,
	// metadata) into the record, so only the caller-supplied fields are
	// set here.
	if err := c.store.UpsertDocument(ctx, doc); err != nil {
		return nil, err
	}

	if req.SourceURL != "" {
		if _, err := c.fetchAndSave(ctx, doc, false); err != nil {
			c.logger.Warn("initial fetch failed",
				"requestId", requestID, "name", doc.Name, "error", err)
		}
	}

	return c.store.FindDocument(ctx, doc.Name)
}

// Remove deletes a document and all of its stored artifacts.
func (c *Catalog) Remove(ctx context.Context, clientID, name string) error {
	if _, err := c.admit(clientID, "remove"); err != nil {
		return err
	}
	return c.store.DeleteDocument(ctx, name)
}

// Search ranks documents matching the filter against a free-text
// query. Per-document content is consulted only when the document's
// term filter reports a possible hit, so unrelated documents stay on
// disk.
func (c *Catalog) Search(ctx context.Context, clientID, query string, filter doccache.DocumentFilter) ([]doccache.ScoredDocument, error) {
	if _, err := c.admit(clientID, "search"); err != nil {
		return nil, err
	}

	docs, err := c.store.FindDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	terms := doccache.Tokenize(query)
	byName := make(map[string]*doccache.Document, len(docs))
	for _, doc := range docs {
		byName[doc.Name] = doc
	}

	ranked := doccache.RankDocuments(docs, query, func(name string) string {
		if len(terms) == 0 {
			return ""
		}
		possible, err := c.store.MatchesAnyTerm(ctx, name, terms)
		if err != nil || !possible {
			return ""
		}
		return byName[name].CurrentContent()
	})
	return ranked, nil
}

// SearchLines returns the matching lines of one document's content.
func (c *Catalog) SearchLines(ctx context.Context, clientID, name, query string) ([]doccache.LineMatch, error) {
	if _, err := c.admit(clientID, "searchLines"); err != nil {
		return nil, err
	}
	return c.store.SearchLines(ctx, name, query)
}

// Stats summarizes the catalog contents.
func (c *Catalog) Stats(ctx context.Context, clientID string) (*doccache.Stats, error) {
	if _, err := c.admit(clientID, "stats"); err != nil {
		return nil, err
	}

	docs, err := c.store.FindDocuments(ctx, doccache.DocumentFilter{})
	if err != nil {
		return nil, err
	}

	stats := &doccache.Stats{Documents: len(docs)}
	for _, doc := range docs {
		if content := doc.CurrentContent(); content != "" {
			stats.CachedDocuments++
			stats.CachedBytes += int64(len(content))
		}
		if doc.UpdateError != "" {
			stats.FailedDocuments++
		}
		if doc.LastSuccessfulUpdate.After(stats.LastUpdated) {
			stats.LastUpdated = doc.LastSuccessfulUpdate
		}
	}
	return stats, nil
}
