package doccache

import (
	"context"
	"time"
)

// UpsertRequest carries the caller-supplied fields of a document
// registration or update.
type UpsertRequest struct {
	Name        string   `json:"name"`
	SourceURL   string   `json:"sourceUrl,omitempty"`
	AltURL      string   `json:"altUrl,omitempty"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// RefreshOptions selects what to refresh and how.
type RefreshOptions struct {
	// Name limits the refresh to one document. Empty refreshes every
	// document that has a source URL.
	Name string

	// Force bypasses stored validators so the origin is re-fetched even
	// when it would answer 304.
	Force bool
}

// RefreshResult reports the outcome of refreshing one document.
type RefreshResult struct {
	Name        string `json:"name"`
	Refreshed   bool   `json:"refreshed"`
	NotModified bool   `json:"notModified,omitempty"`
	Err         string `json:"error,omitempty"`
}

// Stats summarizes the state of the catalog.
type Stats struct {
	Documents       int       `json:"documents"`
	CachedDocuments int       `json:"cachedDocuments"`
	CachedBytes     int64     `json:"cachedBytes"`
	FailedDocuments int       `json:"failedDocuments"`
	LastUpdated     time.Time `json:"lastUpdated,omitzero"`
}

// CatalogService is the inbound boundary consumed by transport
// adapters (CLI, protocol servers). Every call carries a client id for
// rate limiting; denied calls fail with ERATELIMIT.
type CatalogService interface {
	List(ctx context.Context, clientID string, filter DocumentFilter) ([]*Document, error)
	AddOrUpdate(ctx context.Context, clientID string, req UpsertRequest) (*Document, error)
	Remove(ctx context.Context, clientID, name string) error
	Search(ctx context.Context, clientID, query string, filter DocumentFilter) ([]ScoredDocument, error)
	SearchLines(ctx context.Context, clientID, name, query string) ([]LineMatch, error)
	Refresh(ctx context.Context, clientID string, opts RefreshOptions) ([]RefreshResult, error)
	Stats(ctx context.Context, clientID string) (*Stats, error)
}
