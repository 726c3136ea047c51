package doccache

import (
	"context"
	"time"
)

// DefaultKeepVersions is the number of content versions retained per document.
const DefaultKeepVersions = 3

// Document represents one named documentation source: its metadata, bounded
// version history, and freshness bookkeeping. The name is the sole identity;
// no two documents share a name.
type Document struct {
	Name        string   `json:"name"`
	SourceURL   string   `json:"sourceUrl,omitempty"`
	AltURL      string   `json:"altUrl,omitempty"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	// Resource holds conditional-request state for documents whose origin
	// is a URL. Unset for locally supplied content.
	Resource ResourceInfo `json:"resourceInfo"`

	// Versions is ordered newest first and capped at the store's
	// keep-versions setting.
	Versions []Version `json:"versions,omitempty"`

	// Metadata extracted during HTML normalization, if any.
	Metadata *ContentMetadata `json:"metadata,omitempty"`

	// ContentType of the current version, used to pick the cache file
	// extension.
	ContentType string `json:"contentType,omitempty"`

	LastSuccessfulUpdate time.Time `json:"lastSuccessfulUpdate,omitzero"`
	LastAttemptedUpdate  time.Time `json:"lastAttemptedUpdate,omitzero"`
	UpdateError          string    `json:"updateError,omitempty"`
}

// ResourceInfo holds validators for conditional refresh of URL-backed content.
type ResourceInfo struct {
	ETag         string `json:"eTag,omitempty"`
	LastModified string `json:"lastModified,omitempty"`
	ContentHash  string `json:"contentHash,omitempty"`
}

// Version is a single content snapshot.
type Version struct {
	Version   string    `json:"version"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.Name == "" {
		return Errorf(EINVALID, "document name required")
	}
	return nil
}

// CurrentContent returns the content of the newest version, or "" when no
// content has been saved yet.
func (d *Document) CurrentContent() string {
	if len(d.Versions) == 0 {
		return ""
	}
	return d.Versions[0].Content
}

// CurrentVersion returns the id of the newest version, or "".
func (d *Document) CurrentVersion() string {
	if len(d.Versions) == 0 {
		return ""
	}
	return d.Versions[0].Version
}

// DocumentFilter represents a filter for FindDocuments.
type DocumentFilter struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
	Tag      *string `json:"tag"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// SaveOptions controls how content is recorded by SaveContent.
type SaveOptions struct {
	// Version id for the new snapshot. Defaults to the save timestamp.
	Version string

	// Force records a new version even when the content hash is unchanged.
	Force bool
}

// LineMatch is a single line-level search hit.
type LineMatch struct {
	// Line is 1-based.
	Line    int      `json:"line"`
	Content string   `json:"content"`
	Context []string `json:"context"`
}

// DocumentService manages documents and their versioned, indexed content.
//
// Implementations must serialize mutating operations on the same name;
// operations on different names may run concurrently.
type DocumentService interface {
	// UpsertDocument creates or updates a document's descriptive metadata.
	// Version history and resource info are preserved on update.
	UpsertDocument(ctx context.Context, doc *Document) error

	// FindDocument retrieves a document by name.
	// Returns ENOTFOUND if the document does not exist.
	FindDocument(ctx context.Context, name string) (*Document, error)

	// FindDocuments retrieves documents matching the filter, in stable
	// name order.
	FindDocuments(ctx context.Context, filter DocumentFilter) ([]*Document, error)

	// SaveContent records fetched content as the document's newest version,
	// trims history to the keep-versions cap and rebuilds the search index.
	// A result with NotModified set only touches the attempt timestamp.
	// The document is created on first save if it does not exist.
	SaveContent(ctx context.Context, name string, res *FetchResult, opts SaveOptions) error

	// ContentVersion returns the content stored under the given version id.
	// Returns ENOTFOUND for unknown names or evicted versions.
	ContentVersion(ctx context.Context, name, version string) (string, error)

	// DeleteDocument permanently removes a document together with its
	// stored content, metadata and index. Returns ENOTFOUND if the
	// document does not exist.
	DeleteDocument(ctx context.Context, name string) error

	// SearchLines returns the lines of the current version that contain
	// any token of the query, with surrounding context.
	SearchLines(ctx context.Context, name, query string) ([]LineMatch, error)

	// MatchesAnyTerm reports whether the document's index may contain any
	// of the given terms. False negatives are not allowed; false positives
	// are (the check may be backed by a bloom filter).
	MatchesAnyTerm(ctx context.Context, name string, terms []string) (bool, error)
}
