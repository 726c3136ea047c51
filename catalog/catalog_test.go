package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/doccache"
	"github.com/fwojciec/doccache/catalog"
	"github.com/fwojciec/doccache/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allowAll() *mock.ClientLimiter {
	return &mock.ClientLimiter{CheckFn: func(clientID string) doccache.LimitResult {
		return doccache.LimitResult{Allowed: true, Remaining: 1}
	}}
}

func denyAll(retryAfter time.Duration) *mock.ClientLimiter {
	return &mock.ClientLimiter{CheckFn: func(clientID string) doccache.LimitResult {
		return doccache.LimitResult{Allowed: false, RetryAfter: retryAfter}
	}}
}

// Story: Admission
// Every operation is admitted through the client rate limiter.

func TestCatalog_DeniedClientGetsRateLimitError(t *testing.T) {
	t.Parallel()

	c := catalog.NewCatalog(&mock.DocumentService{}, &mock.Fetcher{}, denyAll(2*time.Second))

	_, err := c.List(context.Background(), "client-1", doccache.DocumentFilter{})

	require.Error(t, err)
	assert.Equal(t, doccache.ERATELIMIT, doccache.ErrorCode(err))
	assert.Contains(t, doccache.ErrorMessage(err), "2s")
}

func TestCatalog_List(t *testing.T) {
	t.Parallel()

	store := &mock.DocumentService{
		FindDocumentsFn: func(ctx context.Context, filter doccache.DocumentFilter) ([]*doccache.Document, error) {
			require.NotNil(t, filter.Category)
			assert.Equal(t, "database", *filter.Category)
			return []*doccache.Document{{Name: "redis"}}, nil
		},
	}
	c := catalog.NewCatalog(store, &mock.Fetcher{}, allowAll())

	cat := "database"
	docs, err := c.List(context.Background(), "client-1", doccache.DocumentFilter{Category: &cat})

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "redis", docs[0].Name)
}

// Story: Registration
// AddOrUpdate persists the record first, then fetches content; a failed
// fetch is recorded on the document, never surfaced as a phantom save.

func TestCatalog_AddOrUpdateFetchesContent(t *testing.T) {
	t.Parallel()

	var upserted, saved bool
	store := &mock.DocumentService{
		UpsertDocumentFn: func(ctx context.Context, doc *doccache.Document) error {
			upserted = true
			assert.Equal(t, "mylib", doc.Name)
			return nil
		},
		SaveContentFn: func(ctx context.Context, name string, res *doccache.FetchResult, opts doccache.SaveOptions) error {
			saved = true
			assert.Equal(t, "mylib", name)
			assert.Equal(t, "# mylib", res.Content)
			assert.False(t, opts.Force)
			return nil
		},
		FindDocumentFn: func(ctx context.Context, name string) (*doccache.Document, error) {
			return &doccache.Document{Name: name, SourceURL: "https://example.com/mylib.md"}, nil
		},
	}
	fetcher := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string, cond doccache.Conditional) (*doccache.FetchResult, error) {
			assert.Equal(t, "https://example.com/mylib.md", url)
			return &doccache.FetchResult{Content: "# mylib", ContentType: "text/markdown"}, nil
		},
	}

	c := catalog.NewCatalog(store, fetcher, allowAll())
	doc, err := c.AddOrUpdate(context.Background(), "client-1", doccache.UpsertRequest{
		Name:      "mylib",
		SourceURL: "https://example.com/mylib.md",
	})

	require.NoError(t, err)
	assert.True(t, upserted)
	assert.True(t, saved)
	assert.Equal(t, "mylib", doc.Name)
}

func TestCatalog_AddOrUpdateRecordsFetchFailure(t *testing.T) {
	t.Parallel()

	var upserts []*doccache.Document
	store := &mock.DocumentService{
		UpsertDocumentFn: func(ctx context.Context, doc *doccache.Document) error {
			copied := *doc
			upserts = append(upserts, &copied)
			return nil
		},
		SaveContentFn: func(ctx context.Context, name string, res *doccache.FetchResult, opts doccache.SaveOptions) error {
			t.Fatal("no content must be saved when the fetch fails")
			return nil
		},
		FindDocumentFn: func(ctx context.Context, name string) (*doccache.Document, error) {
			return &doccache.Document{Name: name, UpdateError: "fetch failed: origin down"}, nil
		},
	}
	fetcher := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string, cond doccache.Conditional) (*doccache.FetchResult, error) {
			return nil, doccache.Errorf(doccache.ENETWORK, "fetch failed: origin down")
		},
	}

	c := catalog.NewCatalog(store, fetcher, allowAll())
	doc, err := c.AddOrUpdate(context.Background(), "client-1", doccache.UpsertRequest{
		Name:      "broken",
		SourceURL: "https://example.com/broken.md",
	})

	// The registration itself succeeds; the failure lives on the record.
	require.NoError(t, err)
	assert.Equal(t, "fetch failed: origin down", doc.UpdateError)

	require.Len(t, upserts, 2, "initial upsert plus failure record")
	assert.Equal(t, "fetch failed: origin down", upserts[1].UpdateError)
	assert.False(t, upserts[1].LastAttemptedUpdate.IsZero())
}

func TestCatalog_AddOrUpdateRejectsInvalidRequest(t *testing.T) {
	t.Parallel()

	c := catalog.NewCatalog(&mock.DocumentService{}, &mock.Fetcher{}, allowAll())

	_, err := c.AddOrUpdate(context.Background(), "client-1", doccache.UpsertRequest{Name: ""})

	require.Error(t, err)
	assert.Equal(t, doccache.EINVALID, doccache.ErrorCode(err))
}

// Story: Search
// Content is consulted only for documents whose term filter reports a
// possible hit.

func TestCatalog_SearchPrescreensContent(t *testing.T) {
	t.Parallel()

	docs := []*doccache.Document{
		{Name: "alpha", Versions: []doccache.Version{{Version: "1", Content: "kafka consumer groups"}}},
		{Name: "beta", Versions: []doccache.Version{{Version: "1", Content: "unrelated text"}}},
	}
	var screened []string
	store := &mock.DocumentService{
		FindDocumentsFn: func(ctx context.Context, filter doccache.DocumentFilter) ([]*doccache.Document, error) {
			return docs, nil
		},
		MatchesAnyTermFn: func(ctx context.Context, name string, terms []string) (bool, error) {
			screened = append(screened, name)
			return name == "alpha", nil
		},
	}

	c := catalog.NewCatalog(store, &mock.Fetcher{}, allowAll())
	results, err := c.Search(context.Background(), "client-1", "kafka", doccache.DocumentFilter{})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha", "beta"}, screened)
	require.Len(t, results, 1)
	assert.Equal(t, "alpha", results[0].Document.Name)
	assert.Positive(t, results[0].Score)
}

func TestCatalog_SearchLines(t *testing.T) {
	t.Parallel()

	store := &mock.DocumentService{
		SearchLinesFn: func(ctx context.Context, name, query string) ([]doccache.LineMatch, error) {
			assert.Equal(t, "alpha", name)
			assert.Equal(t, "consumer", query)
			return []doccache.LineMatch{{Line: 3, Content: "kafka consumer groups"}}, nil
		},
	}

	c := catalog.NewCatalog(store, &mock.Fetcher{}, allowAll())
	matches, err := c.SearchLines(context.Background(), "client-1", "alpha", "consumer")

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 3, matches[0].Line)
}

// Story: Stats

func TestCatalog_Stats(t *testing.T) {
	t.Parallel()

	newer := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	older := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := &mock.DocumentService{
		FindDocumentsFn: func(ctx context.Context, filter doccache.DocumentFilter) ([]*doccache.Document, error) {
			return []*doccache.Document{
				{Name: "a", Versions: []doccache.Version{{Version: "1", Content: "12345"}}, LastSuccessfulUpdate: older},
				{Name: "b", Versions: []doccache.Version{{Version: "1", Content: "1234567890"}}, LastSuccessfulUpdate: newer},
				{Name: "c", UpdateError: "origin down"},
			}, nil
		},
	}

	c := catalog.NewCatalog(store, &mock.Fetcher{}, allowAll())
	stats, err := c.Stats(context.Background(), "client-1")

	require.NoError(t, err)
	assert.Equal(t, 3, stats.Documents)
	assert.Equal(t, 2, stats.CachedDocuments)
	assert.Equal(t, int64(15), stats.CachedBytes)
	assert.Equal(t, 1, stats.FailedDocuments)
	assert.Equal(t, newer, stats.LastUpdated)
}
