package catalog

import (
	"context"
	"time"

	"github.com/fwojciec/doccache"
	"github.com/fwojciec/doccache/batch"
)

// Refresh re-fetches cached content. With a name it refreshes one
// document; without, every document that has a source URL, fanned out
// in bounded batches. Per-document failures are reported in the
// results, not returned as an error, so one bad origin cannot abort a
// full refresh.
func (c *Catalog) Refresh(ctx context.Context, clientID string, opts doccache.RefreshOptions) ([]doccache.RefreshResult, error) {
	requestID, err := c.admit(clientID, "refresh")
	if err != nil {
		return nil, err
	}

	if opts.Name != "" {
		doc, err := c.store.FindDocument(ctx, opts.Name)
		if err != nil {
			return nil, err
		}
		return []doccache.RefreshResult{c.refreshOne(ctx, requestID, doc, opts.Force)}, nil
	}

	docs, err := c.store.FindDocuments(ctx, doccache.DocumentFilter{})
	if err != nil {
		return nil, err
	}

	// The fetcher already retries transient failures, so the processor
	// runs each document once; refreshConcurrency caps the batch size.
	p := batch.New[doccache.RefreshResult](
		batch.WithMaxBatchSize(c.refreshConcurrency),
		batch.WithRetry(1, 0),
	)
	futures := make([]*batch.Future[doccache.RefreshResult], len(docs))
	for i, doc := range docs {
		futures[i] = p.Submit(func(context.Context) (doccache.RefreshResult, error) {
			return c.refreshOne(ctx, requestID, doc, opts.Force), nil
		})
	}
	p.Drain(ctx)

	results := make([]doccache.RefreshResult, len(docs))
	for i, f := range futures {
		result, err := f.Wait(ctx)
		if err != nil {
			return nil, err
		}
		results[i] = result
	}
	return results, nil
}

// refreshOne fetches and saves a single document.
func (c *Catalog) refreshOne(ctx context.Context, requestID string, doc *doccache.Document, force bool) doccache.RefreshResult {
	result := doccache.RefreshResult{Name: doc.Name}

	if doc.SourceURL == "" {
		return result
	}

	notModified, err := c.fetchAndSave(ctx, doc, force)
	if err != nil {
		c.logger.Warn("refresh failed",
			"requestId", requestID, "name", doc.Name, "error", err)
		result.Err = doccache.ErrorMessage(err)
		return result
	}
	if notModified {
		result.NotModified = true
		return result
	}

	result.Refreshed = true
	c.logger.Info("document refreshed", "requestId", requestID, "name", doc.Name)
	return result
}

// fetchAndSave retrieves the document's origin and saves the result.
// With force set, stored validators are bypassed so the origin cannot
// answer 304. A provider rate limit on the primary URL falls over to
// the alternate URL when one is configured. Fetch failures are recorded
// on the document before being returned.
func (c *Catalog) fetchAndSave(ctx context.Context, doc *doccache.Document, force bool) (notModified bool, err error) {
	var cond doccache.Conditional
	if !force {
		cond = doccache.Conditional{
			ETag:         doc.Resource.ETag,
			LastModified: doc.Resource.LastModified,
		}
	}

	res, err := c.fetcher.Fetch(ctx, doc.SourceURL, cond)
	if doccache.ErrorCode(err) == doccache.ERATELIMIT && doc.AltURL != "" {
		c.logger.Info("provider rate limited, switching to alternate URL",
			"name", doc.Name, "altUrl", doc.AltURL)
		res, err = c.fetcher.Fetch(ctx, doc.AltURL, cond)
	}
	if err != nil {
		c.recordFailure(ctx, doc, err)
		return false, err
	}

	if err := c.store.SaveContent(ctx, doc.Name, res, doccache.SaveOptions{Force: force}); err != nil {
		return false, err
	}
	return res.NotModified, nil
}

// recordFailure persists the fetch error on the document record.
func (c *Catalog) recordFailure(ctx context.Context, doc *doccache.Document, fetchErr error) {
	failed := *doc
	failed.UpdateError = doccache.ErrorMessage(fetchErr)
	failed.LastAttemptedUpdate = time.Now()
	if err := c.store.UpsertDocument(ctx, &failed); err != nil {
		c.logger.Error("failed to record fetch error", "name", doc.Name, "error", err)
	}
}
