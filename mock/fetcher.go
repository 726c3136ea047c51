package mock

import (
	"context"

	"github.com/fwojciec/doccache"
)

var _ doccache.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of doccache.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string, cond doccache.Conditional) (*doccache.FetchResult, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string, cond doccache.Conditional) (*doccache.FetchResult, error) {
	return f.FetchFn(ctx, url, cond)
}

var _ doccache.RepoContentFetcher = (*RepoContentFetcher)(nil)

// RepoContentFetcher is a mock implementation of doccache.RepoContentFetcher.
type RepoContentFetcher struct {
	BlobContentFn func(ctx context.Context, owner, repo, ref, path string) (string, error)
	GistContentFn func(ctx context.Context, id string) (content, filename string, err error)
}

func (f *RepoContentFetcher) BlobContent(ctx context.Context, owner, repo, ref, path string) (string, error) {
	return f.BlobContentFn(ctx, owner, repo, ref, path)
}

func (f *RepoContentFetcher) GistContent(ctx context.Context, id string) (content, filename string, err error) {
	return f.GistContentFn(ctx, id)
}
