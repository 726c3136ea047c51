package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/doccache"
	main "github.com/fwojciec/doccache/cmd/doccache"
	"github.com/fwojciec/doccache/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeps(catalog doccache.CatalogService) (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &main.Dependencies{
		Ctx:      context.Background(),
		Stdout:   stdout,
		Stderr:   stderr,
		ClientID: "test-client",
		Catalog:  catalog,
	}, stdout, stderr
}

func TestListCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists documents with status", func(t *testing.T) {
		t.Parallel()

		catalog := &mock.CatalogService{
			ListFn: func(_ context.Context, clientID string, _ doccache.DocumentFilter) ([]*doccache.Document, error) {
				assert.Equal(t, "test-client", clientID)
				return []*doccache.Document{
					{
						Name:      "redis",
						SourceURL: "https://redis.io/docs/",
						Versions:  []doccache.Version{{Version: "1", Content: "# Redis"}},
					},
					{Name: "broken", SourceURL: "https://example.com/", UpdateError: "origin down"},
				}, nil
			},
		}

		deps, stdout, _ := newDeps(catalog)
		cmd := &main.ListCmd{}
		require.NoError(t, cmd.Run(deps))

		out := stdout.String()
		assert.Contains(t, out, "redis")
		assert.Contains(t, out, "cached")
		assert.Contains(t, out, "broken")
		assert.Contains(t, out, "failed")
	})

	t.Run("empty catalog prints a hint", func(t *testing.T) {
		t.Parallel()

		catalog := &mock.CatalogService{
			ListFn: func(_ context.Context, _ string, _ doccache.DocumentFilter) ([]*doccache.Document, error) {
				return nil, nil
			},
		}

		deps, stdout, _ := newDeps(catalog)
		cmd := &main.ListCmd{}
		require.NoError(t, cmd.Run(deps))

		assert.Contains(t, stdout.String(), "No documents found")
	})

	t.Run("passes category and tag filters", func(t *testing.T) {
		t.Parallel()

		catalog := &mock.CatalogService{
			ListFn: func(_ context.Context, _ string, filter doccache.DocumentFilter) ([]*doccache.Document, error) {
				require.NotNil(t, filter.Category)
				require.NotNil(t, filter.Tag)
				assert.Equal(t, "database", *filter.Category)
				assert.Equal(t, "cache", *filter.Tag)
				return nil, nil
			},
		}

		deps, _, _ := newDeps(catalog)
		cmd := &main.ListCmd{Category: "database", Tag: "cache"}
		require.NoError(t, cmd.Run(deps))
	})
}

func TestRemoveCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("requires force", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := newDeps(&mock.CatalogService{})
		cmd := &main.RemoveCmd{Name: "redis"}

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, doccache.EINVALID, doccache.ErrorCode(err))
		assert.Contains(t, stderr.String(), "--force")
	})

	t.Run("removes with force", func(t *testing.T) {
		t.Parallel()

		var removed string
		catalog := &mock.CatalogService{
			RemoveFn: func(_ context.Context, _ string, name string) error {
				removed = name
				return nil
			},
		}

		deps, stdout, _ := newDeps(catalog)
		cmd := &main.RemoveCmd{Name: "redis", Force: true}
		require.NoError(t, cmd.Run(deps))

		assert.Equal(t, "redis", removed)
		assert.Contains(t, stdout.String(), `Removed "redis"`)
	})
}

func TestRefreshCmd_Run(t *testing.T) {
	t.Parallel()

	catalog := &mock.CatalogService{
		RefreshFn: func(_ context.Context, _ string, opts doccache.RefreshOptions) ([]doccache.RefreshResult, error) {
			assert.Empty(t, opts.Name)
			assert.True(t, opts.Force)
			return []doccache.RefreshResult{
				{Name: "good", Refreshed: true},
				{Name: "same", NotModified: true},
				{Name: "bad", Err: "origin down"},
			}, nil
		},
	}

	deps, stdout, _ := newDeps(catalog)
	cmd := &main.RefreshCmd{Force: true}
	require.NoError(t, cmd.Run(deps))

	out := stdout.String()
	assert.Contains(t, out, "refreshed")
	assert.Contains(t, out, "not modified")
	assert.Contains(t, out, "failed: origin down")
}
