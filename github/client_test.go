package github_test

import (
	"context"
	"encoding/base64"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/doccache"
	"github.com/fwojciec/doccache/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, handler nethttp.Handler) *github.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := github.NewClient(github.WithBaseURL(srv.URL + "/"))
	require.NoError(t, err)
	return client
}

func TestClient_BlobContent(t *testing.T) {
	t.Parallel()

	t.Run("decodes base64 file content", func(t *testing.T) {
		t.Parallel()

		client := newClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			assert.Equal(t, "/repos/golang/go/contents/README.md", r.URL.Path)
			assert.Equal(t, "master", r.URL.Query().Get("ref"))
			encoded := base64.StdEncoding.EncodeToString([]byte("# The Go Programming Language"))
			fmt.Fprintf(w, `{"type":"file","name":"README.md","path":"README.md","encoding":"base64","content":%q}`, encoded)
		}))

		content, err := client.BlobContent(context.Background(), "golang", "go", "master", "README.md")

		require.NoError(t, err)
		assert.Equal(t, "# The Go Programming Language", content)
	})

	t.Run("missing file maps to not found", func(t *testing.T) {
		t.Parallel()

		client := newClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			w.WriteHeader(nethttp.StatusNotFound)
			fmt.Fprint(w, `{"message":"Not Found"}`)
		}))

		_, err := client.BlobContent(context.Background(), "o", "r", "", "absent.md")

		require.Error(t, err)
		assert.Equal(t, doccache.ENOTFOUND, doccache.ErrorCode(err))
	})

	t.Run("exhausted quota maps to rate limit", func(t *testing.T) {
		t.Parallel()

		client := newClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("X-RateLimit-Limit", "60")
			w.Header().Set("X-RateLimit-Reset", "1735689600")
			w.WriteHeader(nethttp.StatusForbidden)
			fmt.Fprint(w, `{"message":"API rate limit exceeded"}`)
		}))

		_, err := client.BlobContent(context.Background(), "o", "r", "", "README.md")

		require.Error(t, err)
		assert.Equal(t, doccache.ERATELIMIT, doccache.ErrorCode(err))
	})
}

func TestClient_GistContent(t *testing.T) {
	t.Parallel()

	t.Run("returns first file in lexicographic order", func(t *testing.T) {
		t.Parallel()

		client := newClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			assert.Equal(t, "/gists/abc123", r.URL.Path)
			fmt.Fprint(w, `{"id":"abc123","files":{
				"b-notes.txt":{"filename":"b-notes.txt","content":"second"},
				"a-readme.md":{"filename":"a-readme.md","content":"first"}
			}}`)
		}))

		content, filename, err := client.GistContent(context.Background(), "abc123")

		require.NoError(t, err)
		assert.Equal(t, "first", content)
		assert.Equal(t, "a-readme.md", filename)
	})

	t.Run("empty gist maps to not found", func(t *testing.T) {
		t.Parallel()

		client := newClient(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			fmt.Fprint(w, `{"id":"empty","files":{}}`)
		}))

		_, _, err := client.GistContent(context.Background(), "empty")

		require.Error(t, err)
		assert.Equal(t, doccache.ENOTFOUND, doccache.ErrorCode(err))
	})
}
