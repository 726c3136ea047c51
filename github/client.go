// Package github implements doccache.RepoContentFetcher on top of the
// GitHub REST API.
package github

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/fwojciec/doccache"
	"github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

// Ensure Client implements doccache.RepoContentFetcher at compile time.
var _ doccache.RepoContentFetcher = (*Client)(nil)

// Client fetches repository and gist content from GitHub.
// Unauthenticated clients work but share GitHub's low anonymous rate
// limit; supply a token for anything beyond occasional use.
type Client struct {
	gh *github.Client

	token   string
	baseURL string
	httpc   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken authenticates API calls with a personal access token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithBaseURL points the client at a different API endpoint. The URL
// must end with a trailing slash. Used for API mocks in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// NewClient creates a GitHub API client.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}

	httpc := c.httpc
	if c.token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.token})
		ctx := context.Background()
		if httpc != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, httpc)
		}
		httpc = oauth2.NewClient(ctx, src)
	}

	c.gh = github.NewClient(httpc)
	if c.baseURL != "" {
		if !strings.HasSuffix(c.baseURL, "/") {
			c.baseURL += "/"
		}
		u, err := c.gh.BaseURL.Parse(c.baseURL)
		if err != nil {
			return nil, doccache.Errorf(doccache.EINVALID, "invalid base URL %q: %v", c.baseURL, err)
		}
		c.gh.BaseURL = u
	}
	return c, nil
}

// BlobContent returns the decoded content of a file in a repository.
// An empty ref selects the repository's default branch.
func (c *Client) BlobContent(ctx context.Context, owner, repo, ref, path string) (string, error) {
	opts := &github.RepositoryContentGetOptions{Ref: ref}
	file, _, _, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, opts)
	if err != nil {
		return "", apiError(err, owner+"/"+repo+"/"+path)
	}
	if file == nil {
		return "", doccache.Errorf(doccache.EINVALID, "path is a directory: %s/%s/%s", owner, repo, path)
	}

	content, err := file.GetContent()
	if err != nil {
		return "", doccache.WrapError(err, doccache.ENETWORK, "failed to decode %s/%s/%s", owner, repo, path)
	}
	return content, nil
}

// GistContent returns the content and filename of the first file of a
// gist, with filenames ordered lexicographically for determinism.
func (c *Client) GistContent(ctx context.Context, id string) (string, string, error) {
	gist, _, err := c.gh.Gists.Get(ctx, id)
	if err != nil {
		return "", "", apiError(err, "gist "+id)
	}
	if len(gist.Files) == 0 {
		return "", "", doccache.Errorf(doccache.ENOTFOUND, "gist %s has no files", id)
	}

	names := make([]string, 0, len(gist.Files))
	for name := range gist.Files {
		names = append(names, string(name))
	}
	sort.Strings(names)

	file := gist.Files[github.GistFilename(names[0])]
	return file.GetContent(), file.GetFilename(), nil
}

// apiError maps go-github errors to the package error codes.
func apiError(err error, subject string) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return doccache.WrapError(err, doccache.ERATELIMIT, "provider rate limit exceeded: %s", subject)
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusNotFound:
			return doccache.Errorf(doccache.ENOTFOUND, "not found: %s", subject)
		case http.StatusForbidden:
			if respErr.Response.Header.Get("X-RateLimit-Remaining") == "0" {
				return doccache.WrapError(err, doccache.ERATELIMIT, "provider rate limit exceeded: %s", subject)
			}
		}
	}
	return doccache.WrapError(err, doccache.ENETWORK, "GitHub request failed: %s", subject)
}
