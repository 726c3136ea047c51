package http

import (
	"context"
	"net/url"
	"strings"

	"github.com/fwojciec/doccache"
)

// fetchGist resolves the gist id from the URL path and returns the
// first file of the gist.
func (f *Fetcher) fetchGist(ctx context.Context, u *url.URL) (*doccache.FetchResult, error) {
	if f.repo == nil {
		return nil, doccache.Errorf(doccache.EINVALID, "no GitHub client configured for %s", u)
	}

	parts := splitPath(u.Path)
	if len(parts) == 0 {
		return nil, doccache.Errorf(doccache.EINVALID, "no gist id in URL %s", u)
	}
	id := parts[len(parts)-1]

	content, filename, err := f.repo.GistContent(ctx, id)
	if err != nil {
		return nil, err
	}

	contentType := typeByExtension(filename)
	if contentType == "" {
		contentType = "text/markdown"
	}

	result := &doccache.FetchResult{Content: content, ContentType: contentType}
	if contentType == "text/html" {
		return f.normalizeHTML(result)
	}
	return result, nil
}

// fetchBlob parses owner/repo/branch/path out of a github.com blob URL
// and fetches the file through the repository-contents API.
func (f *Fetcher) fetchBlob(ctx context.Context, u *url.URL) (*doccache.FetchResult, error) {
	if f.repo == nil {
		return nil, doccache.Errorf(doccache.EINVALID, "no GitHub client configured for %s", u)
	}

	owner, repo, ref, path, err := parseBlobPath(u.Path)
	if err != nil {
		return nil, err
	}

	content, err := f.repo.BlobContent(ctx, owner, repo, ref, path)
	if err != nil {
		return nil, err
	}

	contentType := typeByExtension(path)
	if contentType == "" {
		contentType = "text/markdown"
	}

	result := &doccache.FetchResult{Content: content, ContentType: contentType}
	if contentType == "text/html" {
		return f.normalizeHTML(result)
	}
	return result, nil
}

// parseBlobPath splits "/owner/repo/blob/ref/path/to/file" into its
// components.
func parseBlobPath(p string) (owner, repo, ref, path string, err error) {
	parts := splitPath(p)
	// owner, repo, "blob", ref, at least one path segment
	if len(parts) < 5 || parts[2] != "blob" {
		return "", "", "", "", doccache.Errorf(doccache.EINVALID, "unrecognized GitHub blob path %q", p)
	}
	return parts[0], parts[1], parts[3], strings.Join(parts[4:], "/"), nil
}

// splitPath returns the non-empty segments of a URL path.
func splitPath(p string) []string {
	var parts []string
	for _, part := range strings.Split(p, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
