package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/fwojciec/doccache"
)

// registryDoc is the slice of the npm registry response we care about.
// The repository field is a string in older packuments and an object in
// newer ones.
type registryDoc struct {
	Repository json.RawMessage `json:"repository"`
}

type registryRepo struct {
	URL string `json:"url"`
}

// fetchNPMPackage resolves an npmjs.com package URL to the package's
// GitHub repository via the public registry, then fetches the requested
// in-package file (README.md when the URL names none).
func (f *Fetcher) fetchNPMPackage(ctx context.Context, u *url.URL) (*doccache.FetchResult, error) {
	pkg, inPath, err := parsePackagePath(u.Path)
	if err != nil {
		return nil, err
	}

	repoURL, err := f.lookupRepository(ctx, pkg)
	if err != nil {
		return nil, err
	}

	owner, repo, err := parseRepositoryURL(repoURL)
	if err != nil {
		return nil, err
	}

	if f.repo == nil {
		return nil, doccache.Errorf(doccache.EINVALID, "no GitHub client configured for %s", u)
	}

	// Empty ref selects the repository's default branch.
	content, err := f.repo.BlobContent(ctx, owner, repo, "", inPath)
	if err != nil {
		return nil, err
	}

	contentType := typeByExtension(inPath)
	if contentType == "" {
		contentType = "text/markdown"
	}

	result := &doccache.FetchResult{Content: content, ContentType: contentType}
	if contentType == "text/html" {
		return f.normalizeHTML(result)
	}
	return result, nil
}

// lookupRepository asks the registry for the package's repository URL.
func (f *Fetcher) lookupRepository(ctx context.Context, pkg string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.registryURL+"/"+pkg, nil)
	if err != nil {
		return "", doccache.Errorf(doccache.EINVALID, "invalid package name %q: %v", pkg, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", doccache.WrapError(err, doccache.ENETWORK, "registry lookup failed for %s", pkg)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", doccache.Errorf(doccache.ENOTFOUND, "package not found: %s", pkg)
	}
	if resp.StatusCode != http.StatusOK {
		return "", doccache.Errorf(doccache.ENETWORK, "registry returned HTTP %d for %s", resp.StatusCode, pkg)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize))
	if err != nil {
		return "", doccache.WrapError(err, doccache.ENETWORK, "failed to read registry response for %s", pkg)
	}

	var doc registryDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", doccache.WrapError(err, doccache.ENETWORK, "malformed registry response for %s", pkg)
	}
	if len(doc.Repository) == 0 {
		return "", doccache.Errorf(doccache.ENOTFOUND, "package %s has no repository URL", pkg)
	}

	var repoURL string
	if err := json.Unmarshal(doc.Repository, &repoURL); err != nil {
		var obj registryRepo
		if err := json.Unmarshal(doc.Repository, &obj); err != nil {
			return "", doccache.Errorf(doccache.ENOTFOUND, "package %s has an unreadable repository field", pkg)
		}
		repoURL = obj.URL
	}
	if repoURL == "" {
		return "", doccache.Errorf(doccache.ENOTFOUND, "package %s has no repository URL", pkg)
	}
	return repoURL, nil
}

// parsePackagePath splits "/package/<name>[/<in-package path>]" from an
// npmjs.com URL. Scoped names keep their "@scope/" prefix.
func parsePackagePath(p string) (pkg, inPath string, err error) {
	parts := splitPath(p)
	i := 0
	for ; i < len(parts); i++ {
		if parts[i] == "package" {
			break
		}
	}
	rest := parts[i+1:]
	if i == len(parts) || len(rest) == 0 {
		return "", "", doccache.Errorf(doccache.EINVALID, "no package name in npm URL path %q", p)
	}

	nameLen := 1
	if strings.HasPrefix(rest[0], "@") {
		if len(rest) < 2 {
			return "", "", doccache.Errorf(doccache.EINVALID, "incomplete scoped package name in %q", p)
		}
		nameLen = 2
	}
	pkg = strings.Join(rest[:nameLen], "/")

	inPath = strings.Join(rest[nameLen:], "/")
	if inPath == "" {
		inPath = "README.md"
	}
	return pkg, inPath, nil
}

// parseRepositoryURL extracts owner and repo from the repository URLs
// the registry serves, e.g. "git+https://github.com/owner/repo.git" or
// "git://github.com/owner/repo".
func parseRepositoryURL(raw string) (owner, repo string, err error) {
	cleaned := strings.TrimPrefix(raw, "git+")
	cleaned = strings.TrimSuffix(cleaned, ".git")

	u, parseErr := url.Parse(cleaned)
	if parseErr != nil || !strings.Contains(u.Host, "github.com") {
		return "", "", doccache.Errorf(doccache.EINVALID, "unsupported repository URL %q", raw)
	}

	parts := splitPath(u.Path)
	if len(parts) < 2 {
		return "", "", doccache.Errorf(doccache.EINVALID, "unsupported repository URL %q", raw)
	}
	return parts[0], parts[1], nil
}
