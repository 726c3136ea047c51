package http

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/doccache"
)

// fetchFile reads a local file referenced by a file:// URL. The path is
// resolved to its clean absolute form and must not escape upward
// through parent references.
func (f *Fetcher) fetchFile(rawURL string) (*doccache.FetchResult, error) {
	path := strings.TrimPrefix(rawURL, "file://")
	if path == "" {
		return nil, doccache.Errorf(doccache.EINVALID, "empty file path in %q", rawURL)
	}
	if strings.Contains(path, "..") {
		return nil, doccache.Errorf(doccache.EINVALID, "parent references not allowed in file path %q", path)
	}

	clean := filepath.Clean(path)
	info, err := os.Stat(clean)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, doccache.Errorf(doccache.ENOTFOUND, "file not found: %s", clean)
		}
		return nil, doccache.WrapError(err, doccache.EINTERNAL, "failed to stat %s", clean)
	}
	if info.IsDir() {
		return nil, doccache.Errorf(doccache.EINVALID, "path is a directory: %s", clean)
	}
	if info.Size() > f.maxSize {
		return nil, doccache.Errorf(doccache.ETOOLARGE, "file of %d bytes exceeds limit %d: %s", info.Size(), f.maxSize, clean)
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, doccache.WrapError(err, doccache.EINTERNAL, "failed to read %s", clean)
	}

	contentType := typeByExtension(clean)
	if contentType == "" {
		contentType = "text/plain"
	}

	result := &doccache.FetchResult{
		Content:     string(data),
		ContentType: contentType,
	}
	if contentType == "text/html" {
		return f.normalizeHTML(result)
	}
	return result, nil
}
