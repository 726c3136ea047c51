// Package fs implements doccache.DocumentService on the local filesystem.
//
// Persisted layout under the base directory:
//
//	sources.json                        document summaries
//	cache/<sanitized-name>.<ext>        current content
//	metadata/<sanitized-name>.json      full document record
//	metadata/<sanitized-name>.index.json inverted index + term bloom filter
package fs

import (
	"encoding/binary"
	"encoding/hex"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const (
	sourcesFile = "sources.json"
	cacheDir    = "cache"
	metadataDir = "metadata"
	indexSuffix = ".index.json"
)

var (
	unsafeRunes = regexp.MustCompile(`[^a-z0-9._-]+`)
	dashRuns    = regexp.MustCompile(`-{2,}`)
	// Disallowed markup stripped when HTML pass-through is off.
	blockedMarkup = regexp.MustCompile(`(?is)<(script|style|iframe)\b[^>]*>.*?</\s*(script|style|iframe)\s*>`)
	controlRunes  = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]")
)

// SanitizeName converts a document name into a stable, collision-resistant
// file stem: lower-cased, path separators and control characters replaced,
// URL-like names given a scheme-derived prefix.
func SanitizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	if u, err := url.Parse(s); err == nil && u.Scheme != "" && u.Host != "" {
		s = u.Scheme + "-" + u.Host + "-" + u.Path
	}

	s = unsafeRunes.ReplaceAllString(s, "-")
	s = strings.ReplaceAll(s, "..", "-")
	s = dashRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-.")
	if s == "" {
		return "document"
	}
	return s
}

// sanitizeContent normalizes line endings, removes control characters, and
// optionally strips markup that is disallowed when HTML pass-through is off.
func sanitizeContent(content string, allowHTML bool) string {
	s := strings.ReplaceAll(content, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = controlRunes.ReplaceAllString(s, "")
	if !allowHTML {
		s = blockedMarkup.ReplaceAllString(s, "")
	}
	return s
}

// hashContent computes the xxHash of content as a hex string.
func hashContent(content string) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], xxhash.Sum64String(content))
	return hex.EncodeToString(b[:])
}

// cacheExtensions are the file extensions extForType can produce.
var cacheExtensions = []string{"md", "html", "json", "txt"}

// extForType maps a content type to a cache file extension.
func extForType(contentType string) string {
	switch {
	case strings.Contains(contentType, "html"):
		return "html"
	case strings.Contains(contentType, "json"):
		return "json"
	case strings.Contains(contentType, "plain"):
		return "txt"
	default:
		return "md"
	}
}

// writeFileAtomic writes data to path via a temp file in the same
// directory followed by a rename.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// snapshotFile reads path so a later failure can put it back. existed is
// false when there is nothing at path.
func snapshotFile(path string) (data []byte, existed bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return data, true
}

// restoreFile writes the snapshot back, or removes the file when nothing
// existed at path before.
func restoreFile(path string, data []byte, existed bool) {
	if !existed {
		_ = os.Remove(path)
		return
	}
	_ = writeFileAtomic(path, data)
}

// removeIfExists removes path, tolerating its absence.
func removeIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
