package fs

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/doccache"
	"github.com/fwojciec/doccache/bloom"
	"github.com/fwojciec/doccache/cache"
)

// Defaults for the store configuration.
const (
	DefaultContentCacheSize = 32 << 20 // 32MB of current content kept in memory
	DefaultContentCacheTTL  = 10 * time.Minute
)

// Ensure Store implements doccache.DocumentService at compile time.
var _ doccache.DocumentService = (*Store)(nil)

// Store persists documents, their bounded version history and their search
// indexes under a base directory. Mutating operations on the same document
// name are serialized by a per-name mutex; operations on different names
// run concurrently.
type Store struct {
	baseDir      string
	keepVersions int
	allowHTML    bool
	logger       *slog.Logger
	now          func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	// sources.json aggregates every document, so its rebuild is shared
	// state the per-name locks do not cover.
	sourcesMu sync.Mutex

	// accessed tracks last read per name for LRU sweeping; file mtimes
	// are the fallback across restarts.
	accessMu sync.Mutex
	accessed map[string]time.Time

	contents *cache.Cache[string]
}

// Option configures a Store.
type Option func(*Store)

// WithKeepVersions sets the number of versions retained per document.
func WithKeepVersions(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.keepVersions = n
		}
	}
}

// WithAllowHTML disables the stripping of script/style/iframe markup on save.
func WithAllowHTML(allow bool) Option {
	return func(s *Store) {
		s.allowHTML = allow
	}
}

// WithLogger sets the logger used for non-fatal store events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock overrides the time source. Useful for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a Store rooted at baseDir. Call Open before use; the
// constructor touches no files and starts no background work.
func NewStore(baseDir string, opts ...Option) *Store {
	s := &Store{
		baseDir:      baseDir,
		keepVersions: doccache.DefaultKeepVersions,
		logger:       slog.Default(),
		now:          time.Now,
		locks:        make(map[string]*sync.Mutex),
		accessed:     make(map[string]time.Time),
		contents:     cache.New[string](DefaultContentCacheSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates the on-disk layout.
func (s *Store) Open() error {
	for _, dir := range []string{s.baseDir, filepath.Join(s.baseDir, cacheDir), filepath.Join(s.baseDir, metadataDir)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return doccache.WrapError(err, doccache.EINTERNAL, "failed to create store directory %q", dir)
		}
	}
	return nil
}

// lock acquires the per-name mutex and returns its unlock function.
func (s *Store) lock(name string) func() {
	s.mu.Lock()
	m, ok := s.locks[name]
	if !ok {
		m = &sync.Mutex{}
		s.locks[name] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func (s *Store) metadataPath(name string) string {
	return filepath.Join(s.baseDir, metadataDir, SanitizeName(name)+".json")
}

func (s *Store) indexPath(name string) string {
	return filepath.Join(s.baseDir, metadataDir, SanitizeName(name)+indexSuffix)
}

func (s *Store) contentPath(name, contentType string) string {
	return filepath.Join(s.baseDir, cacheDir, SanitizeName(name)+"."+extForType(contentType))
}

// UpsertDocument creates or updates a document's descriptive metadata,
// preserving version history and resource info on update.
func (s *Store) UpsertDocument(ctx context.Context, doc *doccache.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	unlock := s.lock(doc.Name)
	defer unlock()

	existing, err := s.loadDocument(doc.Name)
	if err != nil && doccache.ErrorCode(err) != doccache.ENOTFOUND {
		return err
	}
	if existing != nil {
		existing.SourceURL = doc.SourceURL
		existing.AltURL = doc.AltURL
		existing.Description = doc.Description
		existing.Category = doc.Category
		existing.Tags = doc.Tags
		if doc.UpdateError != "" {
			existing.UpdateError = doc.UpdateError
		}
		if !doc.LastAttemptedUpdate.IsZero() {
			existing.LastAttemptedUpdate = doc.LastAttemptedUpdate
		}
		*doc = *existing
	}

	return s.writeMetadata(doc)
}

// FindDocument retrieves a document by name.
func (s *Store) FindDocument(ctx context.Context, name string) (*doccache.Document, error) {
	return s.loadDocument(name)
}

// FindDocuments retrieves documents matching the filter, sorted by name.
func (s *Store) FindDocuments(ctx context.Context, filter doccache.DocumentFilter) ([]*doccache.Document, error) {
	if filter.Name != nil {
		doc, err := s.loadDocument(*filter.Name)
		if doccache.ErrorCode(err) == doccache.ENOTFOUND {
			return nil, nil
		} else if err != nil {
			return nil, err
		}
		// Offset past the single candidate means an empty page, same as
		// the directory-scan path below.
		if matchesFilter(doc, filter) && filter.Offset == 0 {
			return []*doccache.Document{doc}, nil
		}
		return nil, nil
	}

	entries, err := os.ReadDir(filepath.Join(s.baseDir, metadataDir))
	if err != nil {
		return nil, doccache.WrapError(err, doccache.EINTERNAL, "failed to list metadata directory")
	}

	var docs []*doccache.Document
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") || strings.HasSuffix(e.Name(), indexSuffix) {
			continue
		}
		doc, err := s.readDocumentFile(filepath.Join(s.baseDir, metadataDir, e.Name()))
		if err != nil {
			s.logger.Warn("skipping unreadable document metadata", "file", e.Name(), "error", err)
			continue
		}
		if matchesFilter(doc, filter) {
			docs = append(docs, doc)
		}
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })

	if filter.Offset > 0 {
		if filter.Offset >= len(docs) {
			return nil, nil
		}
		docs = docs[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(docs) {
		docs = docs[:filter.Limit]
	}
	return docs, nil
}

func matchesFilter(doc *doccache.Document, filter doccache.DocumentFilter) bool {
	if filter.Category != nil && !strings.EqualFold(doc.Category, *filter.Category) {
		return false
	}
	if filter.Tag != nil {
		var found bool
		for _, tag := range doc.Tags {
			if strings.EqualFold(tag, *filter.Tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// SaveContent records fetched content as the newest version of the named
// document, trims history, and rebuilds the search index. The document is
// created on first save. A not-modified result only records the attempt.
func (s *Store) SaveContent(ctx context.Context, name string, res *doccache.FetchResult, opts doccache.SaveOptions) error {
	if name == "" {
		return doccache.Errorf(doccache.EINVALID, "document name required")
	}
	if res == nil {
		return doccache.Errorf(doccache.EINVALID, "fetch result required")
	}

	unlock := s.lock(name)
	defer unlock()

	doc, err := s.loadDocument(name)
	if doccache.ErrorCode(err) == doccache.ENOTFOUND {
		doc = &doccache.Document{Name: name}
	} else if err != nil {
		return err
	}

	now := s.now()
	doc.LastAttemptedUpdate = now

	if res.NotModified {
		return s.writeMetadata(doc)
	}

	// Snapshot for rollback: on any I/O failure mid-save the in-memory
	// record must match what is durably stored.
	prior := *doc

	content := sanitizeContent(res.Content, s.allowHTML)
	hash := hashContent(content)

	if !opts.Force && len(doc.Versions) > 0 && doc.Resource.ContentHash == hash {
		doc.UpdateError = ""
		doc.LastSuccessfulUpdate = now
		return s.writeMetadata(doc)
	}

	version := opts.Version
	if version == "" {
		version = now.UTC().Format(time.RFC3339Nano)
	}

	doc.Versions = append([]doccache.Version{{
		Version:   version,
		Content:   content,
		Timestamp: now.UTC(),
	}}, doc.Versions...)
	if len(doc.Versions) > s.keepVersions {
		doc.Versions = doc.Versions[:s.keepVersions]
	}

	if res.ContentType != "" {
		doc.ContentType = res.ContentType
	}
	doc.Resource = doccache.ResourceInfo{
		ETag:         res.ETag,
		LastModified: res.LastModified,
		ContentHash:  hash,
	}
	if res.Metadata != nil {
		doc.Metadata = res.Metadata
	}
	doc.UpdateError = ""
	doc.LastSuccessfulUpdate = now

	if err := s.persistContent(doc, content, prior.ContentType); err != nil {
		*doc = prior
		doc.LastAttemptedUpdate = now
		doc.UpdateError = err.Error()
		if werr := s.writeMetadata(doc); werr != nil {
			s.logger.Error("failed to record update error", "name", name, "error", werr)
		}
		return doccache.WrapError(err, doccache.EINTERNAL, "failed to save content for %q", name)
	}

	s.contents.Set(SanitizeName(name), content, int64(len(content)), DefaultContentCacheTTL)
	s.touch(name, now)
	return nil
}

// persistContent writes content, index and metadata files. Each write is
// atomic (temp + rename); the metadata write comes last so the record never
// references content that was not persisted. The files being replaced are
// snapshotted first: a failure part-way through puts them back, so a
// rolled-back save leaves content and index matching the stored record.
func (s *Store) persistContent(doc *doccache.Document, content, priorContentType string) error {
	contentPath := s.contentPath(doc.Name, doc.ContentType)
	indexPath := s.indexPath(doc.Name)

	priorContent, hadContent := snapshotFile(contentPath)
	priorIndex, hadIndex := snapshotFile(indexPath)
	restore := func() {
		restoreFile(contentPath, priorContent, hadContent)
		restoreFile(indexPath, priorIndex, hadIndex)
	}

	if err := writeFileAtomic(contentPath, []byte(content)); err != nil {
		return err
	}

	idx := doccache.BuildIndex(content)
	terms := make([]string, 0, len(idx.Terms))
	for t := range idx.Terms {
		terms = append(terms, t)
	}
	data, err := json.Marshal(indexFile{Terms: idx.Terms, Bloom: bloom.FromTerms(terms)})
	if err != nil {
		restore()
		return err
	}
	if err := writeFileAtomic(indexPath, data); err != nil {
		restore()
		return err
	}

	if err := s.writeMetadata(doc); err != nil {
		restore()
		return err
	}

	// A content type change moves the cache file to a new extension;
	// drop the one left under the old name.
	if old := s.contentPath(doc.Name, priorContentType); old != contentPath {
		if err := removeIfExists(old); err != nil {
			s.logger.Warn("failed to remove stale cache file", "name", doc.Name, "error", err)
		}
	}
	return nil
}

// ContentVersion returns the content stored under the given version id.
func (s *Store) ContentVersion(ctx context.Context, name, version string) (string, error) {
	doc, err := s.loadDocument(name)
	if err != nil {
		return "", err
	}
	for _, v := range doc.Versions {
		if v.Version == version {
			return v.Content, nil
		}
	}
	return "", doccache.Errorf(doccache.ENOTFOUND, "version %q of document %q not found", version, name)
}

// DeleteDocument removes the stored content, index and metadata together.
// The metadata file goes last so a failed removal leaves the record intact
// and retryable rather than orphaning files.
func (s *Store) DeleteDocument(ctx context.Context, name string) error {
	unlock := s.lock(name)
	defer unlock()

	if _, err := s.loadDocument(name); err != nil {
		return err
	}

	// Earlier saves may have left cache files under other extensions, so
	// the removal covers every one the store can produce.
	for _, ext := range cacheExtensions {
		path := filepath.Join(s.baseDir, cacheDir, SanitizeName(name)+"."+ext)
		if err := removeIfExists(path); err != nil {
			return doccache.WrapError(err, doccache.EINTERNAL, "failed to delete content for %q", name)
		}
	}
	if err := removeIfExists(s.indexPath(name)); err != nil {
		return doccache.WrapError(err, doccache.EINTERNAL, "failed to delete index for %q", name)
	}
	if err := removeIfExists(s.metadataPath(name)); err != nil {
		return doccache.WrapError(err, doccache.EINTERNAL, "failed to delete metadata for %q", name)
	}

	s.contents.Delete(SanitizeName(name))
	s.accessMu.Lock()
	delete(s.accessed, name)
	s.accessMu.Unlock()

	return s.writeSources()
}

// SearchLines returns the lines of the current version containing any
// token of the query. When the persisted index is absent the same token
// union is computed by scanning freshly-read content.
func (s *Store) SearchLines(ctx context.Context, name, query string) ([]doccache.LineMatch, error) {
	doc, err := s.loadDocument(name)
	if err != nil {
		return nil, err
	}

	idx := s.loadIndex(name)
	content, ok := s.readContent(doc)
	if !ok {
		// Backing content file is missing: fall back to the line scan
		// over the newest stored version.
		content = doc.CurrentContent()
		idx = nil
	}

	return doccache.SearchContentLines(content, query, idx), nil
}

// MatchesAnyTerm reports whether the document's index may contain any of
// the terms. Backed by the persisted bloom filter when present; documents
// without an index conservatively match.
func (s *Store) MatchesAnyTerm(ctx context.Context, name string, terms []string) (bool, error) {
	if _, err := s.loadDocument(name); err != nil {
		return false, err
	}
	if len(terms) == 0 {
		return false, nil
	}

	f, idx := s.loadIndexFile(name)
	if f == nil {
		return true, nil
	}
	// The bloom filter rules documents out cheaply; positives are
	// confirmed against the term map.
	if f.Bloom != nil && !f.Bloom.TestAny(terms) {
		return false, nil
	}
	for _, t := range terms {
		if _, ok := idx.Terms[strings.ToLower(t)]; ok {
			return true, nil
		}
	}
	return false, nil
}

// readContent returns the current content, preferring the in-memory cache
// over the cache file. ok is false when the backing file is missing.
func (s *Store) readContent(doc *doccache.Document) (string, bool) {
	if content, ok := s.contents.Get(SanitizeName(doc.Name)); ok {
		return content, true
	}

	data, err := os.ReadFile(s.contentPath(doc.Name, doc.ContentType))
	if err != nil {
		return "", false
	}

	content := string(data)
	s.contents.Set(SanitizeName(doc.Name), content, int64(len(content)), DefaultContentCacheTTL)
	s.touch(doc.Name, s.now())
	return content, true
}

func (s *Store) touch(name string, at time.Time) {
	s.accessMu.Lock()
	s.accessed[name] = at
	s.accessMu.Unlock()
}

// indexFile is the persisted form of a document's search index.
type indexFile struct {
	Terms map[string]*doccache.Posting `json:"terms"`
	Bloom *bloom.Filter                `json:"bloom,omitempty"`
}

func (s *Store) loadIndex(name string) *doccache.InvertedIndex {
	_, idx := s.loadIndexFile(name)
	return idx
}

func (s *Store) loadIndexFile(name string) (*indexFile, *doccache.InvertedIndex) {
	data, err := os.ReadFile(s.indexPath(name))
	if err != nil {
		return nil, nil
	}
	var f indexFile
	if err := json.Unmarshal(data, &f); err != nil {
		s.logger.Warn("discarding corrupt index file", "name", name, "error", err)
		return nil, nil
	}
	return &f, &doccache.InvertedIndex{Terms: f.Terms}
}

func (s *Store) loadDocument(name string) (*doccache.Document, error) {
	if name == "" {
		return nil, doccache.Errorf(doccache.EINVALID, "document name required")
	}
	doc, err := s.readDocumentFile(s.metadataPath(name))
	if os.IsNotExist(err) {
		return nil, doccache.Errorf(doccache.ENOTFOUND, "document %q not found", name)
	}
	return doc, err
}

func (s *Store) readDocumentFile(path string) (*doccache.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, doccache.WrapError(err, doccache.EINTERNAL, "failed to read document metadata")
	}
	var doc doccache.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, doccache.WrapError(err, doccache.EINTERNAL, "corrupt document metadata at %q", path)
	}
	return &doc, nil
}

// writeMetadata persists the full record and refreshes sources.json.
func (s *Store) writeMetadata(doc *doccache.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return doccache.WrapError(err, doccache.EINTERNAL, "failed to encode document %q", doc.Name)
	}
	if err := writeFileAtomic(s.metadataPath(doc.Name), data); err != nil {
		return doccache.WrapError(err, doccache.EINTERNAL, "failed to write metadata for %q", doc.Name)
	}
	return s.writeSources()
}

// sourceSummary is one entry of sources.json.
type sourceSummary struct {
	Name                 string    `json:"name"`
	SourceURL            string    `json:"sourceUrl,omitempty"`
	Description          string    `json:"description,omitempty"`
	Category             string    `json:"category,omitempty"`
	Tags                 []string  `json:"tags,omitempty"`
	LastSuccessfulUpdate time.Time `json:"lastSuccessfulUpdate,omitzero"`
}

// writeSources rebuilds sources.json from the metadata directory. Saves
// to different names run concurrently, so the rebuild takes its own lock.
func (s *Store) writeSources() error {
	s.sourcesMu.Lock()
	defer s.sourcesMu.Unlock()

	docs, err := s.FindDocuments(context.Background(), doccache.DocumentFilter{})
	if err != nil {
		return err
	}

	summaries := make([]sourceSummary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, sourceSummary{
			Name:                 doc.Name,
			SourceURL:            doc.SourceURL,
			Description:          doc.Description,
			Category:             doc.Category,
			Tags:                 doc.Tags,
			LastSuccessfulUpdate: doc.LastSuccessfulUpdate,
		})
	}

	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return doccache.WrapError(err, doccache.EINTERNAL, "failed to encode sources")
	}
	if err := writeFileAtomic(filepath.Join(s.baseDir, sourcesFile), data); err != nil {
		return doccache.WrapError(err, doccache.EINTERNAL, "failed to write sources")
	}
	return nil
}
