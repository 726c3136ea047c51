// Package mock provides hand-rolled mock implementations of the root
// package interfaces for use in tests.
package mock

import (
	"context"

	"github.com/fwojciec/doccache"
)

var _ doccache.DocumentService = (*DocumentService)(nil)

// DocumentService is a mock implementation of doccache.DocumentService.
type DocumentService struct {
	UpsertDocumentFn func(ctx context.Context, doc *doccache.Document) error
	FindDocumentFn   func(ctx context.Context, name string) (*doccache.Document, error)
	FindDocumentsFn  func(ctx context.Context, filter doccache.DocumentFilter) ([]*doccache.Document, error)
	SaveContentFn    func(ctx context.Context, name string, res *doccache.FetchResult, opts doccache.SaveOptions) error
	ContentVersionFn func(ctx context.Context, name, version string) (string, error)
	DeleteDocumentFn func(ctx context.Context, name string) error
	SearchLinesFn    func(ctx context.Context, name, query string) ([]doccache.LineMatch, error)
	MatchesAnyTermFn func(ctx context.Context, name string, terms []string) (bool, error)
}

func (s *DocumentService) UpsertDocument(ctx context.Context, doc *doccache.Document) error {
	return s.UpsertDocumentFn(ctx, doc)
}

func (s *DocumentService) FindDocument(ctx context.Context, name string) (*doccache.Document, error) {
	return s.FindDocumentFn(ctx, name)
}

func (s *DocumentService) FindDocuments(ctx context.Context, filter doccache.DocumentFilter) ([]*doccache.Document, error) {
	return s.FindDocumentsFn(ctx, filter)
}

func (s *DocumentService) SaveContent(ctx context.Context, name string, res *doccache.FetchResult, opts doccache.SaveOptions) error {
	return s.SaveContentFn(ctx, name, res, opts)
}

func (s *DocumentService) ContentVersion(ctx context.Context, name, version string) (string, error) {
	return s.ContentVersionFn(ctx, name, version)
}

func (s *DocumentService) DeleteDocument(ctx context.Context, name string) error {
	return s.DeleteDocumentFn(ctx, name)
}

func (s *DocumentService) SearchLines(ctx context.Context, name, query string) ([]doccache.LineMatch, error) {
	return s.SearchLinesFn(ctx, name, query)
}

func (s *DocumentService) MatchesAnyTerm(ctx context.Context, name string, terms []string) (bool, error) {
	return s.MatchesAnyTermFn(ctx, name, terms)
}
