package mock

import (
	"context"

	"github.com/fwojciec/doccache"
)

var _ doccache.CatalogService = (*CatalogService)(nil)

// CatalogService is a mock implementation of doccache.CatalogService.
type CatalogService struct {
	ListFn        func(ctx context.Context, clientID string, filter doccache.DocumentFilter) ([]*doccache.Document, error)
	AddOrUpdateFn func(ctx context.Context, clientID string, req doccache.UpsertRequest) (*doccache.Document, error)
	RemoveFn      func(ctx context.Context, clientID, name string) error
	SearchFn      func(ctx context.Context, clientID, query string, filter doccache.DocumentFilter) ([]doccache.ScoredDocument, error)
	SearchLinesFn func(ctx context.Context, clientID, name, query string) ([]doccache.LineMatch, error)
	RefreshFn     func(ctx context.Context, clientID string, opts doccache.RefreshOptions) ([]doccache.RefreshResult, error)
	StatsFn       func(ctx context.Context, clientID string) (*doccache.Stats, error)
}

func (s *CatalogService) List(ctx context.Context, clientID string, filter doccache.DocumentFilter) ([]*doccache.Document, error) {
	return s.ListFn(ctx, clientID, filter)
}

func (s *CatalogService) AddOrUpdate(ctx context.Context, clientID string, req doccache.UpsertRequest) (*doccache.Document, error) {
	return s.AddOrUpdateFn(ctx, clientID, req)
}

func (s *CatalogService) Remove(ctx context.Context, clientID, name string) error {
	return s.RemoveFn(ctx, clientID, name)
}

func (s *CatalogService) Search(ctx context.Context, clientID, query string, filter doccache.DocumentFilter) ([]doccache.ScoredDocument, error) {
	return s.SearchFn(ctx, clientID, query, filter)
}

func (s *CatalogService) SearchLines(ctx context.Context, clientID, name, query string) ([]doccache.LineMatch, error) {
	return s.SearchLinesFn(ctx, clientID, name, query)
}

func (s *CatalogService) Refresh(ctx context.Context, clientID string, opts doccache.RefreshOptions) ([]doccache.RefreshResult, error) {
	return s.RefreshFn(ctx, clientID, opts)
}

func (s *CatalogService) Stats(ctx context.Context, clientID string) (*doccache.Stats, error) {
	return s.StatsFn(ctx, clientID)
}
