package mock

import "github.com/fwojciec/doccache"

var _ doccache.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of doccache.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*doccache.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*doccache.ExtractResult, error) {
	return e.ExtractFn(html)
}

var _ doccache.Converter = (*Converter)(nil)

// Converter is a mock implementation of doccache.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
