// Package bloom provides search-term membership pre-screening using Bloom
// filters. A per-document filter of indexed terms lets corpus-wide search
// skip documents that cannot contain any query keyword.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// DefaultFPRate is the false positive rate used when sizing filters.
const DefaultFPRate = 0.01

// minCapacity keeps tiny documents from producing degenerate filters.
const minCapacity = 64

// Filter wraps a Bloom filter over a document's index terms.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected terms
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	if n < minCapacity {
		n = minCapacity
	}
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// FromTerms builds a filter containing every given term, sized with the
// default false positive rate.
func FromTerms(terms []string) *Filter {
	f := NewFilter(uint(len(terms)), DefaultFPRate)
	for _, t := range terms {
		f.Add(t)
	}
	return f
}

// Add adds a term to the filter.
func (f *Filter) Add(term string) {
	f.f.AddString(term)
}

// Test returns true if the term might be in the filter.
// False positives are possible; false negatives are not.
func (f *Filter) Test(term string) bool {
	return f.f.TestString(term)
}

// TestAny returns true if any of the terms might be in the filter.
func (f *Filter) TestAny(terms []string) bool {
	for _, t := range terms {
		if f.f.TestString(t) {
			return true
		}
	}
	return false
}

// MarshalJSON implements json.Marshaler so filters can be persisted
// alongside the inverted index.
func (f *Filter) MarshalJSON() ([]byte, error) {
	return f.f.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Filter) UnmarshalJSON(data []byte) error {
	if f.f == nil {
		f.f = bloom.NewWithEstimates(minCapacity, DefaultFPRate)
	}
	return f.f.UnmarshalJSON(data)
}
