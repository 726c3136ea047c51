package doccache

import (
	"sort"
	"strings"
	"unicode"
)

// contextRadius is the number of lines of surrounding context returned
// with each line match.
const contextRadius = 2

// Posting records every occurrence of one term.
type Posting struct {
	// Positions are intra-line token positions, parallel to Lines.
	Positions []int `json:"positions"`

	// Lines are 0-based line numbers, one per occurrence.
	Lines []int `json:"lines"`
}

// InvertedIndex maps lower-cased terms to their occurrences in one
// document's current content. Rebuilding is destructive: a new index
// replaces the prior one wholesale.
type InvertedIndex struct {
	Terms map[string]*Posting `json:"terms"`
}

// BuildIndex constructs an inverted index from content by lower-casing it,
// splitting each line on non-word characters, and recording every token's
// line number and intra-line position. Tokens of length <= 1 are skipped.
func BuildIndex(content string) *InvertedIndex {
	idx := &InvertedIndex{Terms: make(map[string]*Posting)}
	for n, line := range strings.Split(content, "\n") {
		for pos, tok := range Tokenize(line) {
			p, ok := idx.Terms[tok]
			if !ok {
				p = &Posting{}
				idx.Terms[tok] = p
			}
			p.Positions = append(p.Positions, pos)
			p.Lines = append(p.Lines, n)
		}
	}
	return idx
}

// Lines returns the distinct 0-based line numbers on which term occurs.
func (idx *InvertedIndex) Lines(term string) []int {
	p, ok := idx.Terms[strings.ToLower(term)]
	if !ok {
		return nil
	}
	seen := make(map[int]bool, len(p.Lines))
	var lines []int
	for _, n := range p.Lines {
		if !seen[n] {
			seen[n] = true
			lines = append(lines, n)
		}
	}
	return lines
}

// Tokenize lower-cases s and splits it on non-word characters, dropping
// tokens of length <= 1. Underscores and digits count as word characters.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) > 1 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// SearchContentLines finds every line of content containing any token of
// query, using idx when available and a direct line scan otherwise.
// Matches are 1-based, sorted ascending, de-duplicated by line, and carry
// up to contextRadius lines of context on each side. An empty query yields
// an empty result.
func SearchContentLines(content, query string, idx *InvertedIndex) []LineMatch {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return nil
	}

	lines := strings.Split(content, "\n")
	matched := make(map[int]bool)

	if idx != nil {
		for _, tok := range tokens {
			for _, n := range idx.Lines(tok) {
				if n >= 0 && n < len(lines) {
					matched[n] = true
				}
			}
		}
	} else {
		// Fallback for content without a persisted index: the same token
		// union computed by scanning each line directly.
		for n, line := range lines {
			for _, tok := range Tokenize(line) {
				if containsToken(tokens, tok) {
					matched[n] = true
					break
				}
			}
		}
	}

	nums := make([]int, 0, len(matched))
	for n := range matched {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	matches := make([]LineMatch, 0, len(nums))
	for _, n := range nums {
		lo := max(0, n-contextRadius)
		hi := min(len(lines)-1, n+contextRadius)
		ctx := make([]string, 0, hi-lo+1)
		for i := lo; i <= hi; i++ {
			ctx = append(ctx, lines[i])
		}
		matches = append(matches, LineMatch{
			Line:    n + 1,
			Content: lines[n],
			Context: ctx,
		})
	}
	return matches
}

func containsToken(tokens []string, tok string) bool {
	for _, t := range tokens {
		if t == tok {
			return true
		}
	}
	return false
}
