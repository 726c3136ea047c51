package doccache

import (
	"fmt"
	"sort"
	"strings"
)

// Relevance scoring weights. Relative ordering matters more than the
// literal values: exact tag matches outrank exact name matches, which
// outrank description and partial matches.
const (
	scoreContentPhrase   = 100
	scoreContentKeywords = 50 // scaled by matched/total keywords
	scoreNameFull        = 150
	scoreNameWord        = 75
	scoreNameSubstring   = 50
	scoreDescFull        = 100
	scoreDescWord        = 40
	scoreDescSubstring   = 25
	scoreCategoryKeyword = 30
	scoreTagExact        = 200
	scoreTagContains     = 150
	scoreTagCoverage     = 100 // scaled by query-word coverage across tags
)

// maxContentSnippets caps the number of content highlight strings per match.
const maxContentSnippets = 3

// ScoredDocument pairs a document with its relevance to a query.
type ScoredDocument struct {
	Document *Document `json:"document"`
	Score    float64   `json:"score"`

	// Matches are human-readable highlight strings, one per satisfied
	// scoring rule.
	Matches []string `json:"matches"`
}

// ScoreDocument rates doc against a free-text query, combining a content
// signal (from the supplied current content, which may be empty for
// documents not yet cached) with metadata signals from name, description,
// category and tags. A zero score means no relevance.
func ScoreDocument(doc *Document, content, query string) (float64, []string) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0, nil
	}
	keywords := queryKeywords(q)

	var score float64
	var matches []string

	if content != "" {
		s, m := scoreContent(content, q, keywords)
		score += s
		matches = append(matches, m...)
	}

	s, m := scoreField(doc.Name, "name", q, keywords, scoreNameFull, scoreNameWord, scoreNameSubstring)
	score += s
	matches = append(matches, m...)

	s, m = scoreField(doc.Description, "description", q, keywords, scoreDescFull, scoreDescWord, scoreDescSubstring)
	score += s
	matches = append(matches, m...)

	if cat := strings.ToLower(doc.Category); cat != "" {
		for _, kw := range keywords {
			if strings.Contains(cat, kw) {
				score += scoreCategoryKeyword
				matches = append(matches, fmt.Sprintf("category matches %q", kw))
			}
		}
	}

	s, m = scoreTags(doc.Tags, q)
	score += s
	matches = append(matches, m...)

	return score, matches
}

// RankDocuments scores every document and returns those with a positive
// score, sorted by descending score with ties broken by input order.
// contentOf supplies the current content for a document name; it may
// return "" for documents without cached content.
func RankDocuments(docs []*Document, query string, contentOf func(name string) string) []ScoredDocument {
	var ranked []ScoredDocument
	for _, doc := range docs {
		var content string
		if contentOf != nil {
			content = contentOf(doc.Name)
		}
		score, matches := ScoreDocument(doc, content, query)
		if score <= 0 {
			continue
		}
		ranked = append(ranked, ScoredDocument{Document: doc, Score: score, Matches: matches})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// queryKeywords returns the lower-cased whitespace-split tokens of the
// query with length > 1.
func queryKeywords(q string) []string {
	fields := strings.Fields(q)
	keywords := fields[:0]
	for _, f := range fields {
		if len(f) > 1 {
			keywords = append(keywords, f)
		}
	}
	return keywords
}

func scoreContent(content, q string, keywords []string) (float64, []string) {
	lower := strings.ToLower(content)

	var score float64
	var matches []string

	if strings.Contains(lower, q) {
		score += scoreContentPhrase
		matches = append(matches, fmt.Sprintf("content contains exact phrase %q", q))
	}

	if len(keywords) > 0 {
		var hit int
		var snippets []string
		for _, kw := range keywords {
			if !strings.Contains(lower, kw) {
				continue
			}
			hit++
			if len(snippets) < maxContentSnippets {
				snippets = append(snippets, snippetAround(content, lower, kw))
			}
		}
		if hit > 0 {
			score += scoreContentKeywords * float64(hit) / float64(len(keywords))
			for _, s := range snippets {
				matches = append(matches, "content: "+s)
			}
		}
	}

	return score, matches
}

// scoreField applies the full/word-boundary/substring ladder shared by
// name and description scoring.
func scoreField(value, label, q string, keywords []string, full, word, substring float64) (float64, []string) {
	lower := strings.ToLower(value)
	if lower == "" {
		return 0, nil
	}

	if strings.Contains(lower, q) {
		return full, []string{fmt.Sprintf("%s contains query %q", label, q)}
	}

	words := Tokenize(lower)
	var score float64
	var matches []string
	for _, kw := range keywords {
		switch {
		case containsToken(words, kw):
			score += word
			matches = append(matches, fmt.Sprintf("%s matches word %q", label, kw))
		case strings.Contains(lower, kw):
			score += substring
			matches = append(matches, fmt.Sprintf("%s contains %q", label, kw))
		}
	}
	return score, matches
}

func scoreTags(tags []string, q string) (float64, []string) {
	if len(tags) == 0 {
		return 0, nil
	}

	// Hyphenated tags match space-separated queries and vice versa.
	normQuery := strings.ReplaceAll(q, "-", " ")
	queryWords := queryKeywords(normQuery)

	var score float64
	var matches []string
	covered := make(map[string]bool)

	for _, tag := range tags {
		norm := strings.ReplaceAll(strings.ToLower(tag), "-", " ")
		switch {
		case norm == normQuery:
			score += scoreTagExact
			matches = append(matches, fmt.Sprintf("tag %q equals query", tag))
		case strings.Contains(norm, normQuery):
			score += scoreTagContains
			matches = append(matches, fmt.Sprintf("tag %q contains query", tag))
		}
		for _, w := range queryWords {
			if strings.Contains(norm, w) {
				covered[w] = true
			}
		}
	}

	if len(queryWords) > 0 && len(covered) > 0 {
		fraction := float64(len(covered)) / float64(len(queryWords))
		score += scoreTagCoverage * fraction
		if fraction < 1 {
			matches = append(matches, fmt.Sprintf("tags cover %d of %d query words", len(covered), len(queryWords)))
		} else {
			matches = append(matches, "tags cover all query words")
		}
	}

	return score, matches
}

// snippetAround extracts a short window of content centered on the first
// occurrence of kw. lower must be the lower-cased form of content.
func snippetAround(content, lower, kw string) string {
	const radius = 40

	i := strings.Index(lower, kw)
	if i < 0 {
		return ""
	}
	lo := max(0, i-radius)
	hi := min(len(content), i+len(kw)+radius)

	s := strings.TrimSpace(content[lo:hi])
	s = strings.Join(strings.Fields(s), " ")
	if lo > 0 {
		s = "..." + s
	}
	if hi < len(content) {
		s += "..."
	}
	return s
}
