package doccache_test

import (
	"testing"

	"github.com/fwojciec/doccache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Story: Relevance Scoring
// Signals are additive; tag matches outrank name matches outrank the rest.

func TestScoreDocument_NameContainsFullQuery(t *testing.T) {
	t.Parallel()

	doc := &doccache.Document{Name: "React Documentation"}

	score, matches := doccache.ScoreDocument(doc, "", "react")

	assert.Equal(t, float64(150), score)
	require.Len(t, matches, 1)
	assert.Contains(t, matches[0], "name contains query")
}

func TestScoreDocument_NameWordBoundaryVersusSubstring(t *testing.T) {
	t.Parallel()

	word := &doccache.Document{Name: "go tooling guide"}
	substr := &doccache.Document{Name: "golang-tooling"}

	wordScore, _ := doccache.ScoreDocument(word, "", "go testing")
	substrScore, _ := doccache.ScoreDocument(substr, "", "go testing")

	// "go" at a word boundary beats "go" inside "golang".
	assert.Equal(t, float64(75), wordScore)
	assert.Equal(t, float64(50), substrScore)
}

func TestScoreDocument_ExactTagOutranksExactName(t *testing.T) {
	t.Parallel()

	byTag := &doccache.Document{Name: "alpha", Tags: []string{"react-hooks"}}
	byName := &doccache.Document{Name: "react hooks"}

	tagScore, _ := doccache.ScoreDocument(byTag, "", "react hooks")
	nameScore, _ := doccache.ScoreDocument(byName, "", "react hooks")

	assert.Greater(t, tagScore, nameScore)
}

func TestScoreDocument_TagHyphenNormalization(t *testing.T) {
	t.Parallel()

	doc := &doccache.Document{Name: "x", Tags: []string{"rate-limiting"}}

	score, matches := doccache.ScoreDocument(doc, "", "rate limiting")

	// Exact tag match (200) plus full coverage of query words (100).
	assert.Equal(t, float64(300), score)
	assert.NotEmpty(t, matches)
}

func TestScoreDocument_ContentPhraseAndKeywords(t *testing.T) {
	t.Parallel()

	doc := &doccache.Document{Name: "zzz"}
	content := "The token bucket refills over time.\nBuckets start full."

	score, matches := doccache.ScoreDocument(doc, content, "token bucket")

	// Exact phrase (100) + both keywords matched (50 * 2/2).
	assert.Equal(t, float64(150), score)
	assert.NotEmpty(t, matches)
}

func TestScoreDocument_ContentSnippetsCappedAtThree(t *testing.T) {
	t.Parallel()

	doc := &doccache.Document{Name: "zzz"}
	content := "alpha beta gamma delta epsilon"

	_, matches := doccache.ScoreDocument(doc, content, "alpha beta gamma delta epsilon")

	var snippets int
	for _, m := range matches {
		if len(m) >= 8 && m[:8] == "content:" {
			snippets++
		}
	}
	assert.Equal(t, 3, snippets)
}

func TestScoreDocument_PartialKeywordRatio(t *testing.T) {
	t.Parallel()

	doc := &doccache.Document{Name: "zzz"}

	score, _ := doccache.ScoreDocument(doc, "only alpha appears here", "alpha missing")

	// One of two keywords matched: 50 * 1/2.
	assert.Equal(t, float64(25), score)
}

func TestScoreDocument_CategoryAndDescription(t *testing.T) {
	t.Parallel()

	doc := &doccache.Document{
		Name:        "zzz",
		Description: "frontend framework guide",
		Category:    "frameworks",
	}

	score, _ := doccache.ScoreDocument(doc, "", "framework")

	// Description contains full query (100) + category contains keyword (30).
	assert.Equal(t, float64(130), score)
}

func TestScoreDocument_EmptyQuery(t *testing.T) {
	t.Parallel()

	doc := &doccache.Document{Name: "anything"}

	score, matches := doccache.ScoreDocument(doc, "content", "   ")

	assert.Zero(t, score)
	assert.Empty(t, matches)
}

func TestRankDocuments_ExcludesZeroScoresAndSortsDescending(t *testing.T) {
	t.Parallel()

	docs := []*doccache.Document{
		{Name: "unrelated"},
		{Name: "react documentation"},
		{Name: "zzz", Tags: []string{"react"}},
	}

	ranked := doccache.RankDocuments(docs, "react", nil)

	require.Len(t, ranked, 2)
	assert.Equal(t, "zzz", ranked[0].Document.Name)
	assert.Equal(t, "react documentation", ranked[1].Document.Name)
}

func TestRankDocuments_StableTieOrder(t *testing.T) {
	t.Parallel()

	docs := []*doccache.Document{
		{Name: "react one"},
		{Name: "react two"},
	}

	ranked := doccache.RankDocuments(docs, "react", nil)

	require.Len(t, ranked, 2)
	assert.Equal(t, "react one", ranked[0].Document.Name)
	assert.Equal(t, "react two", ranked[1].Document.Name)
}

func TestRankDocuments_UsesContentCallback(t *testing.T) {
	t.Parallel()

	docs := []*doccache.Document{{Name: "zzz"}}
	contentOf := func(name string) string { return "the needle is here" }

	ranked := doccache.RankDocuments(docs, "needle", contentOf)

	require.Len(t, ranked, 1)
	assert.Greater(t, ranked[0].Score, float64(0))
}
