package index

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksysoev/crawldex/pkg/core"
)

// buildArtifacts writes a complete artifact set from the given documents and
// returns the index directory. Each document is a url plus its tokens.
func buildArtifacts(t *testing.T, docs []struct {
	url    string
	tokens []core.Token
}) string {
	t.Helper()

	dir := t.TempDir()

	w, err := NewWriter(dir, 30000)
	require.NoError(t, err)

	for _, doc := range docs {
		require.NoError(t, w.Add(doc.url, doc.tokens))
	}

	require.NoError(t, w.Close())

	offsets, _, err := Merge(w.RunFiles(), filepath.Join(dir, MergedIndexFile))
	require.NoError(t, err)

	require.NoError(t, SaveOffsets(dir, offsets))
	require.NoError(t, SaveURLMap(dir, w.URLMap()))

	return dir
}

func sharedTermFixture(t *testing.T) string {
	t.Helper()

	return buildArtifacts(t, []struct {
		url    string
		tokens []core.Token
	}{
		{url: "http://a", tokens: []core.Token{{Term: "cat", Field: core.FieldTitle}}},
		{url: "http://b", tokens: []core.Token{
			{Term: "cat", Field: core.FieldBody},
			{Term: "cat", Field: core.FieldBody},
			{Term: "dog", Field: core.FieldBody},
		}},
		{url: "http://c", tokens: []core.Token{{Term: "dog", Field: core.FieldBody}}},
	})
}

func TestSearcher_SingleTerm(t *testing.T) {
	s, err := NewSearcher(sharedTermFixture(t))
	require.NoError(t, err)

	results, err := s.Search([]string{"cat"}, 5)
	require.NoError(t, err)

	assert.Equal(t, []core.SearchResult{
		{DocID: 0, URL: "http://a"},
		{DocID: 1, URL: "http://b"},
	}, results)
}

func TestSearcher_ConjunctionIntersects(t *testing.T) {
	s, err := NewSearcher(sharedTermFixture(t))
	require.NoError(t, err)

	results, err := s.Search([]string{"cat", "dog"}, 5)
	require.NoError(t, err)

	assert.Equal(t, []core.SearchResult{{DocID: 1, URL: "http://b"}}, results)
}

func TestSearcher_UnknownTermContributesNoConstraint(t *testing.T) {
	s, err := NewSearcher(sharedTermFixture(t))
	require.NoError(t, err)

	// Terms absent from the offset map are dropped, so the query degrades to
	// the known terms only.
	results, err := s.Search([]string{"cat", "unicorn"}, 5)
	require.NoError(t, err)

	assert.Len(t, results, 2)
}

func TestSearcher_AllTermsUnknown(t *testing.T) {
	s, err := NewSearcher(sharedTermFixture(t))
	require.NoError(t, err)

	results, err := s.Search([]string{"unicorn"}, 5)
	require.NoError(t, err)

	assert.Empty(t, results)
}

func TestSearcher_NoTerms(t *testing.T) {
	s, err := NewSearcher(sharedTermFixture(t))
	require.NoError(t, err)

	results, err := s.Search(nil, 5)
	require.NoError(t, err)

	assert.Empty(t, results)
}

func TestSearcher_LimitCapsResults(t *testing.T) {
	docs := make([]struct {
		url    string
		tokens []core.Token
	}, 8)

	for i := range docs {
		docs[i].url = "http://doc"
		docs[i].tokens = []core.Token{{Term: "common", Field: core.FieldBody}}
	}

	s, err := NewSearcher(buildArtifacts(t, docs))
	require.NoError(t, err)

	results, err := s.Search([]string{"common"}, 5)
	require.NoError(t, err)

	assert.Len(t, results, 5)
}

func TestSearcher_MissingArtifacts(t *testing.T) {
	_, err := NewSearcher(t.TempDir())
	assert.Error(t, err)
}
