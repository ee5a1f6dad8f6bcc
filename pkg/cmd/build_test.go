package cmd

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksysoev/crawldex/pkg/repo/index"
)

// testConfig returns a config pointing at fresh corpus and index directories.
func testConfig(t *testing.T) *appConfig {
	t.Helper()

	return &appConfig{
		Corpus: CorpusConfig{Path: t.TempDir(), FilePattern: "**/*.json"},
		Index:  IndexConfig{Path: t.TempDir(), TokenLimit: index.DefaultTokenLimit},
		Search: SearchConfig{Limit: 5},
	}
}

func writeRecord(t *testing.T, dir, name, payload string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(payload), 0o600))
}

func TestBuild_SingleDocumentTitleOnly(t *testing.T) {
	cfg := testConfig(t)

	writeRecord(t, cfg.Corpus.Path, "d0.json",
		`{"url":"http://a","content":"<title>Hello World</title>"}`)

	svc, err := newService(cfg)
	require.NoError(t, err)

	stats, err := svc.Build(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Documents)
	assert.Equal(t, 2, stats.UniqueTerms)

	urls, err := index.LoadURLMap(cfg.Index.Path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"0": "http://a"}, urls)

	data, err := os.ReadFile(filepath.Join(cfg.Index.Path, index.MergedIndexFile))
	require.NoError(t, err)

	assert.JSONEq(t, `{"hello":{"0":{"fields":["title"],"freq":1}}}`, readLine(t, data, 0))
	assert.JSONEq(t, `{"world":{"0":{"fields":["title"],"freq":1}}}`, readLine(t, data, 1))
}

func TestBuild_SharedTermAcrossDocuments(t *testing.T) {
	cfg := testConfig(t)

	writeRecord(t, cfg.Corpus.Path, "d0.json", `{"url":"http://a","content":"<title>cat</title>"}`)
	writeRecord(t, cfg.Corpus.Path, "d1.json", `{"url":"http://b","content":"cat cat"}`)

	svc, err := newService(cfg)
	require.NoError(t, err)

	stats, err := svc.Build(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Documents)
	assert.Equal(t, 1, stats.UniqueTerms)

	data, err := os.ReadFile(filepath.Join(cfg.Index.Path, index.MergedIndexFile))
	require.NoError(t, err)

	assert.JSONEq(t,
		`{"cat":{"0":{"fields":["title"],"freq":1},"1":{"fields":[],"freq":2}}}`,
		readLine(t, data, 0))

	// Queries are case-insensitive and resolve to both documents.
	results, err := svc.Search("CAT", cfg.Search.Limit)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "http://a", results[0].URL)
	assert.Equal(t, "http://b", results[1].URL)

	// Unknown terms contribute no constraint, so the query degrades to the
	// known terms only.
	results, err = svc.Search("cat dog", cfg.Search.Limit)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestBuild_UndecodableRecordsNeverConsumeIDs(t *testing.T) {
	cfg := testConfig(t)

	writeRecord(t, cfg.Corpus.Path, "d0.json", `{"url":"http://a","content":"cat"}`)
	writeRecord(t, cfg.Corpus.Path, "d1.json", `{"url": broken`)
	writeRecord(t, cfg.Corpus.Path, "d2.json", `{"url":"http://c"}`)

	svc, err := newService(cfg)
	require.NoError(t, err)

	stats, err := svc.Build(t.Context())
	require.NoError(t, err)

	// The broken record is skipped before id assignment; the record without
	// content still consumes an id.
	assert.Equal(t, 2, stats.Documents)

	urls, err := index.LoadURLMap(cfg.Index.Path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"0": "http://a", "1": "http://c"}, urls)
}

func TestBuild_OffsetSeekRoundTrip(t *testing.T) {
	cfg := testConfig(t)

	writeRecord(t, cfg.Corpus.Path, "d0.json",
		`{"url":"http://a","content":"<h1>Fast</h1><p>Fast lane on route 66</p>"}`)
	writeRecord(t, cfg.Corpus.Path, "d1.json",
		`{"url":"http://b","content":"<title>Route maps</title>"}`)

	svc, err := newService(cfg)
	require.NoError(t, err)

	_, err = svc.Build(t.Context())
	require.NoError(t, err)

	offsets, err := index.LoadOffsets(cfg.Index.Path)
	require.NoError(t, err)
	require.NotEmpty(t, offsets)

	f, err := os.Open(filepath.Join(cfg.Index.Path, index.MergedIndexFile))
	require.NoError(t, err)

	defer f.Close()

	// Every offset points at the first byte of a line whose sole top-level
	// key is the term itself.
	for term, offset := range offsets {
		_, err := f.Seek(offset, io.SeekStart)
		require.NoError(t, err)

		line, err := bufio.NewReader(f).ReadBytes('\n')
		require.NoError(t, err)

		var rec map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(line, &rec))
		require.Len(t, rec, 1)
		assert.Contains(t, rec, term)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	cfg := testConfig(t)

	writeRecord(t, cfg.Corpus.Path, "d0.json", `{"url":"http://a","content":"<title>cat</title>"}`)
	writeRecord(t, cfg.Corpus.Path, "d1.json", `{"url":"http://b","content":"lane fast cat"}`)

	build := func(indexDir string) []byte {
		cfg := &appConfig{
			Corpus: cfg.Corpus,
			Index:  IndexConfig{Path: indexDir, TokenLimit: index.DefaultTokenLimit},
			Search: SearchConfig{Limit: 5},
		}

		svc, err := newService(cfg)
		require.NoError(t, err)

		_, err = svc.Build(t.Context())
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(indexDir, index.MergedIndexFile))
		require.NoError(t, err)

		return data
	}

	first := build(t.TempDir())
	second := build(t.TempDir())

	assert.Equal(t, first, second)
}

// readLine returns the i-th newline-terminated line of data.
func readLine(t *testing.T, data []byte, i int) string {
	t.Helper()

	lines := splitLines(data)
	require.Greater(t, len(lines), i)

	return lines[i]
}

func splitLines(data []byte) []string {
	var lines []string

	start := 0

	for pos, b := range data {
		if b == '\n' {
			lines = append(lines, string(data[start:pos]))
			start = pos + 1
		}
	}

	return lines
}
