package index

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ksysoev/crawldex/pkg/core"
)

// DefaultTokenLimit is the number of distinct terms held in memory before the
// writer spills a partial run to disk. The value is a working-memory bound,
// not a correctness knob.
const DefaultTokenLimit = 30000

const partialPrefix = "partial_index_"

// Writer accumulates an in-memory inverted index over incoming documents and
// spills lexicographically sorted runs to disk whenever the distinct-term
// count crosses the token limit. It assigns dense, monotonically increasing
// document ids in the order documents are added and records their URLs.
type Writer struct {
	index      map[string]map[string]*posting
	urls       map[int]string
	dir        string
	runFiles   []string
	tokenLimit int
	nextDoc    int
	runs       int
}

// NewWriter creates a partial-index writer that stores run files in dir,
// creating the directory if needed. tokenLimit bounds the distinct terms held
// in memory; values below one fall back to DefaultTokenLimit.
func NewWriter(dir string, tokenLimit int) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	if tokenLimit < 1 {
		tokenLimit = DefaultTokenLimit
	}

	return &Writer{
		dir:        dir,
		tokenLimit: tokenLimit,
		index:      make(map[string]map[string]*posting),
		urls:       make(map[int]string),
	}, nil
}

// Add indexes one document's tokens under the next document id and records its
// URL. A document with no tokens still consumes an id. When the distinct-term
// count exceeds the token limit after the document is folded in, the in-memory
// index is flushed as a sorted run and cleared.
func (w *Writer) Add(url string, tokens []core.Token) error {
	docID := docKey(w.nextDoc)
	w.urls[w.nextDoc] = url

	for _, tok := range tokens {
		postings := w.index[tok.Term]
		if postings == nil {
			postings = make(map[string]*posting)
			w.index[tok.Term] = postings
		}

		p := postings[docID]
		if p == nil {
			p = newPosting()
			postings[docID] = p
		}

		p.freq++

		if tok.Field != core.FieldBody {
			p.fields[string(tok.Field)] = struct{}{}
		}
	}

	w.nextDoc++

	if len(w.index) > w.tokenLimit {
		if err := w.flush(); err != nil {
			return err
		}

		w.runs++
	}

	return nil
}

// Close flushes any terms still in memory as a final run. The run counter is
// advanced before this last flush, so when intermediate flushes happened the
// final file is not numbered contiguously with them; run numbering carries no
// meaning beyond uniqueness.
func (w *Writer) Close() error {
	if len(w.index) == 0 {
		return nil
	}

	w.runs++

	return w.flush()
}

// Documents returns the number of document ids assigned so far.
func (w *Writer) Documents() int {
	return w.nextDoc
}

// Runs returns the partial-run count reported in build statistics.
func (w *Writer) Runs() int {
	return w.runs
}

// RunFiles returns the paths of the run files written so far, in write order.
func (w *Writer) RunFiles() []string {
	return w.runFiles
}

// URLMap returns the document-id to URL mapping accumulated so far.
func (w *Writer) URLMap() map[int]string {
	return w.urls
}

// flush writes the in-memory index to partial_index_<runs> as one record per
// line in non-decreasing term order, then clears the index.
func (w *Writer) flush() error {
	path := filepath.Join(w.dir, fmt.Sprintf("%s%d", partialPrefix, w.runs))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create run file %s: %w", path, err)
	}

	terms := make([]string, 0, len(w.index))
	for term := range w.index {
		terms = append(terms, term)
	}

	sort.Strings(terms)

	bw := bufio.NewWriter(f)

	for _, term := range terms {
		line, err := encodeRecord(term, w.index[term])
		if err != nil {
			f.Close()
			return err
		}

		if _, err := bw.Write(line); err != nil {
			f.Close()
			return fmt.Errorf("failed to write run file %s: %w", path, err)
		}
	}

	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush run file %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close run file %s: %w", path, err)
	}

	w.index = make(map[string]map[string]*posting)
	w.runFiles = append(w.runFiles, path)

	return nil
}
