package index

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/ksysoev/crawldex/pkg/core"
)

// Searcher resolves conjunctive queries against the persisted index
// artifacts. Each term lookup is a constant-time seek into the merged index
// followed by a single line read.
type Searcher struct {
	offsets   map[string]int64
	urls      map[string]string
	indexPath string
}

// NewSearcher loads the offset and URL maps from dir and returns a searcher
// over the merged index stored there.
func NewSearcher(dir string) (*Searcher, error) {
	offsets, err := LoadOffsets(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load offset map: %w", err)
	}

	urls, err := LoadURLMap(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load url map: %w", err)
	}

	return &Searcher{
		offsets:   offsets,
		urls:      urls,
		indexPath: filepath.Join(dir, MergedIndexFile),
	}, nil
}

// Search intersects the posting sets of the given stemmed terms and returns
// up to limit matching documents in ascending document-id order. Terms absent
// from the offset map contribute no constraint; when no term is known the
// result is empty.
func (s *Searcher) Search(terms []string, limit int) ([]core.SearchResult, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	f, err := os.Open(s.indexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open merged index: %w", err)
	}
	defer f.Close()

	var sets []*roaring.Bitmap

	for _, term := range terms {
		docs, ok, err := s.lookup(f, term)
		if err != nil {
			return nil, err
		}

		if ok {
			sets = append(sets, docs)
		}
	}

	if len(sets) == 0 {
		return nil, nil
	}

	// Intersect smallest-first so the working set only shrinks.
	sort.Slice(sets, func(i, j int) bool {
		return sets[i].GetCardinality() < sets[j].GetCardinality()
	})

	result := sets[0]
	for _, docs := range sets[1:] {
		result.And(docs)
	}

	matches := make([]core.SearchResult, 0, limit)

	it := result.Iterator()
	for it.HasNext() && len(matches) < limit {
		docID := it.Next()

		url, ok := s.urls[strconv.FormatUint(uint64(docID), 10)]
		if !ok {
			url = core.NotFoundURL
		}

		matches = append(matches, core.SearchResult{DocID: docID, URL: url})
	}

	return matches, nil
}

// lookup seeks to term's record in the merged index and returns its document
// ids as a bitmap. The second return value is false when the term is not in
// the offset map.
func (s *Searcher) lookup(f *os.File, term string) (*roaring.Bitmap, bool, error) {
	offset, ok := s.offsets[term]
	if !ok {
		return nil, false, nil
	}

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, false, fmt.Errorf("failed to seek to term %q: %w", term, err)
	}

	line, err := bufio.NewReader(f).ReadBytes('\n')
	if err != nil && err != io.EOF {
		return nil, false, fmt.Errorf("failed to read record for term %q: %w", term, err)
	}

	recTerm, postings, err := decodeRecord(line)
	if err != nil {
		return nil, false, err
	}

	if recTerm != term {
		return nil, false, fmt.Errorf("offset for term %q points at record for %q", term, recTerm)
	}

	docs := roaring.New()

	for docID := range postings {
		id, err := strconv.ParseUint(docID, 10, 32)
		if err != nil {
			return nil, false, fmt.Errorf("invalid document id %q for term %q: %w", docID, term, err)
		}

		docs.Add(uint32(id))
	}

	return docs, true, nil
}
