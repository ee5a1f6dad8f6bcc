package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ksysoev/crawldex/pkg/core"
)

// Store ties the partial-index writer, merger, and searcher together behind
// the operations the core service consumes. A store is used by exactly one
// build at a time; the merged artifacts it produces persist indefinitely.
type Store struct {
	writer   *Writer
	searcher *Searcher
	dir      string
}

// NewStore creates an index store rooted at dir. tokenLimit bounds the
// distinct terms the writer holds in memory before spilling a partial run.
func NewStore(dir string, tokenLimit int) (*Store, error) {
	w, err := NewWriter(dir, tokenLimit)
	if err != nil {
		return nil, err
	}

	return &Store{dir: dir, writer: w}, nil
}

// Add indexes one document's tokens under the next document id.
func (s *Store) Add(url string, tokens []core.Token) error {
	return s.writer.Add(url, tokens)
}

// Finalize flushes the last partial run, merges all runs into the final index,
// and persists the offset and URL maps. After a successful finalize the store
// serves searches from the fresh artifacts.
func (s *Store) Finalize(ctx context.Context) (core.IndexSummary, error) {
	if err := s.writer.Close(); err != nil {
		return core.IndexSummary{}, fmt.Errorf("failed to flush final run: %w", err)
	}

	runFiles := s.writer.RunFiles()

	slog.DebugContext(ctx, "merging partial runs", "runs", len(runFiles))

	indexPath := filepath.Join(s.dir, MergedIndexFile)

	offsets, unique, err := Merge(runFiles, indexPath)
	if err != nil {
		return core.IndexSummary{}, fmt.Errorf("failed to merge partial runs: %w", err)
	}

	if err := SaveOffsets(s.dir, offsets); err != nil {
		return core.IndexSummary{}, err
	}

	if err := SaveURLMap(s.dir, s.writer.URLMap()); err != nil {
		return core.IndexSummary{}, err
	}

	info, err := os.Stat(indexPath)
	if err != nil {
		return core.IndexSummary{}, fmt.Errorf("failed to stat merged index: %w", err)
	}

	// Invalidate any searcher loaded from previous artifacts.
	s.searcher = nil

	return core.IndexSummary{
		UniqueTerms: unique,
		PartialRuns: s.writer.Runs(),
		IndexSizeKB: float64(info.Size()) / 1024,
	}, nil
}

// Search resolves a conjunctive query over the persisted artifacts, loading
// them on first use.
func (s *Store) Search(terms []string, limit int) ([]core.SearchResult, error) {
	if s.searcher == nil {
		searcher, err := NewSearcher(s.dir)
		if err != nil {
			return nil, err
		}

		s.searcher = searcher
	}

	return s.searcher.Search(terms, limit)
}
