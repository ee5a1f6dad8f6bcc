// Package core provides the domain model and build orchestration for the
// inverted-index pipeline.
package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// documentSource enumerates and decodes crawled document records.
type documentSource interface {
	Enumerate(ctx context.Context) ([]string, error)
	Load(path string) (Record, error)
}

// contentExtractor parses raw HTML into field-tagged text fragments.
type contentExtractor interface {
	Extract(content string) []Fragment
}

// indexStore defines the persistence operations the pipeline needs: feeding
// documents into the partial-index writer, finalizing the merged artifacts,
// and resolving queries against them.
type indexStore interface {
	Add(url string, tokens []Token) error
	Finalize(ctx context.Context) (IndexSummary, error)
	Search(terms []string, limit int) ([]SearchResult, error)
}

// Service orchestrates the build pipeline and query resolution.
type Service struct {
	source  documentSource
	extract contentExtractor
	index   indexStore
}

// New creates a new Service instance with the provided dependencies.
func New(source documentSource, extract contentExtractor, index indexStore) *Service {
	return &Service{
		source:  source,
		extract: extract,
		index:   index,
	}
}

// Build runs the full pipeline: enumerate the corpus, extract and tokenize
// every document, spill partial runs, merge them into the final index, and
// persist the offset and URL maps. Document ids are assigned in enumeration
// order. Records that failed to decode were already dropped at enumeration
// and never consume an id; documents with empty content still do.
func (s *Service) Build(ctx context.Context) (*BuildStats, error) {
	runID := uuid.New().String()

	slog.InfoContext(ctx, "starting index build", "run_id", runID)

	paths, err := s.source.Enumerate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate corpus: %w", err)
	}

	for _, path := range paths {
		rec, err := s.source.Load(path)
		if err != nil {
			// Enumeration already validated every path; a failure here means
			// the corpus changed under the build and the dense id assignment
			// can no longer be trusted.
			return nil, fmt.Errorf("failed to load record %s: %w", path, err)
		}

		tokens := Tokenize(s.extract.Extract(rec.Content))

		if err := s.index.Add(rec.URL, tokens); err != nil {
			return nil, fmt.Errorf("failed to index document %s: %w", path, err)
		}
	}

	summary, err := s.index.Finalize(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to finalize index: %w", err)
	}

	stats := &BuildStats{
		RunID:       runID,
		Documents:   len(paths),
		UniqueTerms: summary.UniqueTerms,
		PartialRuns: summary.PartialRuns,
		IndexSizeKB: summary.IndexSizeKB,
	}

	slog.InfoContext(ctx, "index build complete",
		"run_id", runID,
		"documents", stats.Documents,
		"unique_terms", stats.UniqueTerms,
		"partial_runs", stats.PartialRuns,
		"index_size_kb", stats.IndexSizeKB,
	)

	return stats, nil
}

// Search normalizes the query the same way document text is normalized and
// intersects the posting sets of the resulting terms. Terms not present in
// the index contribute no constraint; a query with no known terms returns no
// results.
func (s *Service) Search(query string, limit int) ([]SearchResult, error) {
	terms := TokenizeQuery(query)
	if len(terms) == 0 {
		return nil, nil
	}

	results, err := s.index.Search(terms, limit)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	return results, nil
}
