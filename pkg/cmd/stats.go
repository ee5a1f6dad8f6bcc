package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ksysoev/crawldex/pkg/core"
	"github.com/ksysoev/crawldex/pkg/repo/index"
)

// newStatsCmd creates a cobra command that reports statistics for previously
// built index artifacts without rebuilding them.
func newStatsCmd(flags *cmdFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print statistics for an existing index",
		Long:  "Read the index artifacts on disk and print the same statistics block a build reports, without rebuilding.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runStats(flags)
		},
	}
}

// runStats reconstructs the statistics block from the persisted artifacts:
// the URL map gives the document count, the offset map the unique-term count,
// the merged index its size, and the run files the partial-run count.
func runStats(flags *cmdFlags) error {
	if err := initLogger(flags); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	urls, err := index.LoadURLMap(cfg.Index.Path)
	if err != nil {
		return fmt.Errorf("failed to load url map: %w", err)
	}

	offsets, err := index.LoadOffsets(cfg.Index.Path)
	if err != nil {
		return fmt.Errorf("failed to load offset map: %w", err)
	}

	info, err := os.Stat(filepath.Join(cfg.Index.Path, index.MergedIndexFile))
	if err != nil {
		return fmt.Errorf("failed to stat merged index: %w", err)
	}

	runs, err := countRunFiles(cfg.Index.Path)
	if err != nil {
		return err
	}

	printStats(&core.BuildStats{
		Documents:   len(urls),
		UniqueTerms: len(offsets),
		IndexSizeKB: float64(info.Size()) / 1024,
		PartialRuns: runs,
	})

	return nil
}

// countRunFiles counts the partial-run files left in the index directory.
func countRunFiles(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read index directory: %w", err)
	}

	count := 0

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), "partial_index_") {
			count++
		}
	}

	return count, nil
}
