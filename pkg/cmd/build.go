package cmd

import (
	"context"
	"fmt"

	"github.com/ksysoev/crawldex/pkg/core"
	"github.com/ksysoev/crawldex/pkg/prov/html"
	"github.com/ksysoev/crawldex/pkg/repo/corpus"
	"github.com/ksysoev/crawldex/pkg/repo/index"
)

// newService wires the corpus source, HTML extractor, and index store into a
// core service according to the loaded configuration.
func newService(cfg *appConfig) (*core.Service, error) {
	store, err := index.NewStore(cfg.Index.Path, cfg.Index.TokenLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to create index store: %w", err)
	}

	source := corpus.New(cfg.Corpus.Path, cfg.Corpus.FilePattern)

	return core.New(source, html.New(), store), nil
}

// RunBuild initializes the logger, loads configuration, builds the index, and
// prints build statistics. It returns an error if any step fails.
func RunBuild(ctx context.Context, flags *cmdFlags) error {
	if err := initLogger(flags); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	svc, err := newService(cfg)
	if err != nil {
		return err
	}

	stats, err := svc.Build(ctx)
	if err != nil {
		return fmt.Errorf("failed to build index: %w", err)
	}

	printStats(stats)

	return nil
}

// RunBuildAndSearch builds the index, prints statistics, and enters the
// interactive search loop in the same process.
func RunBuildAndSearch(ctx context.Context, flags *cmdFlags) error {
	if err := initLogger(flags); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	svc, err := newService(cfg)
	if err != nil {
		return err
	}

	stats, err := svc.Build(ctx)
	if err != nil {
		return fmt.Errorf("failed to build index: %w", err)
	}

	printStats(stats)

	return searchLoop(ctx, svc, cfg.Search.Limit)
}

// printStats writes the build statistics block to stdout.
func printStats(stats *core.BuildStats) {
	//nolint:forbidigo // CLI output is intentional
	fmt.Printf(`
----------------###### STATISTICS ######----------------

The number of indexed documents: %d

The number of unique words: %d

The total size (in KB) of your index on disk: %g

The number of partial indexes created: %d

----------------############################----------------
`,
		stats.Documents, stats.UniqueTerms, stats.IndexSizeKB, stats.PartialRuns)
}
