package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ksysoev/crawldex/pkg/core"
)

// exitSentinel terminates the interactive search loop.
const exitSentinel = "exit"

// RunSearch starts the interactive query loop against previously built index
// artifacts.
func RunSearch(ctx context.Context, flags *cmdFlags) error {
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

	return searchLoop(ctx, svc, cfg.Search.Limit)
}

// searchLoop reads queries from stdin and prints the URLs of matching
// documents until the exit sentinel is entered or stdin is exhausted.
func searchLoop(ctx context.Context, svc *core.Service, limit int) error {
	//nolint:forbidigo // CLI output is intentional
	fmt.Println("\n--------SEARCH INTERFACE--------")

	scanner := bufio.NewScanner(os.Stdin)

	for {
		//nolint:forbidigo // CLI output is intentional
		fmt.Print("\nEnter your query (type 'exit' to quit): ")

		if !scanner.Scan() {
			break
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		query := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(query, exitSentinel) {
			break
		}

		results, err := svc.Search(query, limit)
		if err != nil {
			return fmt.Errorf("failed to resolve query: %w", err)
		}

		printResults(results)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read query: %w", err)
	}

	//nolint:forbidigo // CLI output is intentional
	fmt.Println("----------------------------------")

	return nil
}

// printResults writes the matched URLs, or a placeholder when nothing matched.
func printResults(results []core.SearchResult) {
	if len(results) == 0 {
		//nolint:forbidigo // CLI output is intentional
		fmt.Println("No relevant documents found")
		return
	}

	for _, r := range results {
		//nolint:forbidigo // CLI output is intentional
		fmt.Println(r.URL)
	}
}
