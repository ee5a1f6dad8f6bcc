// Package corpus enumerates and decodes crawled document records from a
// directory tree.
package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ksysoev/crawldex/pkg/core"
)

// Source walks a corpus directory and yields paths of records that decode as
// UTF-8 JSON documents. The subdirectory layout below the root is irrelevant.
type Source struct {
	root    string
	pattern string
}

// New creates a corpus source rooted at root. Only files whose path relative
// to the root matches the doublestar glob pattern are considered.
func New(root, pattern string) *Source {
	return &Source{root: root, pattern: pattern}
}

// Enumerate recursively walks the corpus root and returns the paths of all
// records that decode successfully, in walk order. Records that fail to decode
// are skipped without surfacing an error; the length of the returned slice is
// the indexed-document count reported in build statistics.
func (s *Source) Enumerate(ctx context.Context) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(s.root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}

		// Use forward slashes for consistent matching across platforms.
		relPath = filepath.ToSlash(relPath)

		matched, err := doublestar.Match(s.pattern, relPath)
		if err != nil {
			return fmt.Errorf("invalid glob pattern %q: %w", s.pattern, err)
		}

		if !matched {
			return nil
		}

		if !isValidRecord(path) {
			slog.DebugContext(ctx, "skipping undecodable record", "path", path)
			return nil
		}

		paths = append(paths, path)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk corpus directory %s: %w", s.root, err)
	}

	return paths, nil
}

// Load reads and decodes the record at path. Records without a url field get
// the sentinel URL so every document id resolves to something printable.
func (s *Source) Load(path string) (core.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.Record{}, fmt.Errorf("failed to read record %s: %w", path, err)
	}

	var rec core.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return core.Record{}, fmt.Errorf("failed to decode record %s: %w", path, err)
	}

	if rec.URL == "" {
		rec.URL = core.NotFoundURL
	}

	return rec, nil
}

// isValidRecord reports whether the file at path holds a UTF-8 JSON payload in
// the expected record shape. Validation happens once at enumeration time so
// downstream stages never see decode errors mid-pipeline.
func isValidRecord(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	if !utf8.Valid(data) {
		return false
	}

	var rec core.Record

	return json.Unmarshal(data, &rec) == nil
}
