package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Artifact file names inside the index directory. All three must be present
// for the searcher to function.
const (
	// MergedIndexFile is the final index, one term record per line, globally
	// sorted by term.
	MergedIndexFile = "merged_index"
	// OffsetsFile maps each term to the byte offset of its record in the
	// merged index.
	OffsetsFile = "offset_positions"
	// URLMapFile maps document ids (as decimal strings) to source URLs.
	URLMapFile = "url_map"
)

// SaveOffsets persists the term to byte-offset map as a single JSON object.
func SaveOffsets(dir string, offsets map[string]int64) error {
	return saveJSON(filepath.Join(dir, OffsetsFile), offsets)
}

// LoadOffsets reads the term to byte-offset map.
func LoadOffsets(dir string) (map[string]int64, error) {
	var offsets map[string]int64

	if err := loadJSON(filepath.Join(dir, OffsetsFile), &offsets); err != nil {
		return nil, err
	}

	return offsets, nil
}

// SaveURLMap persists the document-id to URL map. Document ids are encoded as
// decimal strings so the artifact stays a plain JSON object.
func SaveURLMap(dir string, urls map[int]string) error {
	encoded := make(map[string]string, len(urls))
	for docID, url := range urls {
		encoded[docKey(docID)] = url
	}

	return saveJSON(filepath.Join(dir, URLMapFile), encoded)
}

// LoadURLMap reads the document-id to URL map with ids as decimal strings.
func LoadURLMap(dir string) (map[string]string, error) {
	var urls map[string]string

	if err := loadJSON(filepath.Join(dir, URLMapFile), &urls); err != nil {
		return nil, err
	}

	return urls, nil
}

func saveJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", path, err)
	}

	return nil
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read artifact %s: %w", path, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal artifact %s: %w", path, err)
	}

	return nil
}
