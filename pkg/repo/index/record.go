// Package index implements the external-memory inverted index: a bounded
// in-memory writer that spills sorted runs, a k-way streaming merger that
// produces the final single-file index, and a searcher that resolves
// conjunctive queries against the persisted artifacts.
package index

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Posting is the on-disk per-(term, document) unit: an occurrence count and
// the weighted fields the term appeared in. Body occurrences contribute to
// Freq only and are never listed in Fields.
type Posting struct {
	Fields []string `json:"fields"`
	Freq   int      `json:"freq"`
}

// PostingList maps decimal document-id strings to postings for a single term.
type PostingList map[string]Posting

// posting accumulates a single posting in memory with its field set
// deduplicated. It is materialized into a Posting at serialization time.
type posting struct {
	fields map[string]struct{}
	freq   int
}

func newPosting() *posting {
	return &posting{fields: make(map[string]struct{})}
}

// materialize collapses the accumulated posting into its wire form with the
// field set rendered as a sorted list.
func (p *posting) materialize() Posting {
	fields := make([]string, 0, len(p.fields))
	for f := range p.fields {
		fields = append(fields, f)
	}

	sort.Strings(fields)

	return Posting{Fields: fields, Freq: p.freq}
}

// encodeRecord serializes one {term: posting-list} unit as a single
// newline-terminated line. Document ids are emitted as decimal strings; the
// posting map iteration order does not affect the output because encoding/json
// sorts object keys.
func encodeRecord(term string, postings map[string]*posting) ([]byte, error) {
	list := make(PostingList, len(postings))
	for docID, p := range postings {
		list[docID] = p.materialize()
	}

	line, err := json.Marshal(map[string]PostingList{term: list})
	if err != nil {
		return nil, fmt.Errorf("failed to encode record for term %q: %w", term, err)
	}

	return append(line, '\n'), nil
}

// decodeRecord parses one line of a run or index file and returns its sole
// term and posting list. A line with anything other than exactly one top-level
// term violates the file format and is reported as an error.
func decodeRecord(line []byte) (string, PostingList, error) {
	var rec map[string]PostingList

	if err := json.Unmarshal(line, &rec); err != nil {
		return "", nil, fmt.Errorf("failed to decode index record: %w", err)
	}

	if len(rec) != 1 {
		return "", nil, fmt.Errorf("malformed index record: expected one term, got %d", len(rec))
	}

	for term, postings := range rec {
		return term, postings, nil
	}

	return "", nil, nil // unreachable
}

// docKey renders a document id the way it is stored on disk.
func docKey(docID int) string {
	return strconv.Itoa(docID)
}
