package core

// FieldTag identifies the HTML element a token was extracted from.
type FieldTag string

const (
	// FieldTitle marks tokens extracted from <title> elements.
	FieldTitle FieldTag = "title"
	// FieldH1 marks tokens extracted from <h1> elements.
	FieldH1 FieldTag = "h1"
	// FieldH2 marks tokens extracted from <h2> elements.
	FieldH2 FieldTag = "h2"
	// FieldH3 marks tokens extracted from <h3> elements.
	FieldH3 FieldTag = "h3"
	// FieldStrong marks tokens extracted from <strong> elements.
	FieldStrong FieldTag = "strong"
	// FieldB marks tokens extracted from <b> elements.
	FieldB FieldTag = "b"
	// FieldBody marks tokens from any text not attributed to a weighted element.
	// Body is never stored in a posting's field set; presence in body is implied
	// by a positive frequency.
	FieldBody FieldTag = "body"
)

// WeightedTags lists the tags whose text is extracted with field attribution,
// in extraction order.
var WeightedTags = []FieldTag{FieldB, FieldStrong, FieldH1, FieldH2, FieldH3, FieldTitle}

// NotFoundURL is the sentinel stored for records that carry no url field.
const NotFoundURL = "Not Found"

// Record is a single crawled document as stored on disk.
type Record struct {
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Fragment is a run of text attributed to the HTML field it was found in.
type Fragment struct {
	Text  string
	Field FieldTag
}

// Token is a single stemmed term together with the field it occurred in.
type Token struct {
	Term  string
	Field FieldTag
}

// IndexSummary reports the outcome of finalizing an index build.
type IndexSummary struct {
	UniqueTerms int
	PartialRuns int
	IndexSizeKB float64
}

// BuildStats holds the statistics reported after a completed build.
type BuildStats struct {
	RunID       string
	Documents   int
	UniqueTerms int
	PartialRuns int
	IndexSizeKB float64
}

// SearchResult is a single document matching a conjunctive query.
type SearchResult struct {
	URL   string
	DocID uint32
}
