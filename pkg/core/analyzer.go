package core

import (
	"strings"

	snowballeng "github.com/kljensen/snowball/english"
)

// Tokenize normalizes extracted fragments into a stream of stemmed tokens.
// Each fragment is lowercased, split into maximal alphanumeric runs, and every
// run is stemmed. Tokens keep the field of the fragment they came from and are
// not deduplicated; frequency accounting happens in the index writer.
func Tokenize(fragments []Fragment) []Token {
	var tokens []Token

	for _, f := range fragments {
		for _, run := range alnumRuns(f.Text) {
			tokens = append(tokens, Token{
				Term:  snowballeng.Stem(run, false),
				Field: f.Field,
			})
		}
	}

	return tokens
}

// TokenizeQuery normalizes a raw query string the same way document text is
// normalized and returns the unique stemmed terms in first-seen order.
func TokenizeQuery(query string) []string {
	var terms []string

	seen := make(map[string]struct{})

	for _, run := range alnumRuns(query) {
		stemmed := snowballeng.Stem(run, false)

		if _, ok := seen[stemmed]; ok {
			continue
		}

		seen[stemmed] = struct{}{}
		terms = append(terms, stemmed)
	}

	return terms
}

// alnumRuns lowercases s and splits it into maximal runs of [a-z0-9].
// Any other character acts as a separator and never appears in a run.
func alnumRuns(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})
}
