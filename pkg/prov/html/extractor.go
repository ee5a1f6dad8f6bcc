// Package html extracts field-tagged text fragments from crawled HTML content.
package html

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/ksysoev/crawldex/pkg/core"
)

// Extractor parses HTML content into text fragments attributed to the element
// they were found in. Text under a weighted element (title, headings, bold) is
// emitted once under that element's tag; everything else becomes body text.
type Extractor struct{}

// New creates a new HTML fragment extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract parses content and returns its fragments in extraction order:
// first every weighted element's concatenated descendant text, grouped by tag,
// then every remaining raw text node as a body fragment. A text node counts as
// body only when its immediate parent is not one of the recorded weighted
// elements, so text nested inside a weighted element inside another weighted
// element is extracted under both tags. Fragments that trim to the empty
// string are dropped. Empty content yields no fragments.
func (e *Extractor) Extract(content string) []core.Fragment {
	if content == "" {
		return nil
	}

	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		// html.Parse only fails on reader errors, which cannot happen with a
		// strings.Reader; treat a failure as an empty document.
		return nil
	}

	var fragments []core.Fragment

	weighted := make(map[*html.Node]struct{})

	for _, tag := range core.WeightedTags {
		for _, el := range elementsByTag(doc, string(tag)) {
			text := strings.TrimSpace(nodeText(el))
			if text == "" {
				continue
			}

			weighted[el] = struct{}{}

			fragments = append(fragments, core.Fragment{Text: text, Field: tag})
		}
	}

	var collectBody func(n *html.Node)

	collectBody = func(n *html.Node) {
		if n.Type == html.TextNode {
			if _, ok := weighted[n.Parent]; !ok {
				if text := strings.TrimSpace(n.Data); text != "" {
					fragments = append(fragments, core.Fragment{Text: text, Field: core.FieldBody})
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collectBody(c)
		}
	}

	collectBody(doc)

	return fragments
}

// elementsByTag returns all elements with the given tag name in document order.
func elementsByTag(root *html.Node, tag string) []*html.Node {
	var elements []*html.Node

	var walk func(n *html.Node)

	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			elements = append(elements, n)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(root)

	return elements
}

// nodeText concatenates the text of every descendant text node of n.
func nodeText(n *html.Node) string {
	var buf strings.Builder

	var walk func(n *html.Node)

	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)

	return buf.String()
}
