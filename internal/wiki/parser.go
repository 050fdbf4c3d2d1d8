// internal/wiki/parser.go
//
// HTML parser for ru.wiktionary.org printable pages. A word's page
// lists one block per language; inside the Russian block the
// "Значение" section holds an ordered list of definitions. Each list
// item may start with usage labels (разг., перен., ...) rendered as
// links wrapping a span.
//
// The walk runs over the direct children of div.mw-parser-output as a
// small state machine: find the Russian headline, then every
// "Значение" headline, then harvest the next list. An h1 starts the
// next language block and stops the walk.

package wiki

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Definition is one parsed dictionary definition. Labels hold the
// short vocabulary marks found in front of the text.
type Definition struct {
	Labels []string
	Text   string
}

var (
	noiseRe  = regexp.MustCompile(`(\[. \d+\])|(\[\d+\])`)
	spacesRe = regexp.MustCompile(` +`)
)

const (
	stateLanguage = iota
	stateSections
	stateList
)

// Parse extracts Russian definitions from a printable Wiktionary page.
// A page without a Russian block yields no definitions and no error.
func Parse(r io.Reader) ([]Definition, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse wiktionary page: %w", err)
	}

	root := findFirst(doc, func(n *html.Node) bool {
		return isElem(n, "div") && hasClass(n, "mw-parser-output")
	})
	if root == nil {
		return nil, fmt.Errorf("wiktionary page has no mw-parser-output block")
	}

	var (
		state = stateLanguage
		defs  []Definition
	)
	for n := root.FirstChild; n != nil; n = n.NextSibling {
		switch state {
		case stateLanguage:
			if headline(n) == "Русский" {
				state = stateSections
			}
		case stateSections:
			if isElem(n, "h1") {
				return defs, nil
			}
			if headline(n) == "Значение" {
				state = stateList
			}
		case stateList:
			list := findFirst(n, func(n *html.Node) bool { return isElem(n, "ol") })
			if list == nil {
				continue
			}
			for _, li := range findAll(list, func(n *html.Node) bool { return isElem(n, "li") }) {
				labels := itemLabels(li)
				if text := cleanup(labels, allText(li)); text != "" {
					defs = append(defs, Definition{Labels: labels, Text: text})
				}
			}
			state = stateSections
		}
	}
	return defs, nil
}

// headline returns the text of a span.mw-headline inside n, or "".
func headline(n *html.Node) string {
	span := findFirst(n, func(n *html.Node) bool {
		return isElem(n, "span") && hasClass(n, "mw-headline")
	})
	if span == nil || span.FirstChild == nil || span.FirstChild.Type != html.TextNode {
		return ""
	}
	return span.FirstChild.Data
}

// itemLabels collects usage labels: the first span text under each
// link in the list item.
func itemLabels(li *html.Node) []string {
	var labels []string
	for _, a := range findAll(li, func(n *html.Node) bool { return isElem(n, "a") }) {
		span := findFirst(a, func(n *html.Node) bool { return isElem(n, "span") })
		if span != nil && span.FirstChild != nil && span.FirstChild.Type == html.TextNode {
			labels = append(labels, span.FirstChild.Data)
		}
	}
	return labels
}

// cleanup normalizes a raw definition: drop the labels themselves,
// cut the usage example after the lozenge, strip footnote markers and
// collapse whitespace.
func cleanup(labels []string, raw string) string {
	s := strings.ReplaceAll(raw, " ", " ")
	for _, l := range labels {
		s = strings.ReplaceAll(s, l, "")
	}
	for strings.HasPrefix(s, ", ") {
		s = strings.TrimPrefix(s, ", ")
	}
	if i := strings.Index(s, "◆"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(noiseRe.ReplaceAllString(s, " "))
	return spacesRe.ReplaceAllString(s, " ")
}

func isElem(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && n.Data == tag
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	if match(n) {
		out = append(out, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, findAll(c, match)...)
	}
	return out
}

// allText concatenates every text node under n in document order.
func allText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
