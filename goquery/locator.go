// Package goquery locates text fragments in static HTML markup using
// goquery and golang.org/x/net/html. It mirrors the live-DOM locator in
// package rod so a saved page can be checked offline.
package goquery

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/recall"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// skipped lists elements whose text is never matched.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
}

// Locate returns the first text node, in document order, whose data
// contains fragment as an exact, case-sensitive substring. The walk starts
// at body, or the document element if there is no body. Offsets are byte
// offsets and Rect is zero.
//
// Returns ENOMATCH if no text node contains the fragment, including when
// fragment is empty.
func Locate(markup, fragment string) (*recall.TextMatch, error) {
	if fragment == "" {
		return nil, recall.Errorf(recall.ENOMATCH, "empty fragment")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, recall.Errorf(recall.EINVALID, "failed to parse HTML: %v", err)
	}

	root := doc.Find("body").First()
	if root.Length() == 0 {
		root = doc.Find("html").First()
	}
	if root.Length() == 0 {
		return nil, recall.Errorf(recall.ENOMATCH, "document has no content")
	}

	node, start := find(root.Get(0), fragment)
	if node == nil {
		return nil, recall.Errorf(recall.ENOMATCH, "text not found: %q", fragment)
	}

	return &recall.TextMatch{
		Path:        path(node.Parent),
		NodeIndex:   childIndex(node),
		Text:        node.Data,
		StartOffset: start,
		EndOffset:   start + len(fragment),
	}, nil
}

// find walks n depth-first and returns the first matching text node and
// the fragment's offset within it.
func find(n *html.Node, fragment string) (*html.Node, int) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if i := strings.Index(c.Data, fragment); i >= 0 {
				return c, i
			}
		case html.ElementNode:
			if skipped[c.DataAtom] {
				continue
			}
			if m, i := find(c, fragment); m != nil {
				return m, i
			}
		}
	}
	return nil, -1
}

// path builds a CSS selector from the document element down to el, using
// :nth-of-type for every element below the root.
func path(el *html.Node) string {
	var parts []string
	for ; el != nil && el.Type == html.ElementNode; el = el.Parent {
		if el.Parent == nil || el.Parent.Type != html.ElementNode {
			parts = append(parts, el.Data)
			break
		}
		n := 1
		for s := el.PrevSibling; s != nil; s = s.PrevSibling {
			if s.Type == html.ElementNode && s.Data == el.Data {
				n++
			}
		}
		parts = append(parts, el.Data+":nth-of-type("+strconv.Itoa(n)+")")
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}

// childIndex returns the position of n among its parent's children.
func childIndex(n *html.Node) int {
	i := 0
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		i++
	}
	return i
}
