package recall

import "context"

// Rect is a bounding rectangle in CSS pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TextMatch locates a fragment inside a text node of a document.
// It is derived from the live DOM and must not be cached across queries;
// any layout change invalidates the geometry.
type TextMatch struct {
	// Path is a CSS selector for the element containing the text node.
	Path string `json:"path"`

	// NodeIndex is the position of the text node among its parent's children.
	NodeIndex int `json:"nodeIndex"`

	// Text is the full data of the matching text node.
	Text string `json:"text"`

	// StartOffset and EndOffset bound the fragment within Text.
	StartOffset int `json:"startOffset"`
	EndOffset   int `json:"endOffset"`

	// Rect is the fragment's bounding box in viewport coordinates.
	// Static matches carry a zero Rect.
	Rect Rect `json:"rect"`

	// ScrollX and ScrollY are the page scroll offsets when Rect was measured.
	ScrollX float64 `json:"scrollX"`
	ScrollY float64 `json:"scrollY"`
}

// TextLocator finds a text fragment inside a tab's live DOM.
type TextLocator interface {
	// Locate returns the first text node, in document order, containing
	// fragment as an exact, case-sensitive substring.
	// Returns a nil match and nil error if no node contains it.
	// Locate never mutates the document.
	Locate(ctx context.Context, id TabID, fragment string) (*TextMatch, error)
}

// Highlighter marks a located fragment on the page.
type Highlighter interface {
	// Highlight inserts a non-interactive overlay over the match and
	// smoothly scrolls it into view. Overlays are never removed.
	Highlight(ctx context.Context, id TabID, match *TextMatch) error
}
