// Package geom holds the render-time geometry model: one page's captured
// DOM nodes with their pixel rectangles and paint attributes, plus the
// paint ordering the compositor relies on.
package geom

import "sort"

// Tag is the closed set of element kinds the layout pipeline distinguishes.
// Tags the capture collaborator reports but the pipeline has no special
// handling for map to TagBlock via ParseTag.
type Tag int

const (
	TagBlock Tag = iota // div and any unrecognized element
	TagInline           // span
	TagSection
	TagArticle
	TagH1
	TagH2
	TagH3
	TagH4
	TagH5
	TagH6
	TagParagraph
	TagListItem
	TagAnchor
	TagButton
	TagLabel
	TagImage
	TagCaption   // figcaption
	TagTableCell // td, th
	TagContainer // header, nav, main, aside, footer, figure, table
	TagList      // ul, ol
	TagInput     // input, textarea, select
)

var tagNames = map[string]Tag{
	"div":        TagBlock,
	"span":       TagInline,
	"section":    TagSection,
	"article":    TagArticle,
	"h1":         TagH1,
	"h2":         TagH2,
	"h3":         TagH3,
	"h4":         TagH4,
	"h5":         TagH5,
	"h6":         TagH6,
	"p":          TagParagraph,
	"li":         TagListItem,
	"a":          TagAnchor,
	"button":     TagButton,
	"label":      TagLabel,
	"img":        TagImage,
	"figcaption": TagCaption,
	"td":         TagTableCell,
	"th":         TagTableCell,
	"header":     TagContainer,
	"nav":        TagContainer,
	"main":       TagContainer,
	"aside":      TagContainer,
	"footer":     TagContainer,
	"figure":     TagContainer,
	"table":      TagContainer,
	"ul":         TagList,
	"ol":         TagList,
	"input":      TagInput,
	"textarea":   TagInput,
	"select":     TagInput,
}

// ParseTag maps a lowercase element name to its Tag. Unknown names map to
// TagBlock so captured pages with exotic markup still render.
func ParseTag(name string) Tag {
	if t, ok := tagNames[name]; ok {
		return t
	}
	return TagBlock
}

// IsHeading reports whether t is any heading level.
func (t Tag) IsHeading() bool { return t >= TagH1 && t <= TagH6 }

// IsTopHeading reports whether t is h1–h3, which paint bold regardless of
// the computed font weight.
func (t Tag) IsTopHeading() bool { return t >= TagH1 && t <= TagH3 }

// Display is the computed CSS display mode, reduced to what eligibility
// rules care about.
type Display int

const (
	DisplayOther Display = iota
	DisplayBlock
	DisplayInline
)

// ParseDisplay reduces a computed display value. Only the exact values
// "inline" and "block" are distinguished; inline-block and friends are
// DisplayOther.
func ParseDisplay(s string) Display {
	switch s {
	case "inline":
		return DisplayInline
	case "block":
		return DisplayBlock
	default:
		return DisplayOther
	}
}

// Rect is an element rectangle in source pixel space.
type Rect struct {
	X, Y, W, H int
}

// Area returns W*H. Degenerate rectangles have zero or negative area.
func (r Rect) Area() int { return r.W * r.H }

// Node is one DOM element's render-time projection as reported by the
// capture collaborator. Immutable once captured.
type Node struct {
	Tag         Tag
	Rect        Rect
	Z           int    // z-index, 0 when auto
	Text        string // whitespace-collapsed, length-capped; empty for images
	Href        string // absolute URL of the enclosing anchor, if any
	ImageSource string // absolute URL for img src or CSS background-image
	Bold        bool   // computed font-weight 700/800/900/bold
	Display     Display
}

// Snapshot is one page's captured node sequence plus the resolved final URL.
type Snapshot struct {
	Nodes    []Node
	FinalURL string
}

// SortPaintOrder orders nodes by (z, y, x, area) ascending: lower z paints
// first, then top-to-bottom, left-to-right, larger areas last among ties.
// The sort is stable so capture order breaks remaining ties. This is the
// single ordering invariant the compositor trusts; it never re-sorts.
func (s *Snapshot) SortPaintOrder() {
	sort.SliceStable(s.Nodes, func(i, j int) bool {
		a, b := s.Nodes[i], s.Nodes[j]
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		if a.Rect.Y != b.Rect.Y {
			return a.Rect.Y < b.Rect.Y
		}
		if a.Rect.X != b.Rect.X {
			return a.Rect.X < b.Rect.X
		}
		return a.Rect.Area() < b.Rect.Area()
	})
}
