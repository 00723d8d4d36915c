package render

import (
	"net/url"
	"strings"

	"github.com/hazyhaar/termweb/geom"
)

// snippetLen is how many leading characters of a painted text block are
// kept for duplicate comparison.
const snippetLen = 24

// placedText records one successfully painted text block for the lifetime
// of a single page render.
type placedText struct {
	rect    CellRect
	snippet string
}

// deduper suppresses text nodes whose region and content are a near-repeat
// of text already painted on the same page. Rendering engines commonly
// expose a summary container and its descendants as separate text-bearing
// nodes; geometry alone or content alone would both over-suppress, so the
// test requires both signals.
type deduper struct {
	threshold float64
	placed    []placedText
}

func snippet(text string) string {
	r := []rune(text)
	if len(r) > snippetLen {
		r = r[:snippetLen]
	}
	return string(r)
}

// isDuplicate reports whether a candidate rectangle/text pair overlaps an
// already-placed block above the IoU threshold while one snippet contains
// the other.
func (d *deduper) isDuplicate(r CellRect, text string) bool {
	sn := snippet(text)
	for _, p := range d.placed {
		if IoU(r, p.rect) > d.threshold &&
			(strings.Contains(p.snippet, sn) || strings.Contains(sn, p.snippet)) {
			return true
		}
	}
	return false
}

// record remembers a painted block for later duplicate checks.
func (d *deduper) record(r CellRect, text string) {
	d.placed = append(d.placed, placedText{rect: r, snippet: snippet(text)})
}

// eligibleText decides whether a text node is considered for painting at
// all, independent of dedup. Content tags always qualify; anchors need
// enough text to not be decorative; generic containers need block display
// and substantial text so incidental inline wrappers stay quiet.
func eligibleText(n geom.Node, opts Options) bool {
	txt := strings.TrimSpace(n.Text)
	if txt == "" {
		return false
	}
	switch {
	case n.Tag.IsHeading():
		return true
	}
	switch n.Tag {
	case geom.TagParagraph, geom.TagListItem, geom.TagCaption, geom.TagTableCell:
		return true
	case geom.TagButton, geom.TagLabel:
		return true
	case geom.TagAnchor:
		return len([]rune(txt)) >= opts.MinAnchorText
	case geom.TagBlock, geom.TagInline, geom.TagSection, geom.TagArticle:
		if n.Display == geom.DisplayInline {
			return false
		}
		return len([]rune(txt)) >= opts.MinBlockText
	}
	return false
}

var iconExts = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg"}

var iconKeywords = []string{"icon", "bnr", "banner", "logo", "sns", "insta", "fb", "tiktok", "x_", "line"}

// IsIconLink reports whether href looks like a decorative icon/banner/logo
// link: an image-file path containing an icon-ish keyword, with no visible
// text beyond a single character.
func IsIconLink(href, text string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	p := strings.ToLower(u.Path)
	ext := false
	for _, e := range iconExts {
		if strings.HasSuffix(p, e) {
			ext = true
			break
		}
	}
	if !ext {
		return false
	}
	for _, k := range iconKeywords {
		if strings.Contains(p, k) {
			return text == "" || len([]rune(text)) <= 1
		}
	}
	return false
}
