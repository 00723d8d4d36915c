package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/hazyhaar/termweb/geom"
)

// Options are the knobs one page render runs with. The value is copied at
// the start of Render and held fixed for the render's duration, so a
// concurrent settings change on another connection can never produce
// visually inconsistent output. The thresholds are heuristics tuned
// against real-world markup; they are defaults, not invariants.
type Options struct {
	// TermWidth is the canvas width in columns.
	TermWidth int
	// RowAspect scales rows relative to columns. Default 0.52.
	RowAspect float64
	// ASCIIWidth caps inline ASCII-art width in columns. Default 68.
	ASCIIWidth int
	// AutoImages enables inline ASCII art for the first images on a page.
	AutoImages bool
	// AutoImageMax is the inline art budget per render. Default 3.
	AutoImageMax int
	// FilterIconLinks excludes decorative icon/banner links from the
	// link registry.
	FilterIconLinks bool
	// IoUThreshold is the rectangle-overlap bound above which a text node
	// with matching content is a duplicate. Default 0.65.
	IoUThreshold float64
	// MinAnchorText is the minimum anchor text length. Default 5.
	MinAnchorText int
	// MinBlockText is the minimum generic-container text length. Default 30.
	MinBlockText int
}

func (o *Options) defaults() {
	if o.TermWidth <= 0 {
		o.TermWidth = 110
	}
	if o.RowAspect <= 0 {
		o.RowAspect = 0.52
	}
	if o.ASCIIWidth <= 0 {
		o.ASCIIWidth = 68
	}
	if o.AutoImageMax <= 0 {
		o.AutoImageMax = 3
	}
	if o.IoUThreshold <= 0 {
		o.IoUThreshold = 0.65
	}
	if o.MinAnchorText <= 0 {
		o.MinAnchorText = 5
	}
	if o.MinBlockText <= 0 {
		o.MinBlockText = 30
	}
}

// ArtFunc turns an image source URL into an ASCII-art block (or a single
// placeholder line when fetching or decoding fails). It is the render
// loop's only I/O boundary; a nil ArtFunc disables inline art.
type ArtFunc func(ctx context.Context, src string) string

// Result is one page render's output: the flattened text plus the link
// and image registries the driving session keeps for numbered follow-up
// commands.
type Result struct {
	Text   string
	Links  *Registry
	Images *Registry
}

// Render paints a snapshot, in its given paint order, onto a fresh canvas
// and flattens it. All mutable state (canvas, registries, placed-text
// records, art budget) is local to the call; rendering the same snapshot
// with the same options yields byte-identical output.
func Render(ctx context.Context, snap *geom.Snapshot, opts Options, art ArtFunc) *Result {
	opts.defaults()

	proj := NewProjector(opts.TermWidth, viewportWidth(snap.Nodes), opts.RowAspect)
	canvas := NewCanvas(opts.TermWidth)
	links := NewRegistry()
	images := NewRegistry()
	dedup := deduper{threshold: opts.IoUThreshold}
	budget := opts.AutoImageMax

	for _, n := range snap.Nodes {
		r := proj.Project(n.Rect)

		if n.Tag == geom.TagImage && n.ImageSource != "" {
			paintImage(ctx, canvas, images, r, n.ImageSource, opts, art, &budget)
			continue
		}

		// CSS background-image on a text-bearing container: the image
		// paints first, then the node's text is still considered below.
		if n.ImageSource != "" {
			paintImage(ctx, canvas, images, r, n.ImageSource, opts, art, &budget)
		}

		if !eligibleText(n, opts) {
			continue
		}
		if dedup.isDuplicate(r, n.Text) {
			continue
		}

		txt := n.Text
		if n.Href != "" && !(opts.FilterIconLinks && IsIconLink(n.Href, txt)) {
			txt = fmt.Sprintf("%s [%d]", txt, links.Add(n.Href))
		}
		canvas.DrawTextBlock(r.Row, r.Col, r.Cols, txt, n.Bold || n.Tag.IsTopHeading())
		dedup.record(r, n.Text)
	}

	var tail []string
	tail = append(tail, "# "+snap.FinalURL)
	if links.Len() > 0 {
		tail = append(tail, "\n-- Links --")
		for i, href := range links.URLs() {
			tail = append(tail, fmt.Sprintf("[%d] <%s>", i+1, href))
		}
	}
	if images.Len() > 0 {
		tail = append(tail, "\n-- Images --")
		for i, src := range images.URLs() {
			tail = append(tail, fmt.Sprintf("[%d] <%s>", i+1, src))
		}
	}

	body := canvas.String() + "\n" + strings.Join(tail, "\n") + "\n"
	return &Result{
		Text:   CollapseBlank(body),
		Links:  links,
		Images: images,
	}
}

// paintImage registers the source, paints the [IMG n] placeholder at the
// node's top-left, and spends one unit of the art budget on an inline
// ASCII block one row below, clipped to the narrower of the projected
// width and the configured art width.
func paintImage(ctx context.Context, canvas *Canvas, images *Registry, r CellRect, src string, opts Options, art ArtFunc, budget *int) {
	idx := images.Add(src)
	canvas.DrawTextBlock(r.Row, r.Col, r.Cols, fmt.Sprintf("[IMG %d]", idx), false)
	if !opts.AutoImages || art == nil || *budget <= 0 {
		return
	}
	canvas.DrawArt(r.Row+1, r.Col, art(ctx, src), min(r.Cols, opts.ASCIIWidth))
	*budget--
}
