package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hazyhaar/termweb/geom"
)

// maxScrollHeight caps how far down a page the capture walks; endless
// feeds would otherwise scroll forever.
const maxScrollHeight = 8000

// maxChunks caps the number of scroll steps per capture.
const maxChunks = 10

// collectJS gathers one viewport's worth of geometry nodes. Hidden
// elements and sub-2px rectangles are skipped; text is whitespace-collapsed
// and capped at 2000 characters.
const collectJS = `(sel, maxn) => {
	const out = [];
	const els = Array.from(document.querySelectorAll(sel)).slice(0, maxn);
	const Y = window.scrollY;
	for (const el of els) {
		const st = getComputedStyle(el);
		if (st.visibility === 'hidden' || st.display === 'none') continue;
		const r = el.getBoundingClientRect();
		const x = Math.max(0, Math.round(r.left));
		const y = Math.max(0, Math.round(r.top + Y));
		const w = Math.max(0, Math.round(r.width));
		const h = Math.max(0, Math.round(r.height));
		if (w < 2 || h < 2) continue;
		const tag = el.tagName.toLowerCase();
		let txt = '';
		if (tag !== 'img') {
			txt = (el.innerText || '').replace(/\s+/g, ' ').trim().slice(0, 2000);
		}
		const bg = st.backgroundImage && st.backgroundImage.startsWith('url(') ? st.backgroundImage : '';
		out.push({
			tag, x, y, w, h,
			z: parseInt(st.zIndex) || 0,
			txt,
			href: (el.closest('a') && el.closest('a').href) || '',
			src: (tag === 'img' && el.src) || '',
			bg,
			fw: st.fontWeight || '',
			disp: st.display || '',
		});
	}
	return JSON.stringify(out);
}`

const totalHeightJS = `() => Math.min(
	document.body.scrollHeight || document.documentElement.scrollHeight || 3000, 8000)`

// Snapshot navigates to pageURL and collects the post-render geometry of
// every whitelisted element, scrolling the page in viewport-height steps.
// The returned snapshot is sorted into paint order. Any failure is an
// error; the caller falls back to the non-projected text path.
func (c *Capturer) Snapshot(ctx context.Context, pageURL, userAgent string) (*geom.Snapshot, error) {
	page, err := c.newPage(userAgent)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	navCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("capture: navigate %s: %w", pageURL, err)
	}
	// Best effort: heavy pages may never settle, the DOM is still usable.
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		c.cfg.Logger.Warn("capture: wait load timeout", "url", pageURL, "error", err)
	}
	time.Sleep(300 * time.Millisecond)

	info, err := page.Info()
	if err != nil {
		return nil, fmt.Errorf("capture: page info: %w", err)
	}
	finalURL := info.URL

	res, err := page.Context(navCtx).Eval(totalHeightJS)
	if err != nil {
		return nil, fmt.Errorf("capture: measure height: %w", err)
	}
	totalH := res.Value.Int()
	if totalH > maxScrollHeight {
		totalH = maxScrollHeight
	}

	var wires []wireNode
	step := c.cfg.ViewportHeight - 100
	for y, chunks := 0, 0; y < totalH && chunks < maxChunks; y, chunks = y+step, chunks+1 {
		if _, err := page.Context(navCtx).Eval(`yy => window.scrollTo(0, yy)`, y); err != nil {
			return nil, fmt.Errorf("capture: scroll: %w", err)
		}
		time.Sleep(100 * time.Millisecond)

		res, err := page.Context(navCtx).Eval(collectJS, c.cfg.Selectors, c.cfg.MaxNodes/3)
		if err != nil {
			return nil, fmt.Errorf("capture: collect nodes: %w", err)
		}
		var chunk []wireNode
		if err := json.Unmarshal([]byte(res.Value.Str()), &chunk); err != nil {
			return nil, fmt.Errorf("capture: decode nodes: %w", err)
		}
		wires = append(wires, chunk...)
	}

	if len(wires) == 0 {
		return nil, fmt.Errorf("capture: no nodes for %s", pageURL)
	}

	snap := &geom.Snapshot{
		Nodes:    convertNodes(wires, finalURL),
		FinalURL: finalURL,
	}
	snap.SortPaintOrder()
	return snap, nil
}
