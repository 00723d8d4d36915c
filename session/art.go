package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/hazyhaar/termweb/asciiart"
)

// renderArt fetches src and converts it to ASCII art. Failures never
// propagate; the result is a single placeholder line so the page render
// keeps its shape.
func (s *Session) renderArt(ctx context.Context, src string) string {
	if s.cfg.Fetcher == nil {
		return "(image fetch error: no fetcher)\n"
	}
	res, err := s.cfg.Fetcher.FetchImage(ctx, src, s.currentURL)
	if err != nil {
		return fmt.Sprintf("(image fetch error: %v)\n", err)
	}

	body := res.Body
	if isSVG(res.ContentType, src) {
		body, err = asciiart.Rasterize(body)
		if err != nil {
			return fmt.Sprintf("(SVG image skipped: %v)\n", err)
		}
	}

	codec := asciiart.Codec{RowAspect: s.settings.RowAspect}
	art, err := codec.Encode(body, s.settings.ASCIIWidth)
	if err != nil {
		return fmt.Sprintf("(ASCII conversion error: %v)\n", err)
	}
	return art
}

func isSVG(contentType, src string) bool {
	if strings.Contains(contentType, "svg") {
		return true
	}
	path := src
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	return strings.HasSuffix(strings.ToLower(path), ".svg")
}
