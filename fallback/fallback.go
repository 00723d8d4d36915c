// Package fallback renders a page without a browser: sanitized HTML is
// converted to markdown-flavoured text and links/images are harvested
// from the raw document. It covers static pages when Chrome is down and
// doubles as the degraded path when a capture fails.
package fallback

import (
	"fmt"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/hazyhaar/termweb/render"
)

// Page is a non-projected rendering of a document.
type Page struct {
	// Text is the markdown-flavoured body, without link/image listings.
	Text string
	// Links and Images are in document order, absolutized, deduplicated.
	Links  []string
	Images []string
}

// Render converts raw HTML into text plus harvested link and image URLs.
// filterIcons applies the same icon-link heuristic as the projected path.
func Render(body []byte, baseURL string, filterIcons bool) (*Page, error) {
	sanitized := bluemonday.UGCPolicy().SanitizeBytes(body)

	text, err := htmltomarkdown.ConvertString(string(sanitized))
	if err != nil {
		return nil, fmt.Errorf("fallback: convert html: %w", err)
	}

	links, images := harvest(body, baseURL, filterIcons)
	return &Page{
		Text:   render.CollapseBlank(strings.TrimSpace(text)),
		Links:  links,
		Images: images,
	}, nil
}

// harvest walks the unsanitized document for anchors and images so that
// URLs stripped by the sanitizer still make the registries.
func harvest(body []byte, baseURL string, filterIcons bool) (links, images []string) {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, nil
	}
	base, _ := url.Parse(baseURL)

	seenLink := make(map[string]bool)
	seenImage := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a":
				if href := attr(n, "href"); href != "" {
					u := absolutize(base, href)
					if u != "" && !seenLink[u] {
						if !(filterIcons && render.IsIconLink(u, nodeText(n))) {
							seenLink[u] = true
							links = append(links, u)
						}
					}
				}
			case "img":
				if src := attr(n, "src"); src != "" {
					u := absolutize(base, src)
					if u != "" && !seenImage[u] {
						seenImage[u] = true
						images = append(images, u)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, images
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
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
	return strings.TrimSpace(b.String())
}

// absolutize resolves ref against base, drops fragments, and rejects
// non-web schemes like javascript: and mailto:.
func absolutize(base *url.URL, ref string) string {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	u.Fragment = ""
	return u.String()
}
