package capture

import (
	"net/url"
	"strings"

	"github.com/hazyhaar/termweb/geom"
)

// wireNode is the JSON shape the collection script emits per element.
type wireNode struct {
	Tag  string `json:"tag"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	W    int    `json:"w"`
	H    int    `json:"h"`
	Z    int    `json:"z"`
	Txt  string `json:"txt"`
	Href string `json:"href"`
	Src  string `json:"src"`
	Bg   string `json:"bg"`
	Fw   string `json:"fw"`
	Disp string `json:"disp"`
}

// convertNodes validates wire nodes into the closed geometry model,
// resolving image sources against the final URL.
func convertNodes(wires []wireNode, baseURL string) []geom.Node {
	base, _ := url.Parse(baseURL)

	nodes := make([]geom.Node, 0, len(wires))
	for _, w := range wires {
		tag := geom.ParseTag(w.Tag)

		src := ""
		if tag == geom.TagImage && w.Src != "" {
			src = resolveURL(base, w.Src)
		} else if bg := backgroundURL(w.Bg); bg != "" {
			src = resolveURL(base, bg)
		}

		nodes = append(nodes, geom.Node{
			Tag:         tag,
			Rect:        geom.Rect{X: w.X, Y: w.Y, W: w.W, H: w.H},
			Z:           w.Z,
			Text:        w.Txt,
			Href:        w.Href,
			ImageSource: src,
			Bold:        boldWeight(w.Fw),
			Display:     geom.ParseDisplay(w.Disp),
		})
	}
	return nodes
}

// backgroundURL extracts the target of a computed `url(...)` background.
func backgroundURL(bg string) string {
	if !strings.HasPrefix(bg, "url(") {
		return ""
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(bg, "url("), ")")
	inner = strings.TrimSpace(inner)
	inner = strings.Trim(inner, `"'`)
	return inner
}

// resolveURL absolutizes ref against base and drops any fragment.
func resolveURL(base *url.URL, ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	u.Fragment = ""
	return u.String()
}

func boldWeight(fw string) bool {
	switch fw {
	case "700", "800", "900", "bold":
		return true
	}
	return false
}
