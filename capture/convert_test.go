package capture

import (
	"testing"

	"github.com/hazyhaar/termweb/geom"
)

func TestConvertNodes_ImageSource(t *testing.T) {
	// WHAT: img src resolves for image tags; CSS backgrounds resolve for
	// everything else; plain text nodes carry no source.
	wires := []wireNode{
		{Tag: "img", Src: "/pics/cat.png", W: 10, H: 10},
		{Tag: "div", Bg: `url("https://cdn.example/bg.jpg")`, W: 10, H: 10},
		{Tag: "p", Txt: "hello", W: 10, H: 10},
	}
	nodes := convertNodes(wires, "https://example.com/articles/")

	if nodes[0].ImageSource != "https://example.com/pics/cat.png" {
		t.Errorf("img src = %q", nodes[0].ImageSource)
	}
	if nodes[1].ImageSource != "https://cdn.example/bg.jpg" {
		t.Errorf("bg src = %q", nodes[1].ImageSource)
	}
	if nodes[2].ImageSource != "" {
		t.Errorf("text node src = %q, want empty", nodes[2].ImageSource)
	}
}

func TestConvertNodes_DropsFragments(t *testing.T) {
	// WHAT: Image source fragments are stripped so registry dedup works.
	wires := []wireNode{{Tag: "img", Src: "https://example.com/a.png#frag", W: 5, H: 5}}
	nodes := convertNodes(wires, "https://example.com/")
	if nodes[0].ImageSource != "https://example.com/a.png" {
		t.Errorf("src = %q", nodes[0].ImageSource)
	}
}

func TestConvertNodes_TagAndDisplay(t *testing.T) {
	wires := []wireNode{
		{Tag: "h1", Txt: "Title", Fw: "400"},
		{Tag: "blink", Txt: "retro", Disp: "inline"},
	}
	nodes := convertNodes(wires, "https://example.com/")
	if nodes[0].Tag != geom.TagH1 {
		t.Errorf("tag = %v, want TagH1", nodes[0].Tag)
	}
	if nodes[1].Tag != geom.TagBlock {
		t.Errorf("unknown tag = %v, want TagBlock", nodes[1].Tag)
	}
	if nodes[1].Display != geom.DisplayInline {
		t.Errorf("display = %v, want inline", nodes[1].Display)
	}
}

func TestBoldWeight(t *testing.T) {
	// WHAT: Numeric 700+ and the literal "bold" count as bold.
	for _, fw := range []string{"700", "800", "900", "bold"} {
		if !boldWeight(fw) {
			t.Errorf("boldWeight(%q) = false", fw)
		}
	}
	for _, fw := range []string{"400", "600", "normal", ""} {
		if boldWeight(fw) {
			t.Errorf("boldWeight(%q) = true", fw)
		}
	}
}

func TestBackgroundURL(t *testing.T) {
	cases := []struct{ in, want string }{
		{`url("https://x.example/a.png")`, "https://x.example/a.png"},
		{`url('https://x.example/a.png')`, "https://x.example/a.png"},
		{`url(https://x.example/a.png)`, "https://x.example/a.png"},
		{`linear-gradient(red, blue)`, ""},
		{``, ""},
	}
	for _, c := range cases {
		if got := backgroundURL(c.in); got != c.want {
			t.Errorf("backgroundURL(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
