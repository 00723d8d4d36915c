package asciiart

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

// pngBytes encodes a grayscale image of the given size and fill.
func pngBytes(t *testing.T, w, h int, fill uint8) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: fill})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return buf.Bytes()
}

func TestEncode_Dimensions(t *testing.T) {
	// WHAT: Output is exactly h lines of exactly w characters.
	c := Codec{RowAspect: 0.52}
	art, err := c.Encode(pngBytes(t, 100, 50, 128), 40)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasSuffix(art, "\n") {
		t.Error("art should end with a trailing newline")
	}
	lines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	// h = round(50 * (40/100) * 0.52) = round(10.4) = 10
	if len(lines) != 10 {
		t.Fatalf("lines = %d, want 10", len(lines))
	}
	for i, l := range lines {
		if len(l) != 40 {
			t.Errorf("line %d length = %d, want 40", i, len(l))
		}
	}
}

func TestEncode_MinWidth(t *testing.T) {
	// WHAT: Requested widths below 20 are floored at 20.
	c := Codec{}
	art, err := c.Encode(pngBytes(t, 10, 10, 0), 5)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	line := strings.Split(art, "\n")[0]
	if len(line) != MinWidth {
		t.Errorf("line width = %d, want %d", len(line), MinWidth)
	}
}

func TestEncode_MinHeight(t *testing.T) {
	// WHAT: Very flat images still emit at least one line.
	c := Codec{}
	art, err := c.Encode(pngBytes(t, 1000, 1, 128), 20)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	lines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	if len(lines) != 1 {
		t.Errorf("lines = %d, want 1", len(lines))
	}
}

func TestEncode_RampEndpoints(t *testing.T) {
	// WHAT: Black maps to the darkest ramp char, white to the lightest.
	c := Codec{}
	dark, err := c.Encode(pngBytes(t, 30, 30, 0), 20)
	if err != nil {
		t.Fatalf("encode dark: %v", err)
	}
	if dark[0] != Ramp[0] {
		t.Errorf("black pixel mapped to %q, want %q", dark[0], Ramp[0])
	}

	light, err := c.Encode(pngBytes(t, 30, 30, 255), 20)
	if err != nil {
		t.Fatalf("encode light: %v", err)
	}
	if light[0] != Ramp[len(Ramp)-1] {
		t.Errorf("white pixel mapped to %q, want %q", light[0], Ramp[len(Ramp)-1])
	}
}

func TestEncode_DecodeFailure(t *testing.T) {
	// WHAT: Garbage bytes produce an error, never a panic.
	// WHY: The caller turns this into a placeholder line; the render
	// itself must survive.
	c := Codec{}
	if _, err := c.Encode([]byte("not an image"), 40); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := c.Encode(nil, 40); err == nil {
		t.Fatal("expected decode error for empty input")
	}
}

func TestRasterize_SVG(t *testing.T) {
	// WHAT: A minimal SVG becomes decodable PNG bytes sized by its viewBox.
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 40 20">` +
		`<rect x="0" y="0" width="40" height="20" fill="#000"/></svg>`)
	pngData, err := Rasterize(svg)
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		t.Fatalf("decode rasterized png: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 40 || b.Dy() != 20 {
		t.Errorf("raster size = %dx%d, want 40x20", b.Dx(), b.Dy())
	}
}

func TestRasterize_Invalid(t *testing.T) {
	// WHAT: Non-SVG bytes error out cleanly.
	if _, err := Rasterize([]byte("not xml <<<")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestRasterize_RoundTripThroughCodec(t *testing.T) {
	// WHAT: Rasterized SVG bytes feed straight into Encode.
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">` +
		`<circle cx="50" cy="50" r="40" fill="#000"/></svg>`)
	pngData, err := Rasterize(svg)
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	art, err := Codec{}.Encode(pngData, 30)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(art, string(Ramp[0])) {
		t.Error("black circle should produce dark ramp characters")
	}
}
