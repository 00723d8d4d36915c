// Package asciiart converts raster image bytes into a fixed-ramp ASCII
// approximation, and rasterizes SVG sources to PNG so they can take the
// same path.
package asciiart

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"strings"

	// Raster formats beyond the stdlib trio.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Ramp is the luminance quantization ramp, darkest to lightest.
const Ramp = "@%#*+=-:. "

// MinWidth is the narrowest art the codec will emit.
const MinWidth = 20

// DefaultRowAspect matches the projection layer's default so embedded art
// keeps the same vertical squash as the surrounding layout.
const DefaultRowAspect = 0.52

// Codec encodes raster bytes as ASCII art.
type Codec struct {
	// RowAspect scales output height relative to width. Default 0.52.
	RowAspect float64
}

func (c Codec) rowAspect() float64 {
	if c.RowAspect <= 0 {
		return DefaultRowAspect
	}
	return c.RowAspect
}

// Encode decodes b, resamples it to width columns (floored at MinWidth)
// by the aspect-derived number of rows, and quantizes each pixel's
// luminance onto the ramp. The output has exactly h lines of exactly w
// characters, newline-joined, with a trailing newline.
//
// Failures are returned as errors; callers paint a placeholder line
// instead so an image can never abort a page render.
func (c Codec) Encode(b []byte, width int) (string, error) {
	src, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("asciiart: decode: %w", err)
	}
	bounds := src.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW <= 0 || srcH <= 0 {
		return "", fmt.Errorf("asciiart: empty image %dx%d", srcW, srcH)
	}

	w := max(MinWidth, width)
	h := max(1, int(math.Round(float64(srcH)*(float64(w)/float64(srcW))*c.rowAspect())))

	gray := image.NewGray(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(gray, gray.Bounds(), src, bounds, draw.Src, nil)

	var sb strings.Builder
	sb.Grow((w + 1) * h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			lum := int(gray.GrayAt(x, y).Y)
			sb.WriteByte(Ramp[lum*(len(Ramp)-1)/255])
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
