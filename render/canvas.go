package render

import "strings"

// Canvas is a fixed-width, growable-height character grid. Rows are
// appended lazily as paint operations address them; the grid never
// shrinks during a render. Cell writes are last-write-wins, which is how
// paint order resolves visual stacking without any blending.
type Canvas struct {
	width int
	rows  [][]rune
}

// NewCanvas creates an empty canvas of the given column width.
func NewCanvas(width int) *Canvas {
	return &Canvas{width: width}
}

func (c *Canvas) ensureRows(n int) {
	for len(c.rows) < n {
		row := make([]rune, c.width)
		for i := range row {
			row[i] = ' '
		}
		c.rows = append(c.rows, row)
	}
}

func (c *Canvas) putLine(row, col int, s string) {
	if row < 0 {
		return
	}
	c.ensureRows(row + 1)
	for i, ch := range []rune(s) {
		x := col + i
		if x >= 0 && x < c.width {
			c.rows[row][x] = ch
		}
	}
}

// DrawTextBlock wraps text to the given column width (without breaking
// long words) and paints it starting at (row, col), one wrapped line per
// canvas row, each truncated to the block width. Bold blocks get literal
// ** markers around each line, keeping the output plain-text-safe.
// Blocks narrower than 6 columns and empty text are skipped.
func (c *Canvas) DrawTextBlock(row, col, width int, text string, bold bool) {
	if width <= 5 || text == "" {
		return
	}
	var wrapped []string
	for _, para := range strings.Split(text, "\n") {
		para = strings.TrimRight(para, " \t")
		if para == "" {
			wrapped = append(wrapped, "")
			continue
		}
		wrapped = append(wrapped, wrapLine(para, width)...)
	}
	r := row
	for _, line := range wrapped {
		s := line
		if bold {
			s = "**" + s + "**"
		}
		if rs := []rune(s); len(rs) > width {
			s = string(rs[:width])
		}
		c.putLine(r, col, s)
		r++
	}
}

// DrawArt paints a pre-rendered ASCII-art block starting at (row, col),
// each art line clipped to maxWidth columns.
func (c *Canvas) DrawArt(row, col int, art string, maxWidth int) {
	if art == "" {
		return
	}
	for i, line := range strings.Split(strings.TrimRight(art, "\n"), "\n") {
		if rs := []rune(line); len(rs) > maxWidth {
			line = string(rs[:maxWidth])
		}
		c.putLine(row+i, col, line)
	}
}

// String flattens the canvas: rows joined with newlines, trailing spaces
// trimmed per row.
func (c *Canvas) String() string {
	var sb strings.Builder
	for i, row := range c.rows {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(strings.TrimRight(string(row), " "))
	}
	return sb.String()
}

// wrapLine greedily wraps a single paragraph at word boundaries. Words
// longer than the width get their own line rather than being broken; the
// caller truncates at paint time.
func wrapLine(para string, width int) []string {
	words := strings.Fields(para)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	cur := words[0]
	curLen := len([]rune(words[0]))
	for _, w := range words[1:] {
		wl := len([]rune(w))
		if curLen+1+wl <= width {
			cur += " " + w
			curLen += 1 + wl
			continue
		}
		lines = append(lines, cur)
		cur = w
		curLen = wl
	}
	return append(lines, cur)
}

// CollapseBlank collapses runs of consecutive blank lines down to a
// single blank line across the whole text.
func CollapseBlank(s string) string {
	var out []string
	prevBlank := false
	for _, line := range strings.Split(s, "\n") {
		blank := strings.TrimSpace(line) == ""
		if blank && prevBlank {
			continue
		}
		out = append(out, line)
		prevBlank = blank
	}
	return strings.Join(out, "\n")
}
