package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// cellAspect is the width/height ratio of a terminal cell. Circles are
// squashed vertically by this factor so they look round.
const cellAspect = 0.5

// canvas is a character raster with a foreground and optional background
// color per cell.
type canvas struct {
	w, h  int
	cells [][]rune
	fg    [][]lipgloss.Color
	bg    [][]lipgloss.Color
}

func newCanvas(w, h int) *canvas {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c := &canvas{w: w, h: h}
	c.cells = make([][]rune, h)
	c.fg = make([][]lipgloss.Color, h)
	c.bg = make([][]lipgloss.Color, h)
	for y := 0; y < h; y++ {
		c.cells[y] = make([]rune, w)
		c.fg[y] = make([]lipgloss.Color, w)
		c.bg[y] = make([]lipgloss.Color, w)
		for x := 0; x < w; x++ {
			c.cells[y][x] = ' '
		}
	}
	return c
}

func (c *canvas) inBounds(x, y int) bool {
	return x >= 0 && x < c.w && y >= 0 && y < c.h
}

// set writes a glyph, returning false when (x, y) is off the canvas.
func (c *canvas) set(x, y int, r rune, fg lipgloss.Color) bool {
	if !c.inBounds(x, y) {
		return false
	}
	c.cells[y][x] = r
	c.fg[y][x] = fg
	return true
}

func (c *canvas) setBg(x, y int, bg lipgloss.Color) {
	if c.inBounds(x, y) {
		c.bg[y][x] = bg
	}
}

// fill paints every cell's background.
func (c *canvas) fill(bg lipgloss.Color) {
	for y := 0; y < c.h; y++ {
		for x := 0; x < c.w; x++ {
			c.bg[y][x] = bg
		}
	}
}

func (c *canvas) at(x, y int) rune {
	if !c.inBounds(x, y) {
		return 0
	}
	return c.cells[y][x]
}

// text writes s starting at (x, y), clipping at the edges.
func (c *canvas) text(x, y int, s string, fg lipgloss.Color) {
	for i, r := range []rune(s) {
		c.set(x+i, y, r, fg)
	}
}

// centeredText writes s centred on column x.
func (c *canvas) centeredText(x, y int, s string, fg lipgloss.Color) {
	c.text(x-len([]rune(s))/2, y, s, fg)
}

// circle draws an aspect-corrected ring of radius r columns, touching only
// blank cells.
func (c *canvas) circle(cx, cy int, r float64, glyph rune, fg lipgloss.Color) {
	if r < 1 {
		return
	}
	steps := int(2 * math.Pi * r * 2)
	if steps < 16 {
		steps = 16
	}
	for i := 0; i < steps; i++ {
		theta := 2 * math.Pi * float64(i) / float64(steps)
		x := cx + int(math.Round(r*math.Cos(theta)))
		y := cy - int(math.Round(r*math.Sin(theta)*cellAspect))
		if c.at(x, y) == ' ' {
			c.set(x, y, glyph, fg)
		}
	}
}

// line draws a straight segment between two cells.
func (c *canvas) line(x0, y0, x1, y1 int, glyph rune, fg lipgloss.Color) {
	dx, dy := x1-x0, y1-y0
	steps := max(abs(dx), abs(dy))
	if steps == 0 {
		c.set(x0, y0, glyph, fg)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		c.set(x0+int(math.Round(float64(dx)*t)), y0+int(math.Round(float64(dy)*t)), glyph, fg)
	}
}

// plain returns the raster without styling.
func (c *canvas) plain() string {
	lines := make([]string, c.h)
	for y := range c.cells {
		lines[y] = string(c.cells[y])
	}
	return strings.Join(lines, "\n")
}

// String renders the raster, styling runs of equal colors together.
func (c *canvas) String() string {
	var b strings.Builder
	for y := 0; y < c.h; y++ {
		x := 0
		for x < c.w {
			fg, bg := c.fg[y][x], c.bg[y][x]
			end := x + 1
			for end < c.w && c.fg[y][end] == fg && c.bg[y][end] == bg {
				end++
			}
			style := lipgloss.NewStyle()
			if fg != "" {
				style = style.Foreground(fg)
			}
			if bg != "" {
				style = style.Background(bg)
			}
			b.WriteString(style.Render(string(c.cells[y][x:end])))
			x = end
		}
		if y < c.h-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
