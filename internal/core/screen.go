package core

import (
	"strings"
	"unicode/utf8"
)

// Kind says what a cell shows, so a front end can style the snake, the
// food and the frame without guessing from runes.
type Kind uint8

const (
	KindBlank Kind = iota
	KindText
	KindHint
	KindBorder
	KindHead
	KindBody
	KindFood
)

// Cell is one character of the screen.
type Cell struct {
	Rune rune
	Kind Kind
}

var blankCell = Cell{Rune: ' ', Kind: KindBlank}

// Run is a horizontal stretch of cells of the same kind.
type Run struct {
	Kind Kind
	Text string
}

// Screen is a fixed-size grid of cells the snake board is drawn into.
// The whole grid is redrawn every frame.
type Screen struct {
	width  int
	height int
	cells  []Cell // Row-major
}

// NewScreen creates a blank screen.
func NewScreen(width, height int) *Screen {
	s := &Screen{}
	s.Resize(width, height)
	return s
}

// Width returns the screen width in cells.
func (s *Screen) Width() int {
	return s.width
}

// Height returns the screen height in cells.
func (s *Screen) Height() int {
	return s.height
}

// Bounds returns the whole screen as a Rect.
func (s *Screen) Bounds() Rect {
	return Rect{W: s.width, H: s.height}
}

// Resize changes the dimensions and blanks the screen.
func (s *Screen) Resize(width, height int) {
	s.width = max(width, 0)
	s.height = max(height, 0)
	s.cells = make([]Cell, s.width*s.height)
	s.Clear()
}

// Clear blanks every cell.
func (s *Screen) Clear() {
	for i := range s.cells {
		s.cells[i] = blankCell
	}
}

// Put places r at (x, y). Out-of-bounds coordinates are ignored.
func (s *Screen) Put(x, y int, r rune, kind Kind) {
	if !s.Bounds().Contains(x, y) {
		return
	}
	s.cells[y*s.width+x] = Cell{Rune: r, Kind: kind}
}

// At returns the cell at (x, y), blank outside the screen.
func (s *Screen) At(x, y int) Cell {
	if !s.Bounds().Contains(x, y) {
		return blankCell
	}
	return s.cells[y*s.width+x]
}

// Text writes text from (x, y), clipped at the edges.
func (s *Screen) Text(x, y int, text string, kind Kind) {
	i := 0
	for _, r := range text {
		s.Put(x+i, y, r, kind)
		i++
	}
}

// TextCentered writes text centered on row y.
func (s *Screen) TextCentered(y int, text string, kind Kind) {
	s.Text((s.width-utf8.RuneCountInString(text))/2, y, text, kind)
}

// Frame draws a box outline on the edge of r.
func (s *Screen) Frame(r Rect) {
	if r.W < 2 || r.H < 2 {
		return
	}
	right, bottom := r.X+r.W-1, r.Y+r.H-1

	s.Put(r.X, r.Y, '┌', KindBorder)
	s.Put(right, r.Y, '┐', KindBorder)
	s.Put(r.X, bottom, '└', KindBorder)
	s.Put(right, bottom, '┘', KindBorder)
	for x := r.X + 1; x < right; x++ {
		s.Put(x, r.Y, '─', KindBorder)
		s.Put(x, bottom, '─', KindBorder)
	}
	for y := r.Y + 1; y < bottom; y++ {
		s.Put(r.X, y, '│', KindBorder)
		s.Put(right, y, '│', KindBorder)
	}
}

// Runs splits row y into stretches of equal kind, left to right.
func (s *Screen) Runs(y int) []Run {
	if y < 0 || y >= s.height {
		return nil
	}
	row := s.cells[y*s.width : (y+1)*s.width]

	var runs []Run
	var sb strings.Builder
	for i, c := range row {
		if i > 0 && c.Kind != row[i-1].Kind {
			runs = append(runs, Run{Kind: row[i-1].Kind, Text: sb.String()})
			sb.Reset()
		}
		sb.WriteRune(c.Rune)
	}
	if len(row) > 0 {
		runs = append(runs, Run{Kind: row[len(row)-1].Kind, Text: sb.String()})
	}
	return runs
}

// String returns the runes of the screen, rows joined with newlines.
func (s *Screen) String() string {
	var sb strings.Builder
	sb.Grow(s.width*s.height + s.height)
	for y := 0; y < s.height; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for _, c := range s.cells[y*s.width : (y+1)*s.width] {
			sb.WriteRune(c.Rune)
		}
	}
	return sb.String()
}
