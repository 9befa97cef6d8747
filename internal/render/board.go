// Package render draws snake boards as images for clients that show a
// picture instead of a terminal grid.
package render

import (
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/vovakirdan/coin-snake/internal/games/snake"
)

// Board colors.
const (
	HeadColor = "#34C759"
	BodyColor = "#A4E8AF"
	FoodColor = "#FF3B30"
)

// Options control how a board is drawn.
type Options struct {
	TileSize   int    // Pixels per cell
	Background string // Hex color; empty leaves the canvas transparent
	Grid       bool   // Draw cell lines
}

// DefaultOptions returns the 20px tile look on a transparent canvas.
func DefaultOptions() Options {
	return Options{TileSize: 20}
}

// Board draws a snapshot. The canvas is BoardSize×TileSize pixels square.
// A finished game is drawn blurred under a "Game Over" caption.
func Board(s snake.Snapshot, opts Options) image.Image {
	tile := opts.TileSize
	if tile <= 0 {
		tile = DefaultOptions().TileSize
	}
	size := s.BoardSize * tile
	if size <= 0 {
		size = tile
	}

	dc := gg.NewContext(size, size)
	if opts.Background != "" {
		dc.SetHexColor(opts.Background)
		dc.Clear()
	}
	if opts.Grid {
		renderGrid(dc, size, tile)
	}

	for i, seg := range s.Snake {
		if i == 0 {
			dc.SetHexColor(HeadColor)
		} else {
			dc.SetHexColor(BodyColor)
		}
		fillCell(dc, seg, tile)
	}
	if s.Food.X >= 0 && s.Food.Y >= 0 {
		dc.SetHexColor(FoodColor)
		fillCell(dc, s.Food, tile)
	}

	if s.Status != snake.StatusOver.String() {
		return dc.Image()
	}

	blurred := imaging.Blur(dc.Image(), float64(tile)/4)
	over := gg.NewContextForImage(blurred)
	over.SetRGB(0, 0, 0)
	over.DrawStringAnchored("Game Over", float64(size)/2, float64(size)/2-8, 0.5, 0.5)
	over.DrawStringAnchored(fmt.Sprintf("Score: %d", s.Score), float64(size)/2, float64(size)/2+8, 0.5, 0.5)
	return over.Image()
}

func fillCell(dc *gg.Context, p snake.Point, tile int) {
	dc.DrawRectangle(float64(p.X*tile), float64(p.Y*tile), float64(tile), float64(tile))
	dc.Fill()
}

func renderGrid(dc *gg.Context, size, tile int) {
	dc.SetRGB(0.9, 0.9, 0.9)
	for x := 0; x <= size; x += tile {
		dc.DrawLine(float64(x), 0, float64(x), float64(size))
		dc.Stroke()
	}
	for y := 0; y <= size; y += tile {
		dc.DrawLine(0, float64(y), float64(size), float64(y))
		dc.Stroke()
	}
}

// Scale resizes a board to width pixels, keeping the pixel-art edges.
// A non-positive width returns img unchanged.
func Scale(img image.Image, width int) image.Image {
	if width <= 0 || width == img.Bounds().Dx() {
		return img
	}
	return imaging.Resize(img, width, 0, imaging.NearestNeighbor)
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return fmt.Errorf("render: cannot encode board: %w", err)
	}
	return nil
}
