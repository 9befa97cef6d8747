package snake

import (
	"fmt"

	"github.com/vovakirdan/coin-snake/internal/core"
)

// Snapshot is a copy of the game state safe to hand to renderers and other
// goroutines while the game keeps ticking.
type Snapshot struct {
	Tick      uint64     `json:"tick"`
	Status    string     `json:"status"`
	Reason    OverReason `json:"reason,omitempty"`
	Score     int        `json:"score"`
	BoardSize int        `json:"board_size"`
	Snake     []Point    `json:"snake"` // Head first
	Food      Point      `json:"food"`
	Direction string     `json:"direction"`
}

// Head returns the head cell, or false for an empty snake.
func (s Snapshot) Head() (Point, bool) {
	if len(s.Snake) == 0 {
		return Point{}, false
	}
	return s.Snake[0], true
}

// Snapshot returns a copy of the current game state.
func (g *Game) Snapshot() Snapshot {
	body := make([]Point, len(g.snake))
	copy(body, g.snake)

	return Snapshot{
		Tick:      g.tick,
		Status:    g.status.String(),
		Reason:    g.reason,
		Score:     g.score,
		BoardSize: g.cfg.BoardSize,
		Snake:     body,
		Food:      g.food,
		Direction: g.direction.String(),
	}
}

// Render draws the board with a one-line HUD into dst. The head is 'O',
// the body 'o' and food '*'.
func (s Snapshot) Render(dst *core.Screen) {
	dst.Clear()
	dst.Text(0, 0, fmt.Sprintf(" SNAKE  Score: %d", s.Score), core.KindText)

	size := s.BoardSize
	if dst.Width() < size+2 || dst.Height() < size+3 {
		dst.TextCentered(dst.Height()/2, "Window too small", core.KindHint)
		return
	}

	frame := core.Rect{X: (dst.Width() - size - 2) / 2, Y: 1, W: size + 2, H: size + 2}
	dst.Frame(frame)
	board := frame.Inner()

	if s.Food.X >= 0 {
		dst.Put(board.X+s.Food.X, board.Y+s.Food.Y, '*', core.KindFood)
	}
	for i, seg := range s.Snake {
		if i == 0 {
			dst.Put(board.X+seg.X, board.Y+seg.Y, 'O', core.KindHead)
			continue
		}
		dst.Put(board.X+seg.X, board.Y+seg.Y, 'o', core.KindBody)
	}

	mid := board.Y + size/2
	switch s.Status {
	case StatusIdle.String():
		dst.TextCentered(mid, "Press R to start", core.KindHint)
	case StatusOver.String():
		dst.TextCentered(mid, "Game Over", core.KindText)
		dst.TextCentered(mid+1, "Press R to restart", core.KindHint)
	case StatusRunning.String():
		if s.Direction == DirNone.String() {
			dst.TextCentered(frame.Y+frame.H, "Use arrows to move", core.KindHint)
		}
	}
}
