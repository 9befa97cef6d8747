// Package snake implements the classic single-player Snake game as a pure
// state machine. It has no timers and no I/O: a Driver advances it on a fixed
// period and front ends read Snapshots to draw it.
package snake

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/vovakirdan/coin-snake/internal/core"
)

// ErrBoardFull is returned when no free cell is left to place food on.
var ErrBoardFull = errors.New("snake: board is full")

// Status is the lifecycle state of a game.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusOver
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusOver:
		return "over"
	default:
		return "unknown"
	}
}

// OverReason explains why a game ended. Hitting a wall or the snake's own
// body is the designed end of a game, not an error.
type OverReason string

const (
	ReasonNone      OverReason = ""
	ReasonWall      OverReason = "wall"
	ReasonSelf      OverReason = "self"
	ReasonBoardFull OverReason = "board_full"
)

// Point is a cell on the board.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p moved by d.
func (p Point) Add(d Direction) Point {
	return Point{X: p.X + d.DX, Y: p.Y + d.DY}
}

// Direction is a unit step on one axis, or the zero vector before the
// first turn.
type Direction struct {
	DX, DY int
}

var (
	DirNone  = Direction{0, 0}
	DirUp    = Direction{0, -1}
	DirDown  = Direction{0, 1}
	DirLeft  = Direction{-1, 0}
	DirRight = Direction{1, 0}
)

// IsZero reports whether d is the zero vector.
func (d Direction) IsZero() bool {
	return d.DX == 0 && d.DY == 0
}

func (d Direction) String() string {
	switch d {
	case DirNone:
		return "none"
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return fmt.Sprintf("(%d,%d)", d.DX, d.DY)
	}
}

// DirectionFor maps a directional action to its vector.
func DirectionFor(a core.Action) (Direction, bool) {
	switch a {
	case core.ActionUp:
		return DirUp, true
	case core.ActionDown:
		return DirDown, true
	case core.ActionLeft:
		return DirLeft, true
	case core.ActionRight:
		return DirRight, true
	}
	return DirNone, false
}

// Config holds the fixed parameters of a game.
type Config struct {
	BoardSize    int   // Cells per side
	Start        Point // Cell of the single initial segment
	Seed         int64 // RNG seed for food placement
	FoodAttempts int   // Random samples before scanning for a free cell
}

// DefaultGameConfig returns the parameters of the 400px / 20px board.
func DefaultGameConfig() Config {
	return Config{
		BoardSize:    20,
		Start:        Point{X: 10, Y: 10},
		Seed:         1,
		FoodAttempts: 64,
	}
}

// TickResult describes what a single tick did.
type TickResult struct {
	Moved  bool       // Snake advanced one cell
	Ate    bool       // Food was eaten this tick
	Over   bool       // This tick ended the game
	Reason OverReason // Why the game ended, when Over
	Score  int        // Score after the tick
}

// Game holds the complete state of one Snake game.
type Game struct {
	cfg Config
	rng *rand.Rand

	status    Status
	reason    OverReason
	snake     []Point // Head at index 0
	direction Direction
	food      Point
	score     int
	tick      uint64
}

// New creates an idle game. Call Start to begin playing.
func New(cfg Config) *Game {
	if cfg.BoardSize <= 0 {
		cfg.BoardSize = DefaultGameConfig().BoardSize
	}
	if cfg.FoodAttempts <= 0 {
		cfg.FoodAttempts = DefaultGameConfig().FoodAttempts
	}
	cfg.Start.X = core.Clamp(cfg.Start.X, 0, cfg.BoardSize-1)
	cfg.Start.Y = core.Clamp(cfg.Start.Y, 0, cfg.BoardSize-1)

	return &Game{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		status: StatusIdle,
		food:   Point{X: -1, Y: -1},
	}
}

// Start resets the snake to a single segment at the start cell and begins
// a new game. It can be called in any state.
func (g *Game) Start() error {
	g.snake = []Point{g.cfg.Start}
	g.direction = DirNone
	g.score = 0
	g.tick = 0
	g.reason = ReasonNone
	g.status = StatusRunning

	if err := g.spawnFood(); err != nil {
		g.status = StatusOver
		g.reason = ReasonBoardFull
		return err
	}
	return nil
}

// SetDirection turns the snake. The turn is applied only while running and
// only onto the other axis, so the snake can never reverse into itself.
func (g *Game) SetDirection(d Direction) bool {
	if g.status != StatusRunning || d.IsZero() {
		return false
	}
	// A zero component on the current axis means that axis is free to take.
	if d.DX != 0 && g.direction.DX != 0 {
		return false
	}
	if d.DY != 0 && g.direction.DY != 0 {
		return false
	}
	g.direction = d
	return true
}

// Tick advances the game by one step.
func (g *Game) Tick() TickResult {
	if g.status != StatusRunning {
		return TickResult{Score: g.score}
	}
	g.tick++

	// Not moving yet: the head would land on itself.
	if g.direction.IsZero() {
		return TickResult{Score: g.score}
	}

	head := g.snake[0].Add(g.direction)

	if !g.inBounds(head) {
		return g.finish(ReasonWall)
	}
	if g.isSnakeAt(head) {
		return g.finish(ReasonSelf)
	}

	g.snake = append([]Point{head}, g.snake...)

	if head == g.food {
		g.score++
		if err := g.spawnFood(); err != nil {
			res := g.finish(ReasonBoardFull)
			res.Moved = true
			res.Ate = true
			return res
		}
		return TickResult{Moved: true, Ate: true, Score: g.score}
	}

	g.snake = g.snake[:len(g.snake)-1]
	return TickResult{Moved: true, Score: g.score}
}

// finish moves the game to the Over state.
func (g *Game) finish(reason OverReason) TickResult {
	g.status = StatusOver
	g.reason = reason
	return TickResult{Over: true, Reason: reason, Score: g.score}
}

// inBounds reports whether p lies on the board.
func (g *Game) inBounds(p Point) bool {
	return p.X >= 0 && p.X < g.cfg.BoardSize && p.Y >= 0 && p.Y < g.cfg.BoardSize
}

// isSnakeAt checks if the snake occupies the given point.
func (g *Game) isSnakeAt(p Point) bool {
	for _, seg := range g.snake {
		if seg == p {
			return true
		}
	}
	return false
}

// spawnFood places food on a cell not covered by the snake. Random samples
// are tried first; when they all collide the free cells are enumerated so
// placement always terminates.
func (g *Game) spawnFood() error {
	size := g.cfg.BoardSize
	for range g.cfg.FoodAttempts {
		p := Point{X: g.rng.Intn(size), Y: g.rng.Intn(size)}
		if !g.isSnakeAt(p) {
			g.food = p
			return nil
		}
	}

	var emptyCells []Point
	for y := range size {
		for x := range size {
			p := Point{X: x, Y: y}
			if !g.isSnakeAt(p) {
				emptyCells = append(emptyCells, p)
			}
		}
	}
	if len(emptyCells) == 0 {
		g.food = Point{X: -1, Y: -1}
		return ErrBoardFull
	}
	g.food = emptyCells[g.rng.Intn(len(emptyCells))]
	return nil
}

// Status returns the lifecycle state.
func (g *Game) Status() Status {
	return g.status
}

// Score returns the food eaten in the current game.
func (g *Game) Score() int {
	return g.score
}

// BoardSize returns the number of cells per side.
func (g *Game) BoardSize() int {
	return g.cfg.BoardSize
}

// Render draws the board with a one-line HUD into dst.
func (g *Game) Render(dst *core.Screen) {
	g.Snapshot().Render(dst)
}
