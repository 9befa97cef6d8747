package snake

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recordedOver struct {
	score  int
	reason OverReason
}

type hookRecorder struct {
	mu      sync.Mutex
	renders int
	overs   []recordedOver
	overCh  chan recordedOver
}

func newHookRecorder() *hookRecorder {
	return &hookRecorder{overCh: make(chan recordedOver, 4)}
}

func (r *hookRecorder) hooks() Hooks {
	return Hooks{
		OnRender: func(Snapshot) {
			r.mu.Lock()
			r.renders++
			r.mu.Unlock()
		},
		OnGameOver: func(score int, reason OverReason) {
			r.mu.Lock()
			r.overs = append(r.overs, recordedOver{score, reason})
			r.mu.Unlock()
			r.overCh <- recordedOver{score, reason}
		},
	}
}

func (r *hookRecorder) overCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.overs)
}

func TestDriverStepEndsGameOnce(t *testing.T) {
	rec := newHookRecorder()
	g := New(DefaultGameConfig())
	d := NewDriver(g, time.Hour, rec.hooks())

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer d.Stop()

	// Head about to leave the board on the left
	d.mu.Lock()
	g.snake = []Point{{X: 0, Y: 4}}
	g.direction = DirLeft
	g.score = 6
	d.mu.Unlock()

	if d.Step() {
		t.Fatal("Step should report the game as finished")
	}
	if d.Step() {
		t.Error("Steps after game over must not run")
	}

	if rec.overCount() != 1 {
		t.Fatalf("OnGameOver should fire exactly once, got %d", rec.overCount())
	}
	got := <-rec.overCh
	if got.score != 6 || got.reason != ReasonWall {
		t.Errorf("Unexpected game over %+v", got)
	}
	if d.Running() {
		t.Error("Driver should stop its tick stream on game over")
	}
}

func TestDriverRendersAfterMoves(t *testing.T) {
	rec := newHookRecorder()
	d := NewDriver(New(DefaultGameConfig()), time.Hour, rec.hooks())

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer d.Stop()

	// Idle ticks before the first turn do not render
	d.Step()
	d.SetDirection(DirUp)
	d.Step()
	d.Step()

	rec.mu.Lock()
	renders := rec.renders
	rec.mu.Unlock()

	// One render from Start plus one per move
	if renders != 3 {
		t.Errorf("Expected 3 renders, got %d", renders)
	}
	if head, _ := d.Snapshot().Head(); head != (Point{X: 10, Y: 8}) {
		t.Errorf("Head should be at (10,8), got %v", head)
	}
}

func TestDriverTimerRunsToGameOver(t *testing.T) {
	rec := newHookRecorder()
	d := NewDriver(New(DefaultGameConfig()), 2*time.Millisecond, rec.hooks())

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	d.SetDirection(DirRight)

	select {
	case over := <-rec.overCh:
		if over.reason != ReasonWall {
			t.Errorf("Expected wall collision, got %s", over.reason)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Game did not end")
	}

	if d.Snapshot().Status != StatusOver.String() {
		t.Errorf("Expected over status, got %s", d.Snapshot().Status)
	}
}

func TestDriverRestartReplacesStream(t *testing.T) {
	rec := newHookRecorder()
	g := New(DefaultGameConfig())
	d := NewDriver(g, time.Millisecond, rec.hooks())

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	firstGen := d.gen

	if err := d.Start(ctx); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	defer d.Stop()

	if d.gen == firstGen {
		t.Error("Restart must invalidate the previous tick stream")
	}

	// A tick from the old stream is ignored
	if d.step(firstGen) {
		t.Error("Stale stream tick should be a no-op")
	}
	if !d.Running() {
		t.Error("New stream should be running")
	}
}

func TestDriverStopKeepsState(t *testing.T) {
	d := NewDriver(New(DefaultGameConfig()), time.Hour, Hooks{})

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	d.Stop()

	if d.Running() {
		t.Error("Stop should cancel the tick stream")
	}
	if d.Snapshot().Status != StatusRunning.String() {
		t.Error("Stop should not change the game state")
	}
}
