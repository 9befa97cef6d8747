package app

import (
	"sync"

	"github.com/vovakirdan/coin-snake/internal/games/snake"
)

// Event is something a front end should reflect on screen.
type Event interface {
	isEvent()
}

// RenderEvent carries the board after a move.
type RenderEvent struct {
	Snapshot snake.Snapshot
}

// BalanceEvent carries a new coin balance.
type BalanceEvent struct {
	Balance int64
}

// PageEvent reports a page switch.
type PageEvent struct {
	Page Page
}

// GameOverEvent reports a finished game and the coins it earned.
type GameOverEvent struct {
	Score    int
	Reason   snake.OverReason
	Credited int64
}

// FormResetEvent asks the front end to clear the withdrawal form.
type FormResetEvent struct{}

func (RenderEvent) isEvent()    {}
func (BalanceEvent) isEvent()   {}
func (PageEvent) isEvent()      {}
func (GameOverEvent) isEvent()  {}
func (FormResetEvent) isEvent() {}

// eventQueue is a buffered event channel that never blocks the sender.
type eventQueue struct {
	events   chan Event
	done     chan struct{}
	doneOnce sync.Once
}

func newEventQueue(size int) *eventQueue {
	if size < 1 {
		size = 64 // Default buffer size
	}
	return &eventQueue{
		events: make(chan Event, size),
		done:   make(chan struct{}),
	}
}

// send queues evt. If the buffer is full, the oldest event is dropped.
func (q *eventQueue) send(evt Event) {
	select {
	case <-q.done:
		return
	default:
	}

	select {
	case q.events <- evt:
	default:
		// Buffer full, drop oldest and retry
		select {
		case <-q.events:
		default:
		}
		select {
		case q.events <- evt:
		default:
		}
	}
}

func (q *eventQueue) close() {
	q.doneOnce.Do(func() {
		close(q.done)
	})
}
