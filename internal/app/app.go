// Package app is the presentation controller of one user session. It owns
// the snake game, wires game over to the reward engine, runs the ad flow
// and the withdrawal form, and reports everything a front end draws as
// events.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/coin-snake/internal/bridge"
	"github.com/vovakirdan/coin-snake/internal/core"
	"github.com/vovakirdan/coin-snake/internal/games/snake"
	"github.com/vovakirdan/coin-snake/internal/wallet"
)

// Page is one of the two screens of the app.
type Page string

const (
	PageGame   Page = "game"
	PageWallet Page = "wallet"
)

// ScoreRecorder stores finished games for the score history.
type ScoreRecorder interface {
	SaveScore(ctx context.Context, userID string, score int) (int64, error)
}

// Deps are the collaborators of an App.
type Deps struct {
	Host       bridge.Host
	Store      wallet.Store
	Rewarder   *wallet.Rewarder
	Withdrawer *wallet.Withdrawer
	Scores     ScoreRecorder // Optional
	Game       snake.Config
	TickPeriod time.Duration
	Logger     *log.Logger
	EventBuf   int
}

// App is one user's session.
type App struct {
	deps     Deps
	identity bridge.Identity
	logger   *log.Logger
	driver   *snake.Driver
	queue    *eventQueue

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	page        Page
	balance     int64
	unsubscribe func()
	ads         map[*wallet.AdGrant]struct{}
	closed      bool
	wg          sync.WaitGroup
}

// New creates a session for the host's user. Call Init to start it.
func New(deps Deps) *App {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	id := deps.Host.Identity()

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		deps:     deps,
		identity: id,
		logger:   logger.With("user", id.UserID),
		queue:    newEventQueue(deps.EventBuf),
		ctx:      ctx,
		cancel:   cancel,
		page:     PageGame,
		ads:      make(map[*wallet.AdGrant]struct{}),
	}
	a.driver = snake.NewDriver(snake.New(deps.Game), deps.TickPeriod, snake.Hooks{
		OnRender:   a.onRender,
		OnGameOver: a.onGameOver,
	})
	return a
}

// Init tells the host the app is ready, shows the game page, starts the
// live balance and begins the first game.
func (a *App) Init() error {
	a.deps.Host.Ready()
	a.deps.Host.Expand()
	a.SwitchPage(PageGame)

	unsubscribe, err := a.deps.Store.SubscribeBalance(a.ctx, a.identity.UserID, a.onBalance)
	if err != nil {
		// The game still works without a live balance.
		a.logger.Error("cannot subscribe to balance", "err", err)
	} else {
		a.mu.Lock()
		a.unsubscribe = unsubscribe
		a.mu.Unlock()
	}

	return a.StartGame()
}

// Identity returns the session's user.
func (a *App) Identity() bridge.Identity {
	return a.identity
}

// Events returns the stream of things to draw.
func (a *App) Events() <-chan Event {
	return a.queue.events
}

// Done is closed when the session is closed.
func (a *App) Done() <-chan struct{} {
	return a.queue.done
}

// SwitchPage shows a page. The game keeps running behind the wallet page.
func (a *App) SwitchPage(p Page) {
	a.mu.Lock()
	a.page = p
	a.mu.Unlock()
	a.queue.send(PageEvent{Page: p})
}

// Page returns the visible page.
func (a *App) Page() Page {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.page
}

// PlayGame shows the game page and starts a new game.
func (a *App) PlayGame() error {
	a.SwitchPage(PageGame)
	return a.StartGame()
}

// StartGame starts a new game, replacing any game in progress.
func (a *App) StartGame() error {
	err := a.driver.Start(a.ctx)
	if errors.Is(err, snake.ErrBoardFull) {
		a.logger.Warn("board too small to place food")
	}
	return err
}

// Input steers the snake.
func (a *App) Input(action core.Action) bool {
	d, ok := snake.DirectionFor(action)
	if !ok {
		return false
	}
	return a.driver.SetDirection(d)
}

// Snapshot returns the current board.
func (a *App) Snapshot() snake.Snapshot {
	return a.driver.Snapshot()
}

// Balance returns the last balance pushed by the store.
func (a *App) Balance() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// ShowAd plays the simulated ad and credits the reward when it ends. It
// returns nil once the session is closed.
func (a *App) ShowAd() *wallet.AdGrant {
	r := a.deps.Rewarder

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}

	secs := int(r.AdDelay / time.Second)
	a.deps.Host.ShowPopup(bridge.OKPopup(
		"Advertisement",
		fmt.Sprintf("Imagine you are watching an ad for %d seconds...", secs),
	))

	// The callback takes a.mu, so it cannot run before grant is stored.
	var grant *wallet.AdGrant
	a.wg.Add(1)
	grant = r.GrantForAd(a.ctx, a.identity.UserID, func(amount int64, err error) {
		defer a.wg.Done()
		a.mu.Lock()
		delete(a.ads, grant)
		a.mu.Unlock()

		if err != nil {
			a.deps.Host.ShowAlert(wallet.UserMessage(err))
			return
		}
		a.deps.Host.ShowPopup(bridge.OKPopup(
			"Congratulations!",
			fmt.Sprintf("You have earned %d coins!", amount),
		))
	})
	a.ads[grant] = struct{}{}
	return grant
}

// Withdraw submits the withdrawal form. Every outcome is reported to the
// user through an alert; the error is returned for callers that need it.
func (a *App) Withdraw(payoutNumber, amountInput string) (wallet.Withdrawal, error) {
	w, err := a.deps.Withdrawer.Submit(a.ctx, a.identity.UserID, payoutNumber, amountInput)
	if err != nil {
		if !wallet.IsValidation(err) {
			a.logger.Error("withdrawal failed", "err", err)
		}
		a.deps.Host.ShowAlert(wallet.UserMessage(err))
		return wallet.Withdrawal{}, err
	}

	a.deps.Host.ShowAlert("Your withdraw request has been submitted successfully!")
	a.queue.send(FormResetEvent{})
	return w, nil
}

// Close stops the game, cancels pending ads and ends the balance
// subscription. Safe to call more than once.
func (a *App) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	unsubscribe := a.unsubscribe
	a.unsubscribe = nil
	ads := make([]*wallet.AdGrant, 0, len(a.ads))
	for g := range a.ads {
		ads = append(ads, g)
	}
	a.ads = nil
	a.mu.Unlock()

	a.driver.Stop()
	for _, g := range ads {
		if g.Cancel() {
			a.wg.Done()
		}
	}
	if unsubscribe != nil {
		unsubscribe()
	}
	a.cancel()
	a.queue.close()
}

// Wait blocks until every running ad reward has finished.
func (a *App) Wait() {
	a.wg.Wait()
}

func (a *App) onRender(s snake.Snapshot) {
	a.queue.send(RenderEvent{Snapshot: s})
}

func (a *App) onBalance(b int64) {
	a.mu.Lock()
	a.balance = b
	a.mu.Unlock()
	a.queue.send(BalanceEvent{Balance: b})
}

// onGameOver runs on the tick goroutine once per game.
func (a *App) onGameOver(score int, reason snake.OverReason) {
	mult := a.deps.Rewarder.ScoreMultiplier
	if mult <= 0 {
		mult = 1
	}
	a.deps.Host.ShowPopup(bridge.OKPopup(
		"Game Over!",
		fmt.Sprintf("Your score is %d. You earned %d coins!", score, int64(score)*mult),
	))
	a.logger.Info("game over", "score", score, "reason", reason)

	// The session may already be closing; the credit must still land.
	ctx := context.WithoutCancel(a.ctx)
	credited, err := a.deps.Rewarder.GrantForScore(ctx, a.identity.UserID, score)
	if err != nil {
		a.logger.Error("cannot credit score", "err", err)
		a.deps.Host.ShowAlert(wallet.UserMessage(err))
	}

	if a.deps.Scores != nil && score > 0 {
		if _, err := a.deps.Scores.SaveScore(ctx, a.identity.UserID, score); err != nil {
			a.logger.Error("cannot save score", "err", err)
		}
	}

	a.queue.send(GameOverEvent{Score: score, Reason: reason, Credited: credited})
}
