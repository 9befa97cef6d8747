package app

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/coin-snake/internal/bridge"
	"github.com/vovakirdan/coin-snake/internal/core"
	"github.com/vovakirdan/coin-snake/internal/games/snake"
	"github.com/vovakirdan/coin-snake/internal/storage"
	"github.com/vovakirdan/coin-snake/internal/wallet"
)

// manualTimers holds ad timers until the test fires them.
type manualTimers struct {
	mu      sync.Mutex
	pending []func()
}

type manualTimer struct {
	m   *manualTimers
	idx int
}

func (t manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.m.pending[t.idx] == nil {
		return false
	}
	t.m.pending[t.idx] = nil
	return true
}

func (m *manualTimers) AfterFunc(_ time.Duration, f func()) wallet.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, f)
	return manualTimer{m: m, idx: len(m.pending) - 1}
}

func (m *manualTimers) fire() {
	m.mu.Lock()
	fns := m.pending
	m.pending = make([]func(), len(fns))
	m.mu.Unlock()
	for _, f := range fns {
		if f != nil {
			f()
		}
	}
}

type fixture struct {
	app    *App
	store  *storage.Store
	host   *bridge.Recorder
	timers *manualTimers
}

func newFixture(t *testing.T, period time.Duration) *fixture {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "wallet.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	host := bridge.NewRecorder(bridge.Identity{UserID: "u1"}, 16)
	timers := &manualTimers{}
	rewarder := wallet.NewRewarder(store, nil)
	rewarder.AfterFunc = timers.AfterFunc

	a := New(Deps{
		Host:       host,
		Store:      store,
		Rewarder:   rewarder,
		Withdrawer: wallet.NewWithdrawer(store, wallet.DefaultRules(), nil),
		Scores:     store,
		Game:       snake.DefaultGameConfig(),
		TickPeriod: period,
		EventBuf:   256,
	})
	t.Cleanup(a.Close)

	return &fixture{app: a, store: store, host: host, timers: timers}
}

func messages(notices []bridge.Notice) []string {
	out := make([]string, len(notices))
	for i, n := range notices {
		out[i] = n.Popup.Message
	}
	return out
}

// waitFor reads events until match returns true.
func waitFor(t *testing.T, a *App, match func(Event) bool) Event {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case evt := <-a.Events():
			if match(evt) {
				return evt
			}
		case <-timeout:
			t.Fatal("Timed out waiting for event")
			return nil
		}
	}
}

func TestInit(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.store.AddBalance(context.Background(), "u1", 42)

	if err := f.app.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	if ready, expanded := f.host.State(); !ready || !expanded {
		t.Error("Init should mark the host ready and expanded")
	}
	if f.app.Page() != PageGame {
		t.Errorf("Expected game page, got %s", f.app.Page())
	}
	if f.app.Balance() != 42 {
		t.Errorf("Expected initial balance 42, got %d", f.app.Balance())
	}
	if s := f.app.Snapshot(); s.Status != snake.StatusRunning.String() {
		t.Errorf("Expected running game, got %s", s.Status)
	}

	// Later changes are pushed
	f.store.AddBalance(context.Background(), "u1", 8)
	waitFor(t, f.app, func(e Event) bool {
		b, ok := e.(BalanceEvent)
		return ok && b.Balance == 50
	})
}

func TestPageSwitchKeepsGame(t *testing.T) {
	f := newFixture(t, time.Hour)
	if err := f.app.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	f.app.Input(core.ActionUp)
	f.app.SwitchPage(PageWallet)

	if f.app.Page() != PageWallet {
		t.Error("Page not switched")
	}
	if f.app.Snapshot().Direction != "up" {
		t.Error("Switching page must not reset the game")
	}

	if err := f.app.PlayGame(); err != nil {
		t.Fatalf("PlayGame() failed: %v", err)
	}
	if f.app.Page() != PageGame || f.app.Snapshot().Direction != "none" {
		t.Error("PlayGame should show the game page with a fresh game")
	}
}

func TestGameOverCreditsScoreOnce(t *testing.T) {
	f := newFixture(t, time.Millisecond)
	if err := f.app.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	f.app.Input(core.ActionRight)

	evt := waitFor(t, f.app, func(e Event) bool {
		_, ok := e.(GameOverEvent)
		return ok
	}).(GameOverEvent)

	if evt.Reason != snake.ReasonWall {
		t.Errorf("Expected wall collision, got %s", evt.Reason)
	}
	if evt.Credited != int64(evt.Score) {
		t.Errorf("Credited %d for score %d", evt.Credited, evt.Score)
	}

	b, _ := f.store.Balance(context.Background(), "u1")
	if b != int64(evt.Score) {
		t.Errorf("Expected balance %d, got %d", evt.Score, b)
	}

	var overs int
	for _, n := range f.host.Drain() {
		if n.Popup.Title == "Game Over!" {
			overs++
			want := "Your score is " + strconv.Itoa(evt.Score) + ". You earned " + strconv.Itoa(evt.Score) + " coins!"
			if n.Popup.Message != want {
				t.Errorf("Message = %q, want %q", n.Popup.Message, want)
			}
		}
	}
	if overs != 1 {
		t.Errorf("Expected one game over popup, got %d", overs)
	}
}

func TestOnGameOverRecordsScore(t *testing.T) {
	f := newFixture(t, time.Hour)

	f.app.onGameOver(4, snake.ReasonSelf)

	b, _ := f.store.Balance(context.Background(), "u1")
	if b != 4 {
		t.Errorf("Expected 4 coins, got %d", b)
	}
	scores, err := f.store.UserScores(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("UserScores() failed: %v", err)
	}
	if len(scores) != 1 || scores[0].Score != 4 {
		t.Errorf("Score not recorded: %+v", scores)
	}
}

func TestZeroScoreGameOver(t *testing.T) {
	f := newFixture(t, time.Hour)

	f.app.onGameOver(0, snake.ReasonWall)

	got := messages(f.host.Drain())
	if len(got) != 1 || got[0] != "Your score is 0. You earned 0 coins!" {
		t.Errorf("Unexpected notices %v", got)
	}
	if scores, _ := f.store.UserScores(context.Background(), "u1", 10); len(scores) != 0 {
		t.Error("Zero score should not be recorded")
	}
}

func TestShowAd(t *testing.T) {
	f := newFixture(t, time.Hour)

	grant := f.app.ShowAd()
	if grant == nil {
		t.Fatal("ShowAd() returned nil")
	}
	first := f.host.Drain()
	if len(first) != 1 || first[0].Popup.Title != "Advertisement" ||
		first[0].Popup.Message != "Imagine you are watching an ad for 5 seconds..." {
		t.Errorf("Unexpected ad popup %+v", first)
	}

	f.timers.fire()
	f.app.Wait()

	if b, _ := f.store.Balance(context.Background(), "u1"); b != 10 {
		t.Errorf("Expected 10 coins, got %d", b)
	}
	done := f.host.Drain()
	if len(done) != 1 || done[0].Popup.Title != "Congratulations!" || done[0].Popup.Message != "You have earned 10 coins!" {
		t.Errorf("Unexpected reward popup %+v", done)
	}
}

func TestCloseCancelsAd(t *testing.T) {
	f := newFixture(t, time.Hour)

	f.app.ShowAd()
	f.app.Close()
	f.timers.fire()
	f.app.Wait()

	if b, _ := f.store.Balance(context.Background(), "u1"); b != 0 {
		t.Errorf("Canceled ad credited %d coins", b)
	}
	if f.app.ShowAd() != nil {
		t.Error("ShowAd after Close should do nothing")
	}
}

func TestWithdraw(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()
	f.store.AddBalance(ctx, "u1", 15000)

	w, err := f.app.Withdraw("01712345678", "12000")
	if err != nil {
		t.Fatalf("Withdraw() failed: %v", err)
	}
	if w.Status != wallet.StatusPending {
		t.Errorf("Expected pending request, got %s", w.Status)
	}
	if b, _ := f.store.Balance(ctx, "u1"); b != 3000 {
		t.Errorf("Expected balance 3000, got %d", b)
	}

	got := messages(f.host.Drain())
	if len(got) != 1 || got[0] != "Your withdraw request has been submitted successfully!" {
		t.Errorf("Unexpected alerts %v", got)
	}
	waitFor(t, f.app, func(e Event) bool {
		_, ok := e.(FormResetEvent)
		return ok
	})
}

func TestWithdrawValidationAlerts(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.store.AddBalance(context.Background(), "u1", 15000)

	cases := []struct {
		payout, amount string
		want           string
	}{
		{"123", "12000", "Please enter a valid Bkash number."},
		{"01712345678", "x", "Please enter a valid amount."},
		{"01712345678", "500", "Minimum withdraw amount is 10,000 coins."},
		{"01712345678", "20000", "You do not have enough coins to withdraw."},
	}
	for _, tc := range cases {
		_, err := f.app.Withdraw(tc.payout, tc.amount)
		if !wallet.IsValidation(err) {
			t.Errorf("Expected validation error for %q/%q, got %v", tc.payout, tc.amount, err)
		}
		got := messages(f.host.Drain())
		if len(got) != 1 || got[0] != tc.want {
			t.Errorf("Alerts = %v, want %q", got, tc.want)
		}
	}

	list, _ := f.store.Withdrawals(context.Background(), storage.WithdrawalFilter{UserID: "u1"})
	if len(list) != 0 {
		t.Error("Rejected requests must not be recorded")
	}
}

func TestWithdrawStoreFailure(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.store.AddBalance(context.Background(), "u1", 15000)
	f.store.Close()

	_, err := f.app.Withdraw("01712345678", "12000")
	var se *wallet.StoreError
	if !errors.As(err, &se) {
		t.Fatalf("Expected store error, got %v", err)
	}
	got := messages(f.host.Drain())
	if len(got) != 1 || !strings.HasPrefix(got[0], "An error occurred: ") {
		t.Errorf("Unexpected alerts %v", got)
	}
}
