package wallet

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGrantForScore(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	r := NewRewarder(store, nil)

	got, err := r.GrantForScore(ctx, "u1", 7)
	if err != nil {
		t.Fatalf("GrantForScore() failed: %v", err)
	}
	if got != 7 || store.balances["u1"] != 7 {
		t.Errorf("Expected 7 coins credited, got %d (balance %d)", got, store.balances["u1"])
	}

	r.ScoreMultiplier = 3
	if _, err := r.GrantForScore(ctx, "u1", 2); err != nil {
		t.Fatalf("GrantForScore() failed: %v", err)
	}
	if store.balances["u1"] != 13 {
		t.Errorf("Expected balance 13, got %d", store.balances["u1"])
	}
}

func TestGrantForZeroScoreSkipsStore(t *testing.T) {
	store := newMemStore()
	r := NewRewarder(store, nil)

	got, err := r.GrantForScore(context.Background(), "u1", 0)
	if err != nil || got != 0 {
		t.Errorf("Zero score should credit nothing, got %d, %v", got, err)
	}
	if store.addCalls != 0 {
		t.Error("Zero score must not call the store")
	}
}

func TestGrantForScoreStoreFailure(t *testing.T) {
	store := newMemStore()
	store.failAdd = errBoom
	r := NewRewarder(store, nil)

	_, err := r.GrantForScore(context.Background(), "u1", 3)
	var se *StoreError
	if !errors.As(err, &se) || !errors.Is(err, errBoom) {
		t.Errorf("Expected store error, got %v", err)
	}
}

func TestGrantForAdAfterDelay(t *testing.T) {
	store := newMemStore()
	timers := &manualTimers{}
	r := NewRewarder(store, nil)
	r.AfterFunc = timers.AfterFunc

	var credited int64
	g := r.GrantForAd(context.Background(), "u1", func(amount int64, err error) {
		if err != nil {
			t.Errorf("Ad grant failed: %v", err)
		}
		credited = amount
	})

	if store.balances["u1"] != 0 {
		t.Error("Nothing should be credited before the ad ends")
	}
	if timers.timers[0].d != 5*time.Second {
		t.Errorf("Expected a 5s ad, got %v", timers.timers[0].d)
	}

	if n := timers.fireAll(); n != 1 {
		t.Fatalf("Expected one pending timer, got %d", n)
	}
	<-g.Done()

	if credited != 10 || store.balances["u1"] != 10 {
		t.Errorf("Expected 10 coins, got %d (balance %d)", credited, store.balances["u1"])
	}
	if g.Cancel() {
		t.Error("Cancel after credit should report false")
	}
}

func TestGrantForAdCancel(t *testing.T) {
	store := newMemStore()
	timers := &manualTimers{}
	r := NewRewarder(store, nil)
	r.AfterFunc = timers.AfterFunc

	called := false
	g := r.GrantForAd(context.Background(), "u1", func(int64, error) { called = true })

	if !g.Cancel() {
		t.Fatal("Pending grant should cancel")
	}
	select {
	case <-g.Done():
	default:
		t.Error("Done should close on cancel")
	}

	timers.fireAll()
	if called || store.addCalls != 0 {
		t.Error("Canceled grant must not credit")
	}
}

func TestGrantForAdSurvivesCanceledContext(t *testing.T) {
	store := newMemStore()
	timers := &manualTimers{}
	r := NewRewarder(store, nil)
	r.AfterFunc = timers.AfterFunc

	ctx, cancel := context.WithCancel(context.Background())
	g := r.GrantForAd(ctx, "u1", nil)
	cancel()

	timers.fireAll()
	<-g.Done()
	if store.balances["u1"] != 10 {
		t.Errorf("Expected the credit to land after the session ended, got %d", store.balances["u1"])
	}
}

func TestGrantForAdRealTimer(t *testing.T) {
	store := newMemStore()
	r := NewRewarder(store, nil)
	r.AdDelay = time.Millisecond

	result := make(chan error, 1)
	r.GrantForAd(context.Background(), "u1", func(_ int64, err error) { result <- err })

	select {
	case err := <-result:
		if err != nil {
			t.Fatalf("Ad grant failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Ad grant never completed")
	}
}
