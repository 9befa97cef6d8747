package storage

import "sync"

// subscription is one balance listener.
type subscription struct {
	id     uint64
	userID string
	fn     func(int64)

	mu      sync.Mutex
	lastSeq uint64 // Sequence of the last delivered value
	last    int64  // Last delivered value
}

// deliver calls fn with coins unless a newer value was already delivered.
// With changedOnly, a value equal to the last one is skipped as well.
func (sub *subscription) deliver(coins int64, seq uint64, changedOnly bool) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if seq <= sub.lastSeq {
		return
	}
	sub.lastSeq = seq
	if changedOnly && coins == sub.last {
		return
	}
	sub.last = coins
	sub.fn(coins)
}

// balanceHub fans committed balance changes out to subscribers.
// Thread-safe for concurrent access.
type balanceHub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]*subscription
}

func newBalanceHub() *balanceHub {
	return &balanceHub{
		subs: make(map[string]map[uint64]*subscription),
	}
}

// subscribe registers fn for userID. Values from commits at or before seq
// are treated as already delivered.
func (h *balanceHub) subscribe(userID string, fn func(int64), seq uint64) *subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &subscription{id: h.nextID, userID: userID, fn: fn, lastSeq: seq}
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[uint64]*subscription)
	}
	h.subs[userID][sub.id] = sub
	return sub
}

// unsubscribe removes a subscription. Removing twice is a no-op.
func (h *balanceHub) unsubscribe(sub *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	users := h.subs[sub.userID]
	delete(users, sub.id)
	if len(users) == 0 {
		delete(h.subs, sub.userID)
	}
}

// publish delivers a balance committed at seq. Callbacks run outside the
// hub lock; a value older than one already delivered is skipped.
func (h *balanceHub) publish(userID string, coins int64, seq uint64) {
	for _, sub := range h.listeners(userID) {
		sub.deliver(coins, seq, false)
	}
}

// refresh delivers a balance re-read after another connection committed.
// Subscribers that already hold that value are not called again.
func (h *balanceHub) refresh(userID string, coins int64, seq uint64) {
	for _, sub := range h.listeners(userID) {
		sub.deliver(coins, seq, true)
	}
}

func (h *balanceHub) listeners(userID string) []*subscription {
	h.mu.RLock()
	defer h.mu.RUnlock()
	subs := make([]*subscription, 0, len(h.subs[userID]))
	for _, sub := range h.subs[userID] {
		subs = append(subs, sub)
	}
	return subs
}

// users returns the users with at least one subscription.
func (h *balanceHub) users() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	users := make([]string, 0, len(h.subs))
	for id := range h.subs {
		users = append(users, id)
	}
	return users
}

// count returns the number of subscriptions for userID.
func (h *balanceHub) count(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
