package bridge

import "sync"

// ButtonType is the style of a popup button.
type ButtonType string

const (
	ButtonOK     ButtonType = "ok"
	ButtonClose  ButtonType = "close"
	ButtonCancel ButtonType = "cancel"
)

// Button is one popup button.
type Button struct {
	ID   string     `json:"id,omitempty"`
	Type ButtonType `json:"type"`
}

// Popup is a modal message with buttons.
type Popup struct {
	Title   string   `json:"title"`
	Message string   `json:"message"`
	Buttons []Button `json:"buttons"`
}

// OKPopup returns a popup with a single OK button.
func OKPopup(title, message string) Popup {
	return Popup{Title: title, Message: message, Buttons: []Button{{Type: ButtonOK}}}
}

// Host is the environment the app runs in.
type Host interface {
	Identity() Identity
	ShowPopup(p Popup)
	ShowAlert(message string)
	// Ready tells the host the app has loaded.
	Ready()
	// Expand asks the host for the full available height.
	Expand()
}

// NoticeKind tells popups and alerts apart.
type NoticeKind string

const (
	NoticePopup NoticeKind = "popup"
	NoticeAlert NoticeKind = "alert"
)

// Notice is a popup or alert waiting to be shown.
type Notice struct {
	Seq   uint64     `json:"seq"`
	Kind  NoticeKind `json:"kind"`
	Popup Popup      `json:"popup"`
}

// Recorder is a Host that queues popups and alerts for a front end to
// pick up. Thread-safe for concurrent access.
type Recorder struct {
	mu       sync.Mutex
	identity Identity
	notices  []Notice
	seq      uint64
	ready    bool
	expanded bool
	limit    int
	onNotice func(Notice)
}

// NewRecorder creates a recorder for the given user. At most limit
// notices are queued; older ones are dropped first.
func NewRecorder(id Identity, limit int) *Recorder {
	if limit < 1 {
		limit = 32
	}
	return &Recorder{identity: id, limit: limit}
}

// OnNotice sets a callback run for every new notice.
func (r *Recorder) OnNotice(fn func(Notice)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onNotice = fn
}

func (r *Recorder) Identity() Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.identity
}

func (r *Recorder) ShowPopup(p Popup) {
	r.push(NoticePopup, p)
}

func (r *Recorder) ShowAlert(message string) {
	r.push(NoticeAlert, Popup{Message: message, Buttons: []Button{{Type: ButtonOK}}})
}

func (r *Recorder) push(kind NoticeKind, p Popup) {
	r.mu.Lock()
	r.seq++
	n := Notice{Seq: r.seq, Kind: kind, Popup: p}
	r.notices = append(r.notices, n)
	if len(r.notices) > r.limit {
		r.notices = r.notices[len(r.notices)-r.limit:]
	}
	fn := r.onNotice
	r.mu.Unlock()

	if fn != nil {
		fn(n)
	}
}

func (r *Recorder) Ready() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ready = true
}

func (r *Recorder) Expand() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expanded = true
}

// State reports whether Ready and Expand were called.
func (r *Recorder) State() (ready, expanded bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready, r.expanded
}

// Drain returns and clears the queued notices.
func (r *Recorder) Drain() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.notices
	r.notices = nil
	return out
}

// Pending returns the number of queued notices.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notices)
}

var _ Host = (*Recorder)(nil)
