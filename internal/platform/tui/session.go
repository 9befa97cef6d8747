package tui

import (
	"fmt"

	"github.com/vovakirdan/coin-snake/internal/app"
	"github.com/vovakirdan/coin-snake/internal/bridge"
)

// noticeLimit bounds the popups queued for one terminal.
const noticeLimit = 16

// Session is a running app together with the recorder its popups and
// alerts are queued on.
type Session struct {
	App      *app.App
	Recorder *bridge.Recorder
	notify   chan struct{}
}

// NewSession builds and starts an app for the given user.
func NewSession(f *app.Factory, id bridge.Identity) (*Session, error) {
	rec := bridge.NewRecorder(id, noticeLimit)
	notify := make(chan struct{}, 1)
	rec.OnNotice(func(bridge.Notice) {
		select {
		case notify <- struct{}{}:
		default:
		}
	})

	a := f.New(rec)
	if err := a.Init(); err != nil {
		a.Close()
		return nil, fmt.Errorf("tui: start session: %w", err)
	}
	return &Session{App: a, Recorder: rec, notify: notify}, nil
}

// Close ends the session.
func (s *Session) Close() {
	s.App.Close()
}
