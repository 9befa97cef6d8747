package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vovakirdan/coin-snake/internal/app"
	"github.com/vovakirdan/coin-snake/internal/bridge"
	"github.com/vovakirdan/coin-snake/internal/core"
	"github.com/vovakirdan/coin-snake/internal/games/snake"
	"github.com/vovakirdan/coin-snake/internal/render"
	"github.com/vovakirdan/coin-snake/internal/storage"
	"github.com/vovakirdan/coin-snake/internal/wallet"
)

// Largest board image a client may ask for, in pixels.
const maxBoardWidth = 2048

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.sessions.count()})
}

func (s *Server) handleMe(c *gin.Context) {
	sess, ok := s.sessionFor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"identity": sess.app.Identity(),
		"balance":  sess.app.Balance(),
		"page":     sess.app.Page(),
	})
}

// eventPayload names an app event and builds its JSON body.
func eventPayload(evt app.Event) (string, any) {
	switch e := evt.(type) {
	case app.RenderEvent:
		return "render", e.Snapshot
	case app.BalanceEvent:
		return "balance", gin.H{"balance": e.Balance}
	case app.PageEvent:
		return "page", gin.H{"page": e.Page}
	case app.GameOverEvent:
		return "game_over", gin.H{"score": e.Score, "reason": e.Reason, "credited": e.Credited}
	case app.FormResetEvent:
		return "form_reset", gin.H{}
	}
	return "", nil
}

// handleEvents streams the session's events until the client leaves.
func (s *Server) handleEvents(c *gin.Context) {
	sess, ok := s.sessionFor(c)
	if !ok {
		return
	}
	events := sess.app.Events()
	done := sess.app.Done()

	c.Stream(func(io.Writer) bool {
		select {
		case evt, ok := <-events:
			if !ok {
				return false
			}
			if name, data := eventPayload(evt); name != "" {
				c.SSEvent(name, data)
			}
			return true
		case <-done:
			return false
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (s *Server) handleNotices(c *gin.Context) {
	sess, ok := s.sessionFor(c)
	if !ok {
		return
	}
	notices := sess.recorder.Drain()
	if notices == nil {
		notices = []bridge.Notice{}
	}
	c.JSON(http.StatusOK, gin.H{"notices": notices})
}

type pageRequest struct {
	Page string `json:"page" binding:"required"`
}

func (s *Server) handlePage(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing page"})
		return
	}
	page := app.Page(req.Page)
	if page != app.PageGame && page != app.PageWallet {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown page " + strconv.Quote(req.Page)})
		return
	}

	sess, ok := s.sessionFor(c)
	if !ok {
		return
	}
	sess.app.SwitchPage(page)
	c.JSON(http.StatusOK, gin.H{"page": page})
}

// handleStart shows the game page and starts a new game.
func (s *Server) handleStart(c *gin.Context) {
	sess, ok := s.sessionFor(c)
	if !ok {
		return
	}
	if err := sess.app.PlayGame(); err != nil && !errors.Is(err, snake.ErrBoardFull) {
		s.logger.Error("cannot start game", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot start game"})
		return
	}
	c.JSON(http.StatusOK, sess.app.Snapshot())
}

type directionRequest struct {
	Direction string `json:"direction" binding:"required"`
}

func (s *Server) handleDirection(c *gin.Context) {
	var req directionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing direction"})
		return
	}
	action := core.ParseAction(req.Direction)
	if !action.IsDirectional() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid direction " + strconv.Quote(req.Direction)})
		return
	}

	sess, ok := s.sessionFor(c)
	if !ok {
		return
	}
	turned := sess.app.Input(action)
	c.JSON(http.StatusOK, gin.H{"turned": turned, "state": sess.app.Snapshot()})
}

func (s *Server) handleState(c *gin.Context) {
	sess, ok := s.sessionFor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.app.Snapshot())
}

// handleBoard draws the board as a PNG, optionally scaled to ?width=.
func (s *Server) handleBoard(c *gin.Context) {
	sess, ok := s.sessionFor(c)
	if !ok {
		return
	}

	opts := render.DefaultOptions()
	if s.config.TileSize > 0 {
		opts.TileSize = s.config.TileSize
	}
	opts.Background = c.Query("bg")
	opts.Grid = c.Query("grid") == "1"
	img := render.Board(sess.app.Snapshot(), opts)

	if w := c.Query("width"); w != "" {
		width, err := strconv.Atoi(w)
		if err != nil || width <= 0 || width > maxBoardWidth {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid width"})
			return
		}
		img = render.Scale(img, width)
	}

	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, img); err != nil {
		s.logger.Error("cannot encode board", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot draw board"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// handleWatchAd starts the simulated ad. The reward arrives later as a
// balance update and a notice.
func (s *Server) handleWatchAd(c *gin.Context) {
	sess, ok := s.sessionFor(c)
	if !ok {
		return
	}
	if sess.app.ShowAd() == nil {
		c.JSON(http.StatusGone, gin.H{"error": "session closed"})
		return
	}
	rewards := s.sessions.factory.Config().Rewards
	c.JSON(http.StatusAccepted, gin.H{
		"delay_ms": rewards.AdDelay().Milliseconds(),
		"amount":   rewards.AdAmount,
	})
}

func (s *Server) handleBalance(c *gin.Context) {
	id := identityFrom(c)
	balance, err := s.store.Balance(c.Request.Context(), id.UserID)
	if err != nil {
		s.logger.Error("cannot read balance", "user", id.UserID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot read balance"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// handleBalanceStream pushes the balance as server-sent events, starting
// with the current value.
func (s *Server) handleBalanceStream(c *gin.Context) {
	id := identityFrom(c)
	ctx := c.Request.Context()

	// Holds only the newest value; a slow client skips intermediate ones.
	updates := make(chan int64, 1)
	unsubscribe, err := s.store.SubscribeBalance(ctx, id.UserID, func(b int64) {
		select {
		case <-updates:
		default:
		}
		updates <- b
	})
	if err != nil {
		s.logger.Error("cannot subscribe to balance", "user", id.UserID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot read balance"})
		return
	}
	defer unsubscribe()

	c.Stream(func(io.Writer) bool {
		select {
		case b := <-updates:
			c.SSEvent("balance", gin.H{"balance": b})
			return true
		case <-ctx.Done():
			return false
		}
	})
}

func (s *Server) handleWithdrawals(c *gin.Context) {
	id := identityFrom(c)
	filter := storage.WithdrawalFilter{
		UserID: id.UserID,
		Status: wallet.WithdrawalStatus(c.Query("status")),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	if l := c.Query("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		filter.Limit = limit
	}

	rows, err := s.store.Withdrawals(c.Request.Context(), filter)
	if err != nil {
		s.logger.Error("cannot list withdrawals", "user", id.UserID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot list withdrawals"})
		return
	}
	if rows == nil {
		rows = []wallet.Withdrawal{}
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": rows})
}

// formValue is the raw text of a form field, sent as a JSON string or
// number.
type formValue string

func (v *formValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = formValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*v = formValue(n.String())
	return nil
}

type withdrawRequest struct {
	PayoutNumber formValue `json:"payoutNumber"`
	Amount       formValue `json:"amount"`
}

// handleWithdraw submits the withdrawal form. Validation failures answer
// 422 with the message the user should see.
func (s *Server) handleWithdraw(c *gin.Context) {
	var req withdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request"})
		return
	}

	sess, ok := s.sessionFor(c)
	if !ok {
		return
	}
	w, err := sess.app.Withdraw(string(req.PayoutNumber), string(req.Amount))
	if err != nil {
		status := http.StatusInternalServerError
		if wallet.IsValidation(err) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": wallet.UserMessage(err)})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"withdrawal": w,
		"message":    "Your withdraw request has been submitted successfully!",
	})
}
