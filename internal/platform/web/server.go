// Package web serves the app to browsers and Mini App web views over a
// JSON API, with the board as a PNG and live updates as server-sent events.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/vovakirdan/coin-snake/internal/app"
	"github.com/vovakirdan/coin-snake/internal/render"
	"github.com/vovakirdan/coin-snake/internal/storage"
	"github.com/vovakirdan/coin-snake/internal/wallet"
)

// Store is what the HTTP API reads directly.
type Store interface {
	Balance(ctx context.Context, userID string) (int64, error)
	SubscribeBalance(ctx context.Context, userID string, fn func(int64)) (func(), error)
	Withdrawals(ctx context.Context, filter storage.WithdrawalFilter) ([]wallet.Withdrawal, error)
}

// Config holds configuration for the HTTP server.
type Config struct {
	Address        string
	StaticDir      string        // Served at /, empty disables
	BotToken       string        // Init data is verified when set
	InitMaxAge     time.Duration // Oldest accepted init data, zero means any
	FallbackUserID string
	IdleTimeout    time.Duration // Unused sessions are closed after this
	MaxSessions    int
	TileSize       int
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Address:     ":8080",
		IdleTimeout: 30 * time.Minute,
		MaxSessions: 1000,
		TileSize:    render.DefaultOptions().TileSize,
	}
}

// Server is the HTTP front end.
type Server struct {
	config   Config
	store    Store
	sessions *sessions
	logger   *log.Logger
	engine   *gin.Engine
}

// NewServer creates a server whose sessions come from factory.
func NewServer(cfg Config, factory *app.Factory, store Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithPrefix("web")

	s := &Server{
		config:   cfg,
		store:    store,
		sessions: newSessions(factory, cfg.MaxSessions, logger),
		logger:   logger,
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())

	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api", s.identify())
	api.GET("/me", s.handleMe)
	api.GET("/events", s.handleEvents)
	api.GET("/notices", s.handleNotices)
	api.POST("/page", s.handlePage)

	api.POST("/game/start", s.handleStart)
	api.POST("/game/direction", s.handleDirection)
	api.GET("/game/state", s.handleState)
	api.GET("/game/board.png", s.handleBoard)

	api.POST("/ads/watch", s.handleWatchAd)

	api.GET("/wallet/balance", s.handleBalance)
	api.GET("/wallet/stream", s.handleBalanceStream)
	api.GET("/wallet/withdrawals", s.handleWithdrawals)
	api.POST("/wallet/withdraw", s.handleWithdraw)

	if s.config.StaticDir != "" {
		r.Static("/app", s.config.StaticDir)
		r.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusFound, "/app/")
		})
	}
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// logRequests logs each request with charmbracelet/log.
func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"took", time.Since(start),
		)
	}
}

// ListenAndServe serves HTTP until ctx is done, then closes every session.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	reapCtx, stopReaper := context.WithCancel(ctx)
	defer stopReaper()
	go s.sessions.runReaper(reapCtx, s.config.IdleTimeout)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "address", s.config.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case err := <-errCh:
		if err != nil {
			serveErr = fmt.Errorf("web: http server: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			serveErr = fmt.Errorf("web: shutdown: %w", err)
		}
	}

	s.sessions.closeAll()
	return serveErr
}

// Close ends every session.
func (s *Server) Close() {
	s.sessions.closeAll()
}
