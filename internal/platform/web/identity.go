package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"github.com/vovakirdan/coin-snake/internal/bridge"
)

const (
	identityKey    = "identity"
	initDataHeader = "X-Telegram-Init-Data"
)

// identify reads the user from the Mini App init data, sent in a header
// or the initData query parameter. With a bot token configured unsigned
// or stale data is refused; without one a missing user falls back to the
// development user.
func (s *Server) identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(initDataHeader)
		if raw == "" {
			raw = c.Query("initData")
		}

		if s.config.BotToken != "" {
			if err := bridge.VerifyInitData(raw, s.config.BotToken, s.config.InitMaxAge); err != nil {
				s.logger.Warn("init data rejected", "err", err, "remote", c.ClientIP())
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": initDataError(err)})
				return
			}
		}

		c.Set(identityKey, bridge.ParseInitData(raw, s.config.FallbackUserID))
		c.Next()
	}
}

// initDataError is the client-facing reason for a rejected init data.
func initDataError(err error) string {
	switch {
	case errors.Is(err, initdata.ErrExpired):
		return "init data expired"
	case errors.Is(err, initdata.ErrSignMissing), errors.Is(err, initdata.ErrAuthDateMissing):
		return "init data not signed"
	default:
		return "invalid init data"
	}
}

func identityFrom(c *gin.Context) bridge.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(bridge.Identity); ok {
			return id
		}
	}
	return bridge.FallbackIdentity("")
}

// sessionFor returns the caller's session. On failure the response is
// already written.
func (s *Server) sessionFor(c *gin.Context) (*session, bool) {
	sess, err := s.sessions.get(identityFrom(c))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrTooManySessions) {
			status = http.StatusServiceUnavailable
		}
		s.logger.Error("cannot open session", "err", err)
		c.AbortWithStatusJSON(status, gin.H{"error": "session unavailable"})
		return nil, false
	}
	return sess, true
}
