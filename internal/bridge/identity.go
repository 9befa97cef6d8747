// Package bridge connects the app to the host that embeds it: who the user
// is, and how popups and alerts reach them.
package bridge

import (
	"fmt"
	"strconv"
	"time"

	initdata "github.com/telegram-mini-apps/init-data-golang"
)

// FallbackUserID is used when the host supplies no user, e.g. when the app
// is opened outside the messenger during development.
const FallbackUserID = "test_user_12345"

// Identity is the user on the other side of the host.
type Identity struct {
	UserID    string `json:"userId"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	Fallback  bool   `json:"fallback,omitempty"` // No real user was supplied
}

// DisplayName returns the friendliest available name.
func (id Identity) DisplayName() string {
	switch {
	case id.FirstName != "":
		return id.FirstName
	case id.Username != "":
		return id.Username
	default:
		return id.UserID
	}
}

// FallbackIdentity returns the identity used when the host has no user.
func FallbackIdentity(userID string) Identity {
	if userID == "" {
		userID = FallbackUserID
	}
	return Identity{UserID: userID, Fallback: true}
}

// ParseInitData reads the user from a Mini App init data string, the
// URL-encoded form the messenger hands to the web view. Missing or
// malformed data yields the fallback identity.
func ParseInitData(raw, fallbackUserID string) Identity {
	if raw == "" {
		return FallbackIdentity(fallbackUserID)
	}
	data, err := initdata.Parse(raw)
	if err != nil || data.User.ID == 0 {
		return FallbackIdentity(fallbackUserID)
	}
	return Identity{
		UserID:    strconv.FormatInt(data.User.ID, 10),
		Username:  data.User.Username,
		FirstName: data.User.FirstName,
	}
}

// VerifyInitData checks the init data signature against the bot token.
// A maxAge of zero disables the freshness check. Errors wrap the
// initdata sentinels (ErrSignMissing, ErrSignInvalid, ErrExpired, ...).
func VerifyInitData(raw, botToken string, maxAge time.Duration) error {
	if err := initdata.Validate(raw, botToken, maxAge); err != nil {
		return fmt.Errorf("bridge: init data rejected: %w", err)
	}
	return nil
}
