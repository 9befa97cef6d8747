package bridge

import (
	"errors"
	"net/url"
	"strconv"
	"testing"
	"time"

	initdata "github.com/telegram-mini-apps/init-data-golang"
)

func TestParseInitData(t *testing.T) {
	raw := url.Values{
		"user":      {`{"id":424242,"first_name":"Rafi","username":"rafi_bd"}`},
		"auth_date": {"1700000000"},
	}.Encode()

	id := ParseInitData(raw, "")
	if id.UserID != "424242" || id.FirstName != "Rafi" || id.Username != "rafi_bd" {
		t.Errorf("Unexpected identity %+v", id)
	}
	if id.Fallback {
		t.Error("Real user should not be marked as fallback")
	}
	if id.DisplayName() != "Rafi" {
		t.Errorf("Unexpected display name %q", id.DisplayName())
	}
}

func TestParseInitDataFallback(t *testing.T) {
	cases := map[string]string{
		"empty":        "",
		"no user":      "auth_date=1",
		"bad json":     "user=%7Bnot-json",
		"zero id":      url.Values{"user": {`{"id":0}`}}.Encode(),
		"bad encoding": "user=%zz",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			id := ParseInitData(raw, "")
			if id.UserID != FallbackUserID || !id.Fallback {
				t.Errorf("Expected fallback identity, got %+v", id)
			}
		})
	}

	if id := ParseInitData("", "dev"); id.UserID != "dev" {
		t.Errorf("Configured fallback not used, got %q", id.UserID)
	}
}

func signed(token string, authDate time.Time) string {
	payload := map[string]string{
		"user":     `{"id":7}`,
		"query_id": "AAF",
	}
	v := url.Values{
		"user":      {payload["user"]},
		"query_id":  {payload["query_id"]},
		"auth_date": {strconv.FormatInt(authDate.Unix(), 10)},
		"hash":      {initdata.Sign(payload, token, authDate)},
	}
	return v.Encode()
}

func TestVerifyInitData(t *testing.T) {
	raw := signed("123:abc", time.Now().Add(-time.Minute))

	if err := VerifyInitData(raw, "123:abc", time.Hour); err != nil {
		t.Errorf("Valid init data rejected: %v", err)
	}
	if err := VerifyInitData(raw, "other", time.Hour); !errors.Is(err, initdata.ErrSignInvalid) {
		t.Errorf("Expected signature mismatch, got %v", err)
	}
	if err := VerifyInitData("user=1&auth_date=1", "123:abc", 0); !errors.Is(err, initdata.ErrSignMissing) {
		t.Errorf("Expected missing signature, got %v", err)
	}

	stale := signed("123:abc", time.Now().Add(-2*time.Hour))
	if err := VerifyInitData(stale, "123:abc", time.Hour); !errors.Is(err, initdata.ErrExpired) {
		t.Errorf("Expected expiry, got %v", err)
	}
	if err := VerifyInitData(stale, "123:abc", 0); err != nil {
		t.Errorf("Zero max age should skip the freshness check, got %v", err)
	}
}

func TestVerifiedDataParses(t *testing.T) {
	id := ParseInitData(signed("123:abc", time.Now()), "")
	if id.UserID != "7" || id.Fallback {
		t.Errorf("Expected user 7, got %+v", id)
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder(FallbackIdentity(""), 2)

	var seen []NoticeKind
	r.OnNotice(func(n Notice) { seen = append(seen, n.Kind) })

	r.Ready()
	r.Expand()
	r.ShowPopup(OKPopup("Game Over!", "Your score is 3. You earned 3 coins!"))
	r.ShowAlert("one")
	r.ShowAlert("two")

	if ready, expanded := r.State(); !ready || !expanded {
		t.Error("Ready and Expand should be recorded")
	}
	if len(seen) != 3 {
		t.Errorf("Expected 3 callbacks, got %d", len(seen))
	}

	// Limit of 2 drops the oldest
	notices := r.Drain()
	if len(notices) != 2 {
		t.Fatalf("Expected 2 notices, got %d", len(notices))
	}
	if notices[0].Popup.Message != "one" || notices[1].Seq != 3 {
		t.Errorf("Unexpected notices %+v", notices)
	}
	if r.Pending() != 0 {
		t.Error("Drain should clear the queue")
	}
}
