package browser

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

type LoginState string

const (
	StateLoggedIn LoginState = "logged_in"
	StateQRNeeded LoginState = "qr_needed"
	StateUnknown  LoginState = "unknown"
)

// loginProbeScript checks both selector families. The markers disagree
// between client versions, so an inconclusive probe reports "unknown"
// instead of guessing.
const loginProbeScript = `(function() {
	var qr = document.querySelector("[data-testid='qr-code']") ||
		document.querySelector("canvas[aria-label*='Scan']");
	if (qr) return "qr_needed";
	var chats = document.querySelector("[data-testid='chat-list']") ||
		document.querySelector("#pane-side");
	if (chats) return "logged_in";
	return "unknown";
})()`

// CheckLogin navigates to the client and probes the login state. Best-effort
// only: callers must not gate a run on this without operator confirmation.
func (s *Session) CheckLogin(ctx context.Context, baseURL string, window time.Duration) LoginState {
	if window <= 0 {
		window = 10 * time.Second
	}

	if err := s.run(s.actionTimeout,
		chromedp.Navigate(baseURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return StateUnknown
	}

	deadline := time.Now().Add(window)
	for {
		if err := ctx.Err(); err != nil {
			return StateUnknown
		}

		var state string
		if err := s.run(s.actionTimeout, chromedp.Evaluate(loginProbeScript, &state)); err == nil {
			switch LoginState(state) {
			case StateLoggedIn, StateQRNeeded:
				return LoginState(state)
			}
		}

		if time.Now().After(deadline) {
			return StateUnknown
		}
		time.Sleep(time.Second)
	}
}
