// Package handler provides Telegram bot command handlers. Handlers parse
// arguments, hold the per-user lock around balance mutations, and turn
// service errors into user-facing replies. They never return raw errors to
// the poller for business failures.
package handler

import (
	"errors"
	"fmt"
	"time"

	tele "gopkg.in/telebot.v3"

	"token-economy-bot/internal/service"
)

// callbackData returns the callback payload with telebot's \f prefix
// stripped.
func callbackData(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	data := cb.Data
	if len(data) > 0 && data[0] == '\f' {
		data = data[1:]
	}
	return data
}

// displayName returns the best handle we have for a user.
func displayName(u *tele.User) string {
	if u == nil {
		return "unknown"
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return u.FirstName
}

// replyCooldown renders a CooldownError if err is one, reporting whether it
// handled the error.
func replyCooldown(c tele.Context, err error) (bool, error) {
	var cdErr *service.CooldownError
	if !errors.As(err, &cdErr) {
		return false, nil
	}
	return true, c.Reply(fmt.Sprintf(
		"⏳ Slow down! %s is available in %s.",
		cdErr.Action, formatDuration(cdErr.Remaining),
	))
}

// formatDuration renders a wait in the largest useful unit.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		secs := int(d.Round(time.Second).Seconds())
		if secs < 1 {
			secs = 1
		}
		return fmt.Sprintf("%ds", secs)
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
