// Package service implements the non-wager features on top of the economy
// core: earn actions, gifts, the shop, invite rewards and the scramble
// minigame.
package service

import (
	"fmt"
	"time"
)

// CooldownError reports a blocked action and how long until it unblocks.
// Handlers unwrap it with errors.As to render the wait.
type CooldownError struct {
	Action    string
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s is on cooldown, %s remaining", e.Action, e.Remaining.Round(time.Second))
}
