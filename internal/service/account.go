package service

import (
	"sync"
	"time"

	"token-economy-bot/internal/economy"
	"token-economy-bot/internal/game/odds"
	"token-economy-bot/internal/model"
)

// Earn action windows and reward bounds.
const (
	DailyCooldown = 24 * time.Hour
	WorkCooldown  = 3 * time.Hour
	CrimeCooldown = time.Hour

	dailyMaxReward = 50
	workMaxReward  = 100
	crimeMaxGain   = 100
	crimeMaxLoss   = 200
	chatMaxReward  = 5
)

// Anti-spam: more than spamThreshold messages inside spamWindow costs
// spamPenalty tokens and clears the window.
const (
	spamWindow    = 10 * time.Second
	spamThreshold = 5
	spamPenalty   = 50
)

var jobLines = []string{
	"delivered pizzas across town",
	"moderated a very rowdy chat",
	"fixed a stranger's printer",
	"walked seven dogs at once",
	"debugged production on a Friday",
	"sold lemonade outside the arcade",
}

// AccountService implements the earn actions (daily, work, crime, chat
// rewards) and the anti-spam penalty. Rewards are drawn from the injected
// RNG; cooldowns are recorded only after the guarded action succeeds.
type AccountService struct {
	ledger    *economy.Ledger
	cooldowns *economy.CooldownStore
	rng       odds.Rand
	now       func() time.Time

	spamMu sync.Mutex
	spam   map[int64][]time.Time
}

// NewAccountService creates an AccountService. now defaults to time.Now
// when nil.
func NewAccountService(ledger *economy.Ledger, cooldowns *economy.CooldownStore, rng odds.Rand, now func() time.Time) *AccountService {
	if now == nil {
		now = time.Now
	}
	return &AccountService{
		ledger:    ledger,
		cooldowns: cooldowns,
		rng:       rng,
		now:       now,
		spam:      make(map[int64][]time.Time),
	}
}

// Daily pays the once-a-day reward of 1 to 50 tokens.
func (s *AccountService) Daily(userID int64) (int64, error) {
	now := s.now()
	if ok, availableAt := s.cooldowns.CheckLong(userID, model.ActionDaily, DailyCooldown, now); !ok {
		return 0, &CooldownError{Action: "daily", Remaining: availableAt.Sub(now)}
	}

	reward := int64(1 + s.rng.Intn(dailyMaxReward))
	if _, err := s.ledger.Adjust(userID, reward); err != nil {
		return 0, err
	}
	s.cooldowns.RecordLong(userID, model.ActionDaily, now)
	return reward, nil
}

// Work pays 1 to 100 tokens every three hours, along with a flavor line
// describing the job.
func (s *AccountService) Work(userID int64) (int64, string, error) {
	now := s.now()
	if ok, availableAt := s.cooldowns.CheckLong(userID, model.ActionWork, WorkCooldown, now); !ok {
		return 0, "", &CooldownError{Action: "work", Remaining: availableAt.Sub(now)}
	}

	reward := int64(1 + s.rng.Intn(workMaxReward))
	if _, err := s.ledger.Adjust(userID, reward); err != nil {
		return 0, "", err
	}
	s.cooldowns.RecordLong(userID, model.ActionWork, now)
	return reward, jobLines[s.rng.Intn(len(jobLines))], nil
}

// Crime is a 50/50 gamble: success gains 1 to 100 tokens, failure loses
// 1 to 200 clamped at the current balance so it never overdraws. The
// cooldown applies either way; failing is still taking the action.
func (s *AccountService) Crime(userID int64) (delta int64, success bool, err error) {
	now := s.now()
	if ok, availableAt := s.cooldowns.CheckLong(userID, model.ActionCrime, CrimeCooldown, now); !ok {
		return 0, false, &CooldownError{Action: "crime", Remaining: availableAt.Sub(now)}
	}

	success = s.rng.Intn(2) == 0
	if success {
		delta = int64(1 + s.rng.Intn(crimeMaxGain))
	} else {
		loss := int64(1 + s.rng.Intn(crimeMaxLoss))
		if bal := s.ledger.Balance(userID); loss > bal {
			loss = bal
		}
		delta = -loss
	}

	if delta != 0 {
		if _, err := s.ledger.Adjust(userID, delta); err != nil {
			return 0, false, err
		}
	}
	s.cooldowns.RecordLong(userID, model.ActionCrime, now)
	return delta, success, nil
}

// ChatReward pays the small per-message trickle of 1 to 5 tokens.
func (s *AccountService) ChatReward(userID int64) int64 {
	reward := int64(1 + s.rng.Intn(chatMaxReward))
	s.ledger.Adjust(userID, reward)
	return reward
}

// TrackMessage records a message timestamp for the anti-spam window and
// returns the penalty applied, 0 when the user stayed under the threshold.
// The window is cleared after a penalty so the user is not charged again
// on every following message.
func (s *AccountService) TrackMessage(userID int64) int64 {
	now := s.now()

	s.spamMu.Lock()
	recent := s.spam[userID][:0]
	for _, ts := range s.spam[userID] {
		if now.Sub(ts) <= spamWindow {
			recent = append(recent, ts)
		}
	}
	recent = append(recent, now)

	if len(recent) <= spamThreshold {
		s.spam[userID] = recent
		s.spamMu.Unlock()
		return 0
	}
	delete(s.spam, userID)
	s.spamMu.Unlock()

	if s.ledger.Balance(userID) < spamPenalty {
		return 0
	}
	if _, err := s.ledger.Adjust(userID, -spamPenalty); err != nil {
		return 0
	}
	return spamPenalty
}

// CleanupSpamTrackers drops users whose whole window has aged out. Run
// hourly so idle users don't accumulate.
func (s *AccountService) CleanupSpamTrackers() int {
	now := s.now()

	s.spamMu.Lock()
	defer s.spamMu.Unlock()

	removed := 0
	for userID, stamps := range s.spam {
		if len(stamps) == 0 || now.Sub(stamps[len(stamps)-1]) > spamWindow {
			delete(s.spam, userID)
			removed++
		}
	}
	return removed
}
