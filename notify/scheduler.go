/* scheduler.go
 * Local reminder scheduling over the upcoming match list. Every invocation cancels all
 * previously scheduled reminders and reschedules from scratch, so the schedule always
 * mirrors the latest upcoming set; reminders whose trigger time has already passed are
 * silently skipped
 */

package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"koi-tracker/api/shared"
	"koi-tracker/metrics"
	"koi-tracker/prefs"
)

const reminderOffset = 15 * time.Minute

// Notifier delivers one reminder message
type Notifier interface {
	Notify(message string) error
}

// PrefSource supplies per team notification preferences. Satisfied by prefs.Store
type PrefSource interface {
	All(ctx context.Context, teamIDs []string) map[string]prefs.TeamPrefs
}

type Scheduler struct {
	notifier Notifier
	prefs    PrefSource
	logger   zerolog.Logger
	now      func() time.Time

	mu     sync.Mutex
	timers []*time.Timer
}

func NewScheduler(notifier Notifier, prefSource PrefSource, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		notifier: notifier,
		prefs:    prefSource,
		logger:   logger,
		now:      time.Now,
	}
}

// ScheduleMatchReminders replaces the reminder schedule with one reminder per upcoming
// match whose team has reminders enabled, fired at a fixed offset before kickoff. Returns
// the number of reminders scheduled
func (s *Scheduler) ScheduleMatchReminders(ctx context.Context, matches []shared.Match) int {
	s.CancelAll()

	teamIDs := make([]string, 0, len(matches))
	seen := make(map[string]bool)
	for _, m := range matches {
		if !seen[m.TeamID] {
			seen[m.TeamID] = true
			teamIDs = append(teamIDs, m.TeamID)
		}
	}
	teamPrefs := s.prefs.All(ctx, teamIDs)

	now := s.now()
	count := 0
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range matches {
		if m.Status != shared.StatusUpcoming || m.Date.IsZero() {
			continue
		}
		p := teamPrefs[m.TeamID]
		if !p.Enabled || !p.MatchReminders {
			continue
		}
		trigger := m.Date.Add(-reminderOffset)
		if !trigger.After(now) {
			continue
		}

		match := m
		timer := time.AfterFunc(trigger.Sub(now), func() {
			msg := fmt.Sprintf("%s vs %s starts in 15 minutes (%s)",
				match.Home.Name, match.Away.Name, match.Tournament)
			if err := s.notifier.Notify(msg); err != nil {
				s.logger.Warn().Err(err).Str("match", match.ID).Msg("reminder delivery failed")
			}
		})
		s.timers = append(s.timers, timer)
		count++
	}

	metrics.RemindersScheduled.Add(float64(count))
	s.logger.Info().Int("scheduled", count).Int("matches", len(matches)).Msg("match reminders rescheduled")
	return count
}

// CancelAll stops every pending reminder
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}
