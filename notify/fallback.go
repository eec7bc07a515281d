/* fallback.go
 * No-op stand-ins used when Discord or Mongo are not configured, so the scheduler keeps
 * working with reduced delivery instead of being disabled outright
 */

package notify

import (
	"context"

	"github.com/rs/zerolog"

	"koi-tracker/prefs"
)

// LogNotifier writes reminders to the log instead of an external channel
type LogNotifier struct {
	Logger zerolog.Logger
}

func (n LogNotifier) Notify(message string) error {
	n.Logger.Info().Str("reminder", message).Msg("match reminder")
	return nil
}

// DefaultPrefs answers every preference lookup with the defaults
type DefaultPrefs struct{}

func (DefaultPrefs) All(ctx context.Context, teamIDs []string) map[string]prefs.TeamPrefs {
	out := make(map[string]prefs.TeamPrefs, len(teamIDs))
	for _, id := range teamIDs {
		out[id] = prefs.Defaults(id)
	}
	return out
}
