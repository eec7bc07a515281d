/* app.go
 * fx module assembly. Disabled sources resolve to nil client interfaces; the aggregation
 * service treats a nil source as "skip silently", so wiring stays unconditional
 */

package app

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"koi-tracker/api/aggregate"
	"koi-tracker/api/cache"
	"koi-tracker/api/external"
	"koi-tracker/api/ratelimit"
	"koi-tracker/api/scraper"
	"koi-tracker/config"
	"koi-tracker/notify"
	"koi-tracker/prefs"
)

func NewLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// ApplyLogLevel caps the global level once config has loaded
func ApplyLogLevel(cfg *config.Config, logger zerolog.Logger) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, keeping info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func NewSportsAPI(cfg *config.Config, logger zerolog.Logger) aggregate.SportsAPI {
	if !cfg.PandaEnabled() {
		logger.Info().Msg("structured sports API disabled, no token configured")
		return nil
	}
	return external.NewPandaClient(cfg.PandaToken, cfg.PandaBaseURL, logger)
}

func NewTournamentAPI(cfg *config.Config, logger zerolog.Logger) aggregate.TournamentAPI {
	if !cfg.StartGGEnabled() {
		logger.Info().Msg("tournament API disabled, no token configured")
		return nil
	}
	return external.NewGGClient(cfg.StartGGToken, cfg.StartGGURL, logger)
}

func NewGate(cfg *config.Config) *ratelimit.Gate {
	return ratelimit.NewGate(cfg.ScrapeMinInterval)
}

func NewWikiClient(cfg *config.Config, gate *ratelimit.Gate, logger zerolog.Logger) *external.WikiClient {
	return external.NewWikiClient(cfg.WikiBaseURL, gate, cache.New(), logger)
}

func NewScraper(wiki *external.WikiClient, cfg *config.Config, logger zerolog.Logger) *scraper.Scraper {
	return scraper.New(wiki, cfg.TournamentKeywords, cfg.AllowedRegions, logger)
}

func NewService(cfg *config.Config, sports aggregate.SportsAPI, gg aggregate.TournamentAPI, sc *scraper.Scraper, logger zerolog.Logger) *aggregate.Service {
	return aggregate.New(cfg, sports, gg, sc, logger)
}

func NewPrefSource(cfg *config.Config, logger zerolog.Logger) notify.PrefSource {
	if cfg.MongoURI == "" {
		logger.Info().Msg("mongo not configured, notification preferences default to enabled")
		return notify.DefaultPrefs{}
	}
	store, _, err := prefs.Connect(context.Background(), cfg.MongoURI, cfg.MongoDatabase, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("mongo unreachable, notification preferences default to enabled")
		return notify.DefaultPrefs{}
	}
	return store
}

func NewNotifier(cfg *config.Config, logger zerolog.Logger) notify.Notifier {
	if !cfg.DiscordEnabled() {
		logger.Info().Msg("discord not configured, reminders go to the log")
		return notify.LogNotifier{Logger: logger}
	}
	notifier, err := notify.NewDiscordNotifier(cfg.DiscordToken, cfg.DiscordChannelID, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("discord session failed, reminders go to the log")
		return notify.LogNotifier{Logger: logger}
	}
	return notifier
}

var Module = fx.Options(
	fx.Provide(NewLogger),
	fx.Provide(config.Load),
	fx.Invoke(ApplyLogLevel),
	// sources
	fx.Provide(NewSportsAPI),
	fx.Provide(NewTournamentAPI),
	fx.Provide(NewGate),
	fx.Provide(NewWikiClient),
	fx.Provide(NewScraper),
	// orchestration
	fx.Provide(NewService),
	// reminders
	fx.Provide(NewPrefSource),
	fx.Provide(NewNotifier),
	fx.Provide(notify.NewScheduler),
)
