/* config.go
 * Typed configuration loaded from the environment. Absent or placeholder API tokens mean the
 * corresponding source is disabled and skipped silently everywhere it is consulted; that is a
 * configuration state, never a user visible error
 */

package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-andiamo/splitter"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Placeholder values treated the same as unset
var placeholders = []string{"", "changeme", "YOUR_TOKEN_HERE", "YOUR_API_KEY"}

type Config struct {
	// Structured sports API (PandaScore)
	PandaToken   string
	PandaBaseURL string

	// GraphQL tournament API (start.gg)
	StartGGToken   string
	StartGGURL     string
	StartGGUserIDs []string
	StartGGSlugs   []string

	// Wiki scraping
	WikiBaseURL       string
	ScrapeMinInterval time.Duration

	// Organisation identity
	OrgAliases []string

	// Season page slugs move a few times a year as the wiki reorganises content
	CoDSeasonPage     string
	TFTSeasonPage     string
	PokemonSeasonPage string

	// Parsing allow-lists
	TournamentKeywords []string
	AllowedRegions     []string

	// Notification plumbing
	MongoURI         string
	MongoDatabase    string
	DiscordToken     string
	DiscordChannelID string

	LogLevel string
}

// Load reads .env when present, then the environment, and logs the resolved shape
func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		PandaToken:        os.Getenv("PANDASCORE_TOKEN"),
		PandaBaseURL:      getEnv("PANDASCORE_BASE_URL", "https://api.pandascore.co"),
		StartGGToken:      os.Getenv("STARTGG_TOKEN"),
		StartGGURL:        getEnv("STARTGG_URL", "https://api.start.gg/gql/alpha"),
		StartGGUserIDs:    splitList(os.Getenv("STARTGG_USER_IDS")),
		StartGGSlugs:      splitList(os.Getenv("STARTGG_SLUGS")),
		WikiBaseURL:       getEnv("WIKI_BASE_URL", "https://liquipedia.net"),
		ScrapeMinInterval: getDuration("SCRAPE_MIN_INTERVAL", 2*time.Second),
		OrgAliases:        splitList(getEnv("ORG_ALIASES", `KOI "Movistar KOI"`)),
		CoDSeasonPage:     getEnv("COD_SEASON_PAGE", "callofduty/Call_of_Duty_League/2026"),
		TFTSeasonPage:     getEnv("TFT_SEASON_PAGE", "tft/EMEA_Golden_Spatula/2026"),
		PokemonSeasonPage: getEnv("POKEMON_SEASON_PAGE", "pokemon/VGC/2026/Championships"),
		TournamentKeywords: splitList(getEnv("TOURNAMENT_KEYWORDS",
			`Cup Championship Championships Finals Regional Regionals Qualifier Open Invitational Major`)),
		AllowedRegions:   splitList(getEnv("ALLOWED_REGIONS", `Europe EMEA Spain International`)),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDatabase:    getEnv("MONGO_DATABASE", "koi_tracker"),
		DiscordToken:     os.Getenv("DISCORD_TOKEN"),
		DiscordChannelID: os.Getenv("DISCORD_CHANNEL_ID"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	logger.Info().
		Bool("pandascore_enabled", cfg.PandaEnabled()).
		Bool("startgg_enabled", cfg.StartGGEnabled()).
		Bool("discord_enabled", cfg.DiscordEnabled()).
		Dur("scrape_min_interval", cfg.ScrapeMinInterval).
		Strs("org_aliases", cfg.OrgAliases).
		Msg("configuration loaded")

	return cfg, nil
}

// PandaEnabled reports whether the structured sports API may be consulted
func (c *Config) PandaEnabled() bool { return !isPlaceholder(c.PandaToken) }

// StartGGEnabled reports whether the GraphQL tournament API may be consulted
func (c *Config) StartGGEnabled() bool { return !isPlaceholder(c.StartGGToken) }

// DiscordEnabled reports whether reminder delivery through Discord is configured
func (c *Config) DiscordEnabled() bool {
	return !isPlaceholder(c.DiscordToken) && c.DiscordChannelID != ""
}

func isPlaceholder(v string) bool {
	for _, p := range placeholders {
		if strings.EqualFold(strings.TrimSpace(v), p) {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// splitList splits a space separated list where multi word values are double quoted,
// e.g. `KOI "Movistar KOI"` -> ["KOI", "Movistar KOI"]
func splitList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	spaceSplitter, err := splitter.NewSplitter(' ', splitter.DoubleQuotes)
	if err != nil {
		return strings.Fields(raw)
	}
	parts, err := spaceSplitter.Split(raw)
	if err != nil {
		return strings.Fields(raw)
	}
	var out []string
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `"`)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
