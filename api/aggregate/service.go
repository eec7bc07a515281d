/* service.go
 * The aggregation service is the orchestrator: it discovers the organisation's team ids
 * across the structured API, merges per source results, resolves standings, enriches match
 * detail and exposes the unified read only query surface. The service instance owns its
 * cache and discovered id set; there is no package level state
 */

package aggregate

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"koi-tracker/api/cache"
	"koi-tracker/api/external"
	"koi-tracker/api/scraper"
	"koi-tracker/api/shared"
	"koi-tracker/config"
)

// SportsAPI is the structured sports API surface the service consumes. Satisfied by
// external.PandaClient; tests substitute a fake
type SportsAPI interface {
	SearchTeams(ctx context.Context, game shared.Game, name string) ([]external.PandaTeam, error)
	GetTeam(ctx context.Context, game shared.Game, id int) (*external.PandaTeam, error)
	GetPlayer(ctx context.Context, id int) (*external.PandaPlayer, error)
	MatchesByStatus(ctx context.Context, game shared.Game, status string, opponentIDs []int, page int) ([]external.PandaMatch, error)
	MatchDetail(ctx context.Context, game shared.Game, id int) (*external.PandaMatchDetail, error)
	TournamentStandings(ctx context.Context, tournamentID int) ([]external.PandaStanding, error)
	SeriesTournaments(ctx context.Context, serieID int) ([]external.PandaTournament, error)
}

// TournamentAPI is the GraphQL tournament API surface. Satisfied by external.GGClient
type TournamentAPI interface {
	TournamentsByVideogame(ctx context.Context, videogameID int, upcoming bool, page int) ([]external.GGTournament, error)
	TournamentsByUser(ctx context.Context, userID string) ([]external.GGTournament, error)
	TournamentBySlug(ctx context.Context, slug string) (*external.GGTournament, error)
	EventStandings(ctx context.Context, eventID int) ([]external.GGStandingNode, error)
	EventSets(ctx context.Context, eventID int) ([]external.GGSetNode, error)
}

// WikiSource is the scraping surface. Satisfied by scraper.Scraper
type WikiSource interface {
	TeamResults(ctx context.Context, pageSlug string, game shared.Game, teamID string) []shared.Tournament
	UpcomingEvents(ctx context.Context, pageSlug string, game shared.Game, teamID string) []shared.Tournament
	MatchMaps(ctx context.Context, pageSlug, homeName, awayName string) []scraper.MapResult
}

// Cache TTLs per data class. Live data is seconds scale, finished data hours scale
const (
	ttlDiscovery   = 10 * time.Minute
	ttlTeams       = 10 * time.Minute
	ttlUpcoming    = 2 * time.Minute
	ttlLive        = 30 * time.Second
	ttlPast        = 1 * time.Hour
	ttlMatchDetail = 5 * time.Minute
	ttlTournaments = 30 * time.Minute
)

// discoveredTeam is one structured API team accepted by the alias filter
type discoveredTeam struct {
	game shared.Game
	team external.PandaTeam
}

type Service struct {
	cfg    *config.Config
	sports SportsAPI     // nil when the source is disabled
	gg     TournamentAPI // nil when the source is disabled
	wiki   WikiSource
	cache  *cache.Cache
	logger zerolog.Logger
	now    func() time.Time

	discoverSF   singleflight.Group
	retryBackoff []time.Duration

	mu           sync.RWMutex
	discovered   map[int]discoveredTeam
	discoveredAt time.Time
	ggIndex      map[string]external.GGTournament
}

func New(cfg *config.Config, sports SportsAPI, gg TournamentAPI, wiki WikiSource, logger zerolog.Logger) *Service {
	return &Service{
		cfg:          cfg,
		sports:       sports,
		gg:           gg,
		wiki:         wiki,
		cache:        cache.New(),
		logger:       logger,
		now:          time.Now,
		retryBackoff: []time.Duration{2 * time.Second, 4 * time.Second},
		ggIndex:      make(map[string]external.GGTournament),
	}
}

// discoverTeams resolves the organisation's numeric team ids across the API covered titles.
// Concurrent callers share one in-flight discovery; the result is held for ttlDiscovery. A
// failed discovery is not cached, so the next caller retries. All dependent queries treat an
// empty id set as "no structured data" and degrade to empty results
func (s *Service) discoverTeams(ctx context.Context) map[int]discoveredTeam {
	s.mu.RLock()
	if s.discovered != nil && s.now().Sub(s.discoveredAt) < ttlDiscovery {
		d := s.discovered
		s.mu.RUnlock()
		return d
	}
	s.mu.RUnlock()

	if s.sports == nil {
		return nil
	}

	v, _, _ := s.discoverSF.Do("discover", func() (interface{}, error) {
		// Re-check after acquiring the flight: a waiter that queued behind a completed
		// discovery must not trigger another one
		s.mu.RLock()
		if s.discovered != nil && s.now().Sub(s.discoveredAt) < ttlDiscovery {
			d := s.discovered
			s.mu.RUnlock()
			return d, nil
		}
		s.mu.RUnlock()

		found, ok := s.runDiscovery(ctx)
		if !ok {
			return map[int]discoveredTeam(nil), nil
		}
		s.mu.Lock()
		s.discovered = found
		s.discoveredAt = s.now()
		s.mu.Unlock()
		return found, nil
	})
	return v.(map[int]discoveredTeam)
}

// runDiscovery performs the search fan over games and aliases, with bounded backoff retries.
// ok is false when every attempt failed outright
func (s *Service) runDiscovery(ctx context.Context) (map[int]discoveredTeam, bool) {
	attempts := len(s.retryBackoff) + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(s.retryBackoff[attempt-1]):
			case <-ctx.Done():
				return nil, false
			}
		}

		found := make(map[int]discoveredTeam)
		failed := false
		for _, game := range shared.APIGames {
			for _, alias := range s.cfg.OrgAliases {
				teams, err := s.sports.SearchTeams(ctx, game, alias)
				if err != nil {
					s.logger.Warn().Err(err).Str("game", string(game)).Str("alias", alias).
						Int("attempt", attempt+1).Msg("team discovery search failed")
					failed = true
					continue
				}
				for _, t := range teams {
					if !aliasMatch(t.Name, t.Acronym, s.cfg.OrgAliases) {
						continue
					}
					if _, seen := found[t.ID]; !seen {
						found[t.ID] = discoveredTeam{game: game, team: t}
					}
				}
			}
		}
		if !failed || len(found) > 0 {
			s.logger.Info().Int("teams", len(found)).Msg("team identity discovery complete")
			return found, true
		}
	}
	s.logger.Error().Msg("team identity discovery exhausted retries, continuing with empty id set")
	return nil, false
}

// aliasMatch accepts a team whose acronym equals an alias, whose name overlaps an alias as a
// substring, or whose acronym is within one edit of an alias (absorbs punctuation variants)
func aliasMatch(name, acronym string, aliases []string) bool {
	acr := strings.ToLower(strings.TrimSpace(acronym))
	for _, alias := range aliases {
		if strings.EqualFold(acronym, alias) || shared.NamesOverlap(name, alias) {
			return true
		}
		if acr != "" && fuzzy.LevenshteinDistance(acr, strings.ToLower(alias)) <= 1 {
			return true
		}
	}
	return false
}

// gameIDs returns the discovered team ids for one title
func (s *Service) gameIDs(discovered map[int]discoveredTeam, game shared.Game) []int {
	var ids []int
	for id, d := range discovered {
		if d.game == game {
			ids = append(ids, id)
		}
	}
	return ids
}

// idSet flattens the discovery map into a membership set for orientation checks
func idSet(discovered map[int]discoveredTeam) map[int]bool {
	set := make(map[int]bool, len(discovered))
	for id := range discovered {
		set[id] = true
	}
	return set
}

// orgSide reports whether a match side belongs to the organisation: id set membership for
// structured API teams, alias substring matching for sources without reliable ids
func orgSide(teamID int, name string, ids map[int]bool, aliases []string) bool {
	if ids[teamID] {
		return true
	}
	for _, alias := range aliases {
		if shared.NamesOverlap(name, alias) {
			return true
		}
	}
	return false
}
