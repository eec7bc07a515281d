/* scraper.go
 * The Scraper ties the wiki fetch layer to the page parsers. Every method degrades to an
 * empty result on fetch or parse failure; absence of wiki data is normal and callers treat
 * it as such
 */

package scraper

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"koi-tracker/api/external"
	"koi-tracker/api/shared"
)

type Scraper struct {
	wiki     *external.WikiClient
	keywords []string
	regions  []string
	logger   zerolog.Logger
	now      func() time.Time
}

func New(wiki *external.WikiClient, keywords, regions []string, logger zerolog.Logger) *Scraper {
	return &Scraper{
		wiki:     wiki,
		keywords: keywords,
		regions:  regions,
		logger:   logger,
		now:      time.Now,
	}
}

// TeamResults parses a team achievements page into finished tournaments, one per event,
// grouped from the per-player placement rows
func (s *Scraper) TeamResults(ctx context.Context, pageSlug string, game shared.Game, teamID string) []shared.Tournament {
	html, ok := s.wiki.PageHTML(ctx, pageSlug, external.TTLResultsPage)
	if !ok {
		return nil
	}
	rows := parseResultsRows(html)
	if len(rows) == 0 {
		s.logger.Debug().Str("page", pageSlug).Msg("no achievement rows found")
		return nil
	}
	return groupResults(rows, game, teamID)
}

// UpcomingEvents parses a season/circuit schedule page into upcoming tournaments for the
// allowed regions
func (s *Scraper) UpcomingEvents(ctx context.Context, pageSlug string, game shared.Game, teamID string) []shared.Tournament {
	html, ok := s.wiki.PageHTML(ctx, pageSlug, external.TTLUpcomingPage)
	if !ok {
		return nil
	}
	now := s.now()
	events := parseSeasonEvents(html, now, s.keywords, s.regions)
	tournaments := make([]shared.Tournament, 0, len(events))
	for _, ev := range events {
		tournaments = append(tournaments, seasonEventTournament(ev, game, teamID, now))
	}
	return tournaments
}

// MatchMaps cross references one match on a tournament page by its two team names and parses
// per-map detail out of it. Scores come back in the caller's home/away orientation: a match
// found with swapped teams has its map scores and winner tags flipped before returning
func (s *Scraper) MatchMaps(ctx context.Context, pageSlug, homeName, awayName string) []MapResult {
	html, ok := s.wiki.PageHTML(ctx, pageSlug, external.TTLMatchDetail)
	if !ok {
		return nil
	}

	bundle := pageMatches(html)
	if len(bundle) == 0 {
		// Dedicated match pages carry one match without popup wrappers; nothing to cross
		// reference against, the page is the match
		return parseMapResults(html)
	}
	candidate, flipped, ok := crossReference(bundle, homeName, awayName, s.logger)
	if !ok {
		return nil
	}

	maps := parseMapResults(candidate.HTML)
	if flipped {
		maps = flipMapResults(maps)
	}
	return maps
}
