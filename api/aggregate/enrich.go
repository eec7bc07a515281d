/* enrich.go
 * Deep enrichment of built matches. Draft detail comes from the structured API for the
 * titles that publish it, fetched in parallel with per match isolation: a failed fetch
 * leaves that match's basic data intact. Per-map detail for cod comes from the wiki match
 * detail parser and is raced against a fixed timeout so one slow scrape never blocks the
 * result list
 */

package aggregate

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"koi-tracker/api/external"
	"koi-tracker/api/scraper"
	"koi-tracker/api/shared"
)

const codEnrichTimeout = 6 * time.Second

// draftGames are the titles whose matches publish pick/ban detail
var draftGames = map[shared.Game]bool{
	shared.GameLoL:      true,
	shared.GameValorant: true,
}

// enrichMatches runs the deep enrichment pass over finished matches
func (s *Service) enrichMatches(ctx context.Context, matches []shared.Match, metas []matchMeta) {
	g, gctx := errgroup.WithContext(ctx)
	for i := range matches {
		if matches[i].Status != shared.StatusFinished {
			continue
		}
		switch {
		case draftGames[matches[i].Game] && s.sports != nil:
			g.Go(func() error {
				detail, err := s.sports.MatchDetail(gctx, metas[i].game, metas[i].matchID)
				if err != nil {
					s.logger.Debug().Err(err).Str("match", matches[i].ID).Msg("draft enrichment failed")
					return nil
				}
				s.applyGameDetail(&matches[i], metas[i], detail.DetailedGames)
				return nil
			})
		case matches[i].Game == shared.GameCoD:
			g.Go(func() error {
				s.enrichCoDMaps(gctx, &matches[i])
				return nil
			})
		}
	}
	g.Wait()
}

// applyGameDetail merges detailed game payloads into the match by game position. A game
// without matching detail keeps its basic data
func (s *Service) applyGameDetail(m *shared.Match, meta matchMeta, detgames []external.PandaGameDetail) {
	byPosition := make(map[int]external.PandaGameDetail, len(detgames))
	for _, dg := range detgames {
		byPosition[dg.Position] = dg
	}

	for i := range m.Games {
		dg, ok := byPosition[m.Games[i].Number]
		if !ok {
			continue
		}
		if dg.Length > 0 {
			m.Games[i].DurationSeconds = dg.Length
		}
		if dg.Winner.ID != 0 {
			m.Games[i].WinnerID = "panda-" + strconv.Itoa(dg.Winner.ID)
		}
		if len(dg.Draft) == 0 {
			continue
		}

		draft := &shared.Draft{
			BlueTeamID: "panda-" + strconv.Itoa(dg.BlueTeamID),
			RedTeamID:  "panda-" + strconv.Itoa(dg.RedTeamID),
		}
		for _, action := range dg.Draft {
			side := "blue"
			if action.TeamID == dg.RedTeamID {
				side = "red"
			}
			draft.Actions = append(draft.Actions, shared.DraftAction{
				Type:      action.Type,
				Side:      side,
				Character: action.Character.Name,
			})
		}
		m.Games[i].Draft = draft
	}

	// Detail payloads sometimes carry games the summary omitted
	for _, dg := range detgames {
		found := false
		for i := range m.Games {
			if m.Games[i].Number == dg.Position {
				found = true
				break
			}
		}
		if !found {
			m.Games = append(m.Games, shared.MatchGame{Number: dg.Position, DurationSeconds: dg.Length})
		}
	}
}

// enrichCoDMaps pulls per-map mode/score detail from the wiki, bounded by a race against a
// fixed timeout on top of the scrape layer's own timeouts. On timeout the match keeps its
// pre-enrichment data
func (s *Service) enrichCoDMaps(ctx context.Context, m *shared.Match) {
	if s.wiki == nil {
		return
	}
	sctx, cancel := context.WithTimeout(ctx, codEnrichTimeout)
	defer cancel()

	ch := make(chan []scraper.MapResult, 1)
	go func() {
		ch <- s.wiki.MatchMaps(sctx, s.cfg.CoDSeasonPage, m.Home.Name, m.Away.Name)
	}()

	select {
	case maps := <-ch:
		applyMapResults(m, maps)
	case <-time.After(codEnrichTimeout):
		s.logger.Debug().Str("match", m.ID).Msg("map enrichment timed out, keeping basic data")
	}
}

// applyMapResults folds wiki map detail into the match games, matching by game number and
// creating games the structured source did not report
func applyMapResults(m *shared.Match, maps []scraper.MapResult) {
	for _, mr := range maps {
		var game *shared.MatchGame
		for i := range m.Games {
			if m.Games[i].Number == mr.Number {
				game = &m.Games[i]
				break
			}
		}
		if game == nil {
			m.Games = append(m.Games, shared.MatchGame{Number: mr.Number})
			game = &m.Games[len(m.Games)-1]
		}

		game.Map = mr.Map
		game.Mode = mr.Mode
		home, away := mr.Team1Score, mr.Team2Score
		game.HomeScore = &home
		game.AwayScore = &away
		switch mr.WinnerTag {
		case 1:
			game.WinnerID = m.Home.ID
		case 2:
			game.WinnerID = m.Away.ID
		}
	}
}
