/* pandascore.go
 * Typed REST client for the structured sports API covering the lol, valorant and cod rosters.
 * Every call builds a URL with query parameters plus the auth token, issues a GET with a
 * bounded timeout and returns a typed APIError carrying the HTTP status and body on non-2xx,
 * distinguishing timeout from other transport failure
 */

package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/valyala/fasthttp"

	"koi-tracker/api/shared"
	"koi-tracker/metrics"
)

const (
	pandaTimeout = 10 * time.Second
	pandaPerPage = 50
)

// APIError is the typed failure for structured API calls
type APIError struct {
	Status  int
	Body    string
	Timeout bool
}

func (e *APIError) Error() string {
	if e.Timeout {
		return "pandascore: request timed out"
	}
	return fmt.Sprintf("pandascore: status %d: %s", e.Status, e.Body)
}

// gamePaths maps internal game enums onto the provider's videogame path segments
var gamePaths = map[shared.Game]string{
	shared.GameLoL:      "lol",
	shared.GameValorant: "valorant",
	shared.GameCoD:      "codmw",
}

type PandaClient struct {
	token   string
	baseURL string
	client  *fasthttp.Client
	cb      *gobreaker.CircuitBreaker
	logger  zerolog.Logger
}

func NewPandaClient(token, baseURL string, logger zerolog.Logger) *PandaClient {
	cbSettings := gobreaker.Settings{
		Name:        "pandascore",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn().Str("name", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}
	return &PandaClient{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &fasthttp.Client{
			MaxConnsPerHost: 32,
			ReadTimeout:     pandaTimeout,
			WriteTimeout:    pandaTimeout,
		},
		cb:     gobreaker.NewCircuitBreaker(cbSettings),
		logger: logger,
	}
}

// SearchTeams looks up teams whose name matches the query for one title
func (c *PandaClient) SearchTeams(ctx context.Context, game shared.Game, name string) ([]PandaTeam, error) {
	params := url.Values{}
	params.Set("search[name]", name)
	return doRequest[[]PandaTeam](ctx, c, fmt.Sprintf("/%s/teams", gamePaths[game]), params)
}

// GetTeam fetches a single team by numeric id
func (c *PandaClient) GetTeam(ctx context.Context, game shared.Game, id int) (*PandaTeam, error) {
	teams, err := doRequest[[]PandaTeam](ctx, c, fmt.Sprintf("/%s/teams", gamePaths[game]), idFilter(id))
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, &APIError{Status: 404, Body: fmt.Sprintf("team %d not found", id)}
	}
	return &teams[0], nil
}

// GetPlayer fetches a single player by numeric id
func (c *PandaClient) GetPlayer(ctx context.Context, id int) (*PandaPlayer, error) {
	players, err := doRequest[[]PandaPlayer](ctx, c, "/players", idFilter(id))
	if err != nil {
		return nil, err
	}
	if len(players) == 0 {
		return nil, &APIError{Status: 404, Body: fmt.Sprintf("player %d not found", id)}
	}
	return &players[0], nil
}

// MatchesByStatus fetches one page of upcoming/running/past matches for a title, filtered to
// the given opponent ids. status must be "upcoming", "running" or "past"
func (c *PandaClient) MatchesByStatus(ctx context.Context, game shared.Game, status string, opponentIDs []int, page int) ([]PandaMatch, error) {
	params := url.Values{}
	if len(opponentIDs) > 0 {
		ids := make([]string, len(opponentIDs))
		for i, id := range opponentIDs {
			ids[i] = strconv.Itoa(id)
		}
		params.Set("filter[opponent_id]", strings.Join(ids, ","))
	}
	params.Set("sort", "begin_at")
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(pandaPerPage))
	path := fmt.Sprintf("/%s/matches/%s", gamePaths[game], status)
	return doRequest[[]PandaMatch](ctx, c, path, params)
}

// MatchDetail fetches a single match with nested per game draft data. Only lol and valorant
// publish drafts; for other titles the detailed games come back empty
func (c *PandaClient) MatchDetail(ctx context.Context, game shared.Game, id int) (*PandaMatchDetail, error) {
	path := fmt.Sprintf("/%s/matches/%d", gamePaths[game], id)
	detail, err := doRequest[PandaMatchDetail](ctx, c, path, url.Values{})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// TournamentStandings fetches the standings table for a tournament. Not all tournaments
// publish standings; a 404 soft-fails to an empty list rather than an error
func (c *PandaClient) TournamentStandings(ctx context.Context, tournamentID int) ([]PandaStanding, error) {
	path := fmt.Sprintf("/tournaments/%d/standings", tournamentID)
	standings, err := doRequest[[]PandaStanding](ctx, c, path, url.Values{})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == 404 {
			return nil, nil
		}
		return nil, err
	}
	return standings, nil
}

// SeriesTournaments lists the tournaments of a series, used to find the regular season
// tournament when a match belongs to a playoff stage
func (c *PandaClient) SeriesTournaments(ctx context.Context, serieID int) ([]PandaTournament, error) {
	path := fmt.Sprintf("/series/%d/tournaments", serieID)
	return doRequest[[]PandaTournament](ctx, c, path, url.Values{})
}

func idFilter(id int) url.Values {
	params := url.Values{}
	params.Set("filter[id]", strconv.Itoa(id))
	return params
}

// doRequest performs one authenticated GET through the circuit breaker and decodes the body
// into T. Timeouts and transport errors surface as APIError with Timeout set
func doRequest[T any](ctx context.Context, c *PandaClient, path string, params url.Values) (T, error) {
	var zero T

	params.Set("token", c.token)
	uri := c.baseURL + path + "?" + params.Encode()

	body, err := c.cb.Execute(func() (interface{}, error) {
		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(uri)
		req.Header.SetMethod(fasthttp.MethodGet)
		req.Header.Set("Accept", "application/json")

		deadline := time.Now().Add(pandaTimeout)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			if errors.Is(err, fasthttp.ErrTimeout) {
				metrics.SourceFetches.WithLabelValues("pandascore", "timeout").Inc()
				return nil, &APIError{Timeout: true}
			}
			metrics.SourceFetches.WithLabelValues("pandascore", "error").Inc()
			return nil, fmt.Errorf("pandascore: %w", err)
		}
		status := resp.StatusCode()
		if status < 200 || status > 299 {
			metrics.SourceFetches.WithLabelValues("pandascore", "error").Inc()
			return nil, &APIError{Status: status, Body: string(resp.Body())}
		}
		metrics.SourceFetches.WithLabelValues("pandascore", "ok").Inc()
		out := make([]byte, len(resp.Body()))
		copy(out, resp.Body())
		return out, nil
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("pandascore request failed")
		return zero, err
	}

	var decoded T
	if err := json.Unmarshal(body.([]byte), &decoded); err != nil {
		return zero, fmt.Errorf("pandascore: decoding %s: %w", path, err)
	}
	return decoded, nil
}
