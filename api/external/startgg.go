/* startgg.go
 * Typed GraphQL client for the individual-competitor tournament API. A single Query method
 * posts to one endpoint with bearer auth; a populated errors array raises a typed error
 * surfacing the first message
 */

package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"koi-tracker/metrics"
)

const startggTimeout = 15 * time.Second

// GraphQLError is the typed failure for GraphQL calls
type GraphQLError struct {
	Message string
	Status  int
}

func (e *GraphQLError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("startgg: %s", e.Message)
	}
	return fmt.Sprintf("startgg: status %d", e.Status)
}

type GGClient struct {
	token    string
	endpoint string
	client   *http.Client
	logger   zerolog.Logger
}

func NewGGClient(token, endpoint string, logger zerolog.Logger) *GGClient {
	return &GGClient{
		token:    token,
		endpoint: endpoint,
		client:   &http.Client{Timeout: startggTimeout},
		logger:   logger,
	}
}

type gqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type gqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Query posts document+variables and decodes the data field into out
func (c *GGClient) Query(ctx context.Context, document string, variables map[string]interface{}, out interface{}) error {
	payload, err := json.Marshal(gqlRequest{Query: document, Variables: variables})
	if err != nil {
		return fmt.Errorf("startgg: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("startgg: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.SourceFetches.WithLabelValues("startgg", "error").Inc()
		return fmt.Errorf("startgg: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.SourceFetches.WithLabelValues("startgg", "error").Inc()
		return &GraphQLError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("startgg: reading response: %w", err)
	}

	var envelope gqlEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("startgg: decoding response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		metrics.SourceFetches.WithLabelValues("startgg", "error").Inc()
		return &GraphQLError{Message: envelope.Errors[0].Message}
	}

	metrics.SourceFetches.WithLabelValues("startgg", "ok").Inc()
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("startgg: decoding data: %w", err)
	}
	return nil
}

const tournamentsByVideogameDoc = `
query TournamentsByVideogame($videogameId: ID!, $perPage: Int!, $page: Int!, $upcoming: Boolean!) {
  tournaments(query: {
    perPage: $perPage
    page: $page
    sortBy: "startAt asc"
    filter: { videogameIds: [$videogameId], upcoming: $upcoming }
  }) {
    nodes { id name slug city startAt endAt numAttendees events { id name } }
  }
}`

// TournamentsByVideogame lists upcoming or past tournaments for one videogame id
func (c *GGClient) TournamentsByVideogame(ctx context.Context, videogameID int, upcoming bool, page int) ([]GGTournament, error) {
	var out struct {
		Tournaments struct {
			Nodes []GGTournament `json:"nodes"`
		} `json:"tournaments"`
	}
	vars := map[string]interface{}{
		"videogameId": videogameID,
		"perPage":     25,
		"page":        page,
		"upcoming":    upcoming,
	}
	if err := c.Query(ctx, tournamentsByVideogameDoc, vars, &out); err != nil {
		return nil, err
	}
	return out.Tournaments.Nodes, nil
}

const tournamentsByUserDoc = `
query TournamentsByUser($userId: ID!, $perPage: Int!) {
  user(id: $userId) {
    tournaments(query: { perPage: $perPage, sortBy: "startAt desc" }) {
      nodes { id name slug city startAt endAt numAttendees events { id name } }
    }
  }
}`

// TournamentsByUser lists the tournaments a tracked player is registered for
func (c *GGClient) TournamentsByUser(ctx context.Context, userID string) ([]GGTournament, error) {
	var out struct {
		User struct {
			Tournaments struct {
				Nodes []GGTournament `json:"nodes"`
			} `json:"tournaments"`
		} `json:"user"`
	}
	vars := map[string]interface{}{"userId": userID, "perPage": 25}
	if err := c.Query(ctx, tournamentsByUserDoc, vars, &out); err != nil {
		return nil, err
	}
	return out.User.Tournaments.Nodes, nil
}

const tournamentBySlugDoc = `
query TournamentBySlug($slug: String!) {
  tournament(slug: $slug) {
    id name slug city startAt endAt numAttendees events { id name }
  }
}`

// TournamentBySlug fetches one tournament by its page slug
func (c *GGClient) TournamentBySlug(ctx context.Context, slug string) (*GGTournament, error) {
	var out struct {
		Tournament *GGTournament `json:"tournament"`
	}
	if err := c.Query(ctx, tournamentBySlugDoc, map[string]interface{}{"slug": slug}, &out); err != nil {
		return nil, err
	}
	return out.Tournament, nil
}

const eventStandingsDoc = `
query EventStandings($eventId: ID!, $perPage: Int!) {
  event(id: $eventId) {
    standings(query: { perPage: $perPage }) {
      nodes { placement entrant { id name } }
    }
  }
}`

// EventStandings fetches placements for one event
func (c *GGClient) EventStandings(ctx context.Context, eventID int) ([]GGStandingNode, error) {
	var out struct {
		Event struct {
			Standings struct {
				Nodes []GGStandingNode `json:"nodes"`
			} `json:"standings"`
		} `json:"event"`
	}
	vars := map[string]interface{}{"eventId": eventID, "perPage": 64}
	if err := c.Query(ctx, eventStandingsDoc, vars, &out); err != nil {
		return nil, err
	}
	return out.Event.Standings.Nodes, nil
}

const eventSetsDoc = `
query EventSets($eventId: ID!, $perPage: Int!) {
  event(id: $eventId) {
    sets(perPage: $perPage, sortType: STANDARD) {
      nodes { id round displayScore winnerId }
    }
  }
}`

// EventSets fetches the played sets for one event
func (c *GGClient) EventSets(ctx context.Context, eventID int) ([]GGSetNode, error) {
	var out struct {
		Event struct {
			Sets struct {
				Nodes []GGSetNode `json:"nodes"`
			} `json:"sets"`
		} `json:"event"`
	}
	vars := map[string]interface{}{"eventId": eventID, "perPage": 50}
	if err := c.Query(ctx, eventSetsDoc, vars, &out); err != nil {
		return nil, err
	}
	return out.Event.Sets.Nodes, nil
}
