/* wiki.go
 * Fetches rendered wiki pages through the MediaWiki parse API. Every call goes through the
 * per-host rate limit gate; a 429 triggers a single fixed-delay retry; any other failure
 * degrades to a caller visible "no data" so the scraper boundary never throws
 */

package external

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"koi-tracker/api/cache"
	"koi-tracker/api/ratelimit"
	"koi-tracker/metrics"
)

const (
	wikiTimeout    = 15 * time.Second
	wikiHostClass  = "liquipedia"
	wikiUserAgent  = "KoiTrackerFetcher/1.0 (fan app; noncommercial)"
	wikiRetryDelay = 3 * time.Second
)

// Cache tiers per page class. Finished match detail is immutable so it keeps the longest TTL;
// upcoming event pages keep the shortest because TBD-to-confirmed transitions must surface
const (
	TTLResultsPage  = 4 * time.Hour
	TTLMatchDetail  = 24 * time.Hour
	TTLSeasonPage   = 6 * time.Hour
	TTLUpcomingPage = 2 * time.Hour
)

type parseEnvelope struct {
	Parse struct {
		Title string `json:"title"`
		Text  struct {
			HTML string `json:"*"`
		} `json:"text"`
	} `json:"parse"`
}

// WikiClient fetches and caches rendered page HTML
type WikiClient struct {
	baseURL    string
	client     *http.Client
	gate       *ratelimit.Gate
	cache      *cache.Cache
	retryDelay time.Duration
	logger     zerolog.Logger
}

func NewWikiClient(baseURL string, gate *ratelimit.Gate, c *cache.Cache, logger zerolog.Logger) *WikiClient {
	return &WikiClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		client:     &http.Client{Timeout: wikiTimeout},
		gate:       gate,
		cache:      c,
		retryDelay: wikiRetryDelay,
		logger:     logger,
	}
}

// PageHTML returns the rendered HTML of a page, cached for ttl. The slug's first path
// segment selects the wiki, the remainder is the page title, e.g.
// "callofduty/Call_of_Duty_League/2026". ok is false on any failure; callers must treat
// absence as normal and degrade
func (w *WikiClient) PageHTML(ctx context.Context, slug string, ttl time.Duration) (string, bool) {
	key := "wiki:" + slug
	if v, ok := w.cache.Get(key, ttl); ok {
		return v.(string), true
	}

	html, ok := w.fetch(ctx, slug)
	if !ok {
		return "", false
	}
	w.cache.Set(key, html)
	return html, true
}

func (w *WikiClient) fetch(ctx context.Context, slug string) (string, bool) {
	wiki, page, ok := strings.Cut(slug, "/")
	if !ok || page == "" {
		w.logger.Warn().Str("slug", slug).Msg("malformed wiki page slug")
		return "", false
	}

	endpoint := fmt.Sprintf("%s/%s/api.php?action=parse&format=json&prop=text&page=%s",
		w.baseURL, wiki, url.QueryEscape(page))

	body, status, err := w.get(ctx, endpoint)
	if err != nil {
		w.logger.Warn().Err(err).Str("slug", slug).Msg("wiki fetch failed")
		metrics.SourceFetches.WithLabelValues("wiki", "error").Inc()
		return "", false
	}
	// Rate limited: wait the fixed delay and retry exactly once
	if status == http.StatusTooManyRequests {
		w.logger.Info().Str("slug", slug).Dur("delay", w.retryDelay).Msg("wiki rate limited, retrying once")
		select {
		case <-time.After(w.retryDelay):
		case <-ctx.Done():
			return "", false
		}
		body, status, err = w.get(ctx, endpoint)
		if err != nil {
			metrics.SourceFetches.WithLabelValues("wiki", "error").Inc()
			return "", false
		}
	}
	if status != http.StatusOK {
		w.logger.Warn().Int("status", status).Str("slug", slug).Msg("wiki fetch returned non-200")
		metrics.SourceFetches.WithLabelValues("wiki", "error").Inc()
		return "", false
	}

	var envelope parseEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		w.logger.Warn().Err(err).Str("slug", slug).Msg("wiki parse envelope malformed")
		metrics.SourceFetches.WithLabelValues("wiki", "error").Inc()
		return "", false
	}
	if envelope.Parse.Text.HTML == "" {
		metrics.SourceFetches.WithLabelValues("wiki", "empty").Inc()
		return "", false
	}

	metrics.SourceFetches.WithLabelValues("wiki", "ok").Inc()
	return envelope.Parse.Text.HTML, true
}

// get performs one rate limited GET and returns body and status. The gzip path exists because
// the wiki only honours compressed responses for identified clients
func (w *WikiClient) get(ctx context.Context, endpoint string) ([]byte, int, error) {
	if err := w.gate.Wait(ctx, wikiHostClass); err != nil {
		return nil, 0, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	request.Header.Set("User-Agent", wikiUserAgent)
	request.Header.Set("Accept-Encoding", "gzip")

	response, err := w.client.Do(request)
	if err != nil {
		return nil, 0, err
	}
	defer response.Body.Close()

	var reader io.Reader = response.Body
	if response.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(response.Body)
		if err != nil {
			return nil, response.StatusCode, err
		}
		defer gz.Close()
		reader = gz
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, response.StatusCode, err
	}
	return body, response.StatusCode, nil
}
