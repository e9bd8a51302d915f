package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/kasuboski/showmatcher/pkg/episode"
	mhttp "github.com/kasuboski/showmatcher/pkg/http"
	"github.com/kasuboski/showmatcher/pkg/logger"
	"github.com/kasuboski/showmatcher/pkg/lookup"
)

const DefaultURI = "https://api.themoviedb.org"

var _ lookup.Lookup = (*Client)(nil)

// Client lists series episodes from The Movie Database v3 API
type Client struct {
	baseURL *url.URL
	apiKey  string
	http    mhttp.HTTPClient
}

type Option func(*Client)

// WithHTTPClient sets the client used for requests, typically a rate limited one
func WithHTTPClient(c mhttp.HTTPClient) Option {
	return func(tc *Client) {
		tc.http = c
	}
}

func New(uri, apiKey string, opts ...Option) (*Client, error) {
	if uri == "" {
		uri = DefaultURI
	}

	u, err := url.Parse(strings.TrimSuffix(uri, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid tmdb uri: %w", err)
	}

	c := &Client{
		baseURL: u,
		apiKey:  apiKey,
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// SetRequestAPIKey authorizes req with a v4 read access token
func SetRequestAPIKey(apiKey string) func(ctx context.Context, req *http.Request) error {
	return func(ctx context.Context, req *http.Request) error {
		req.Header.Add("Authorization", "Bearer "+apiKey)
		req.Header.Add("accept", "application/json")
		return nil
	}
}

type searchTVResponse struct {
	Results []struct {
		ID           int    `json:"id"`
		Name         string `json:"name"`
		OriginalName string `json:"original_name"`
	} `json:"results"`
}

type seriesDetailsResponse struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Seasons []struct {
		SeasonNumber int `json:"season_number"`
		EpisodeCount int `json:"episode_count"`
	} `json:"seasons"`
}

type seasonDetailsResponse struct {
	Episodes []struct {
		SeasonNumber  int    `json:"season_number"`
		EpisodeNumber int    `json:"episode_number"`
		Name          string `json:"name"`
	} `json:"episodes"`
}

// ListEpisodes resolves the series id by name when it isn't given, then lists every season's episodes
func (c *Client) ListEpisodes(ctx context.Context, series lookup.Series) ([]episode.Candidate, error) {
	log := logger.FromCtx(ctx).With("provider", "tmdb", "series", series.Name)

	id := series.ID
	if id == 0 {
		var err error
		id, err = c.searchSeries(ctx, series.Name)
		if err != nil {
			return nil, lookup.Unavailable(series, err)
		}
	}

	var details seriesDetailsResponse
	if err := c.get(ctx, fmt.Sprintf("/3/tv/%d", id), nil, &details); err != nil {
		return nil, lookup.Unavailable(series, err)
	}

	var candidates []episode.Candidate
	for _, s := range details.Seasons {
		if s.EpisodeCount == 0 {
			continue
		}

		var season seasonDetailsResponse
		if err := c.get(ctx, fmt.Sprintf("/3/tv/%d/season/%d", id, s.SeasonNumber), nil, &season); err != nil {
			return nil, lookup.Unavailable(series, err)
		}

		for _, e := range season.Episodes {
			candidates = append(candidates, episode.Candidate{
				Season:  e.SeasonNumber,
				Episode: e.EpisodeNumber,
				Title:   e.Name,
			})
		}
	}

	log.Debugw("listed episodes", "tmdb_id", id, "count", len(candidates))
	return candidates, nil
}

// searchSeries prefers an exact name match and otherwise takes the first result
func (c *Client) searchSeries(ctx context.Context, name string) (int, error) {
	var res searchTVResponse
	if err := c.get(ctx, "/3/search/tv", url.Values{"query": {name}}, &res); err != nil {
		return 0, err
	}

	if len(res.Results) == 0 {
		return 0, lookup.ErrSeriesNotFound
	}

	for _, r := range res.Results {
		if strings.EqualFold(r.Name, name) || strings.EqualFold(r.OriginalName, name) {
			return r.ID, nil
		}
	}

	return res.Results[0].ID, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL.JoinPath(path)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if err := SetRequestAPIKey(c.apiKey)(ctx, req); err != nil {
		return err
	}

	res, err := c.http.Do(req)
	if err != nil {
		// a rate limited client hands back the last 429 along with its error
		if res != nil {
			res.Body.Close()
		}
		return fmt.Errorf("failed to request %s: %w", path, err)
	}
	defer res.Body.Close()

	return parseResponse(res, out)
}

func parseResponse(res *http.Response, out any) error {
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code %d: %s", res.StatusCode, string(b))
	}

	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
