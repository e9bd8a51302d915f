package tvdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/kasuboski/showmatcher/pkg/episode"
	mhttp "github.com/kasuboski/showmatcher/pkg/http"
	"github.com/kasuboski/showmatcher/pkg/logger"
	"github.com/kasuboski/showmatcher/pkg/lookup"
)

const (
	DefaultURI = "https://api4.thetvdb.com"

	// upper bound on episode pages fetched for a single series
	maxPages = 100
)

var (
	_ lookup.Lookup = (*Client)(nil)

	ErrMissingAPIKey = errors.New("tvdb api key is required")
)

// Client lists series episodes from TheTVDB v4 API. Aired order is used, which
// is where year numbered seasons of long running shows come from.
type Client struct {
	baseURL *url.URL
	apiKey  string
	pin     string
	http    mhttp.HTTPClient

	mu    sync.Mutex
	token string
}

type Option func(*Client)

// WithHTTPClient sets the client used for requests, typically a rate limited one
func WithHTTPClient(c mhttp.HTTPClient) Option {
	return func(tc *Client) {
		tc.http = c
	}
}

// WithPIN sets the subscriber pin sent on login for user supported keys
func WithPIN(pin string) Option {
	return func(tc *Client) {
		tc.pin = pin
	}
}

func New(uri, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if uri == "" {
		uri = DefaultURI
	}

	u, err := url.Parse(strings.TrimSuffix(uri, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid tvdb uri: %w", err)
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

type loginRequest struct {
	APIKey string `json:"apikey"`
	PIN    string `json:"pin,omitempty"`
}

type loginResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

type searchResponse struct {
	Data []struct {
		TVDBID string `json:"tvdb_id"`
		Name   string `json:"name"`
	} `json:"data"`
}

type episodesResponse struct {
	Data struct {
		Episodes []struct {
			SeasonNumber int    `json:"seasonNumber"`
			Number       int    `json:"number"`
			Name         string `json:"name"`
		} `json:"episodes"`
	} `json:"data"`
	Links struct {
		Next *string `json:"next"`
	} `json:"links"`
}

// ListEpisodes logs in if needed, resolves the series id by name when it isn't given and pages through its episodes
func (c *Client) ListEpisodes(ctx context.Context, series lookup.Series) ([]episode.Candidate, error) {
	log := logger.FromCtx(ctx).With("provider", "tvdb", "series", series.Name)

	id := series.ID
	if id == 0 {
		var err error
		id, err = c.searchSeries(ctx, series.Name)
		if err != nil {
			return nil, lookup.Unavailable(series, err)
		}
	}

	var candidates []episode.Candidate
	for page := 0; page < maxPages; page++ {
		var res episodesResponse
		path := fmt.Sprintf("/v4/series/%d/episodes/default", id)
		if err := c.get(ctx, path, url.Values{"page": {strconv.Itoa(page)}}, &res); err != nil {
			return nil, lookup.Unavailable(series, err)
		}

		for _, e := range res.Data.Episodes {
			candidates = append(candidates, episode.Candidate{
				Season:  e.SeasonNumber,
				Episode: e.Number,
				Title:   e.Name,
			})
		}

		if res.Links.Next == nil || *res.Links.Next == "" {
			break
		}
	}

	log.Debugw("listed episodes", "tvdb_id", id, "count", len(candidates))
	return candidates, nil
}

func (c *Client) searchSeries(ctx context.Context, name string) (int, error) {
	var res searchResponse
	if err := c.get(ctx, "/v4/search", url.Values{"query": {name}, "type": {"series"}}, &res); err != nil {
		return 0, err
	}

	if len(res.Data) == 0 {
		return 0, lookup.ErrSeriesNotFound
	}

	pick := res.Data[0]
	for _, d := range res.Data {
		if strings.EqualFold(d.Name, name) {
			pick = d
			break
		}
	}

	id, err := strconv.Atoi(pick.TVDBID)
	if err != nil {
		return 0, fmt.Errorf("unexpected tvdb id %q: %w", pick.TVDBID, err)
	}

	return id, nil
}

func (c *Client) login(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" {
		return c.token, nil
	}

	body, err := json.Marshal(loginRequest{APIKey: c.apiKey, PIN: c.pin})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL.JoinPath("/v4/login").String(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var res loginResponse
	if err := c.do(req, &res); err != nil {
		return "", fmt.Errorf("failed to login: %w", err)
	}
	if res.Data.Token == "" {
		return "", errors.New("login returned no token")
	}

	c.token = res.Data.Token
	return c.token, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	token, err := c.login(ctx)
	if err != nil {
		return err
	}

	u := c.baseURL.JoinPath(path)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	err = c.do(req, out)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Code == http.StatusUnauthorized {
		// tokens last a month, drop it so the next call logs in again
		c.mu.Lock()
		c.token = ""
		c.mu.Unlock()
	}

	return err
}

// StatusError is returned for any non 200 response
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.Code, e.Body)
}

func (c *Client) do(req *http.Request, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		if res != nil {
			res.Body.Close()
		}
		return fmt.Errorf("failed to request %s: %w", req.URL.Path, err)
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return &StatusError{Code: res.StatusCode, Body: string(b)}
	}

	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
