package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	tmdbBaseURL       = "https://api.themoviedb.org/3"
	tmdbPosterBaseURL = "https://image.tmdb.org/t/p/w500"
)

// TMDBClient implements Client against The Movie Database search API.
type TMDBClient struct {
	apiKey     string
	baseURL    string
	posterBase string
	httpClient *http.Client
}

// NewTMDBClient creates a TMDB-backed metadata client. Returns nil if the
// API key is empty so callers can treat the service as unconfigured.
func NewTMDBClient(apiKey string) *TMDBClient {
	if apiKey == "" {
		return nil
	}
	return &TMDBClient{
		apiKey:     apiKey,
		baseURL:    tmdbBaseURL,
		posterBase: tmdbPosterBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// tmdbSearchResponse mirrors the subset of the TMDB search payload we use.
type tmdbSearchResponse struct {
	Results []struct {
		Title       string  `json:"title"`
		PosterPath  string  `json:"poster_path"`
		VoteAverage float64 `json:"vote_average"`
		Overview    string  `json:"overview"`
	} `json:"results"`
}

// Lookup performs a best-effort free-text search and takes the first
// result as canonical.
func (c *TMDBClient) Lookup(ctx context.Context, title, year string) (*MovieInfo, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", title)
	params.Set("include_adult", "false")
	if year != "" {
		params.Set("year", year)
	}

	reqURL := fmt.Sprintf("%s/search/movie?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrLookupFailed, resp.StatusCode)
	}

	var payload tmdbSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	if len(payload.Results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, title)
	}

	first := payload.Results[0]
	info := &MovieInfo{
		Title:    first.Title,
		Rating:   first.VoteAverage,
		Overview: first.Overview,
	}
	if first.PosterPath != "" {
		info.PosterURL = c.posterBase + first.PosterPath
	}
	return info, nil
}
