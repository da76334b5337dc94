// Package tmdb implements the catalog client against The Movie Database
// (TMDB) REST API.
//
// Rate limit: TMDB allows 50 requests/second on free tier. This
// implementation does not rate-limit — callers cache discover pages
// instead of calling in tight loops.
package tmdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/skyemovie/skyemovie/config"
	"github.com/skyemovie/skyemovie/internal/domain/model"
	apperrors "github.com/skyemovie/skyemovie/internal/errors"
	"github.com/skyemovie/skyemovie/internal/observability/metrics"
	"github.com/skyemovie/skyemovie/internal/ports"
)

// result is the raw shape TMDB returns for both movies and TV shows.
// Movies carry title/release_date, shows carry name/first_air_date.
type result struct {
	ID           int64   `json:"id"`
	MediaType    string  `json:"media_type"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
}

type resultPage struct {
	Results []result `json:"results"`
}

// Client is a TMDB API client implementing ports.CatalogClient.
type Client struct {
	apiKey       string
	baseURL      string
	imageBaseURL string
	language     string
	httpClient   *http.Client
}

// NewClient creates a TMDB client from catalog configuration. An empty
// API key is allowed: the app starts, and every fetch reports a clear
// configuration error instead.
func NewClient(cfg config.CatalogConfig) *Client {
	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		imageBaseURL: strings.TrimSuffix(cfg.ImageBaseURL, "/"),
		language:     cfg.Language,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// DiscoverMovies fetches the first page of popular movies.
func (c *Client) DiscoverMovies(ctx context.Context) ([]model.ContentItem, error) {
	var page resultPage
	if err := c.get(ctx, "/discover/movie?"+c.discoverQuery().Encode(), &page); err != nil {
		return nil, err
	}
	return c.normalize(page.Results, model.MediaTypeMovie), nil
}

// DiscoverTV fetches the first page of popular TV shows.
func (c *Client) DiscoverTV(ctx context.Context) ([]model.ContentItem, error) {
	var page resultPage
	if err := c.get(ctx, "/discover/tv?"+c.discoverQuery().Encode(), &page); err != nil {
		return nil, err
	}
	return c.normalize(page.Results, model.MediaTypeTV), nil
}

// SearchMulti searches movies and TV shows in one request. Results that
// are neither (TMDB also returns people) are dropped.
func (c *Client) SearchMulti(ctx context.Context, query string) ([]model.ContentItem, error) {
	q := c.baseQuery()
	q.Set("query", query)

	var page resultPage
	if err := c.get(ctx, "/search/multi?"+q.Encode(), &page); err != nil {
		return nil, err
	}

	items := make([]model.ContentItem, 0, len(page.Results))
	for _, r := range page.Results {
		switch r.MediaType {
		case "movie":
			items = append(items, c.item(r, model.MediaTypeMovie))
		case "tv":
			items = append(items, c.item(r, model.MediaTypeTV))
		}
	}
	return items, nil
}

func (c *Client) baseQuery() url.Values {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	if c.language != "" {
		q.Set("language", c.language)
	}
	return q
}

func (c *Client) discoverQuery() url.Values {
	q := c.baseQuery()
	q.Set("sort_by", "popularity.desc")
	q.Set("page", "1")
	return q
}

// normalize tags every raw result with mediaType. Discover endpoints
// never mix types, so the tag comes from the endpoint, not the payload.
func (c *Client) normalize(results []result, mediaType model.MediaType) []model.ContentItem {
	items := make([]model.ContentItem, 0, len(results))
	for _, r := range results {
		items = append(items, c.item(r, mediaType))
	}
	return items
}

func (c *Client) item(r result, mediaType model.MediaType) model.ContentItem {
	title := r.Title
	date := r.ReleaseDate
	if mediaType == model.MediaTypeTV {
		title = r.Name
		date = r.FirstAirDate
	}

	poster := model.PlaceholderPosterURL
	if r.PosterPath != "" {
		poster = c.imageBaseURL + r.PosterPath
	}

	year := ""
	if len(date) >= 4 {
		year = date[:4]
	}

	return model.ContentItem{
		TMDBID:    r.ID,
		MediaType: mediaType,
		Title:     title,
		Overview:  r.Overview,
		PosterURL: poster,
		Year:      year,
		Rating:    r.VoteAverage,
	}
}

// get performs a GET request to the TMDB API and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, dst interface{}) error {
	endpoint := pathOnly(path)
	if c.apiKey == "" {
		metrics.CatalogFetches.WithLabelValues(endpoint, "config_error").Inc()
		return apperrors.Config("tmdb: API key is not set")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeFetch, "tmdb: build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.CatalogFetches.WithLabelValues(endpoint, "error").Inc()
		return apperrors.Wrap(err, apperrors.ErrCodeFetch, "tmdb: request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		metrics.CatalogFetches.WithLabelValues(endpoint, "unauthorized").Inc()
		return apperrors.Fetch("tmdb: invalid API key")
	case resp.StatusCode == http.StatusTooManyRequests:
		metrics.CatalogFetches.WithLabelValues(endpoint, "rate_limited").Inc()
		return apperrors.Fetch("tmdb: rate limited")
	case resp.StatusCode != http.StatusOK:
		metrics.CatalogFetches.WithLabelValues(endpoint, "error").Inc()
		return apperrors.Fetchf("tmdb: HTTP %d for %s", resp.StatusCode, endpoint)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		metrics.CatalogFetches.WithLabelValues(endpoint, "error").Inc()
		return apperrors.Wrap(err, apperrors.ErrCodeFetch, "tmdb: decode response")
	}
	metrics.CatalogFetches.WithLabelValues(endpoint, "ok").Inc()
	return nil
}

// pathOnly strips the query string so error messages never leak the API key.
func pathOnly(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

var _ ports.CatalogClient = (*Client)(nil)
