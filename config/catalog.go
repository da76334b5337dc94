package config

import "time"

// CatalogConfig contains TMDB metadata provider configuration.
// Env vars use the TMDB_ prefix (see AppConfig).
type CatalogConfig struct {
	// APIKey is the TMDB v3 API key. When empty the app starts in a
	// degraded mode: pages render but catalog fetches fail with a
	// visible error.
	APIKey string `env:"API_KEY"`

	// BaseURL is the TMDB API base URL.
	BaseURL string `env:"BASE_URL" envDefault:"https://api.themoviedb.org/3"`

	// ImageBaseURL is the poster image base URL (w500 size).
	ImageBaseURL string `env:"IMAGE_BASE_URL" envDefault:"https://image.tmdb.org/t/p/w500"`

	// Language is the language passed to discover requests.
	Language string `env:"LANGUAGE" envDefault:"en-US"`

	// Timeout bounds a single TMDB HTTP request.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`

	// DiscoverCacheTTL is how long the combined discover page is cached
	// in Redis before TMDB is queried again.
	DiscoverCacheTTL time.Duration `env:"DISCOVER_CACHE_TTL" envDefault:"5m"`
}

// Sanitize applies guardrails to catalog configuration values.
func (c *CatalogConfig) Sanitize() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.themoviedb.org/3"
	}
	if c.ImageBaseURL == "" {
		c.ImageBaseURL = "https://image.tmdb.org/t/p/w500"
	}
	if c.Language == "" {
		c.Language = "en-US"
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.DiscoverCacheTTL < 0 {
		c.DiscoverCacheTTL = 0
	}
}
