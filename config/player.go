package config

// PlayerConfig contains external player URL bases.
// Env vars use the PLAYER_ prefix (see AppConfig).
type PlayerConfig struct {
	// MovieBaseURL is the base URL for movie playback pages.
	MovieBaseURL string `env:"MOVIE_BASE_URL" envDefault:"https://player.mappletv.uk/watch/movie"`

	// TVBaseURL is the base URL for TV episode playback pages.
	TVBaseURL string `env:"TV_BASE_URL" envDefault:"https://player.mappletv.uk/watch/tv"`
}

// Sanitize applies guardrails to player configuration values.
func (p *PlayerConfig) Sanitize() {
	if p.MovieBaseURL == "" {
		p.MovieBaseURL = "https://player.mappletv.uk/watch/movie"
	}
	if p.TVBaseURL == "" {
		p.TVBaseURL = "https://player.mappletv.uk/watch/tv"
	}
}
