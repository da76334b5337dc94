// Package model contains the core domain types shared across services,
// adapters, and the HTTP layer.
package model

// MediaType distinguishes movies from TV shows. It is set exactly once,
// when upstream metadata is normalized at the API boundary, and carried
// unchanged everywhere else.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// Valid reports whether t is one of the two supported media types.
func (t MediaType) Valid() bool {
	return t == MediaTypeMovie || t == MediaTypeTV
}

// PlaceholderPosterURL is shown when upstream metadata has no poster.
const PlaceholderPosterURL = "https://placehold.co/500x750/E0F7FA/70B8D8?text=No+Image"

// ContentItem is a normalized movie or TV entry as shown in the catalog.
type ContentItem struct {
	TMDBID    int64     `json:"tmdb_id"`
	MediaType MediaType `json:"media_type"`
	Title     string    `json:"title"`
	Overview  string    `json:"overview,omitempty"`
	PosterURL string    `json:"poster_url"`
	Year      string    `json:"year,omitempty"`
	Rating    float64   `json:"rating,omitempty"`
}

// DiscoverPage holds the landing catalog: popular movies and TV shows
// fetched side by side.
type DiscoverPage struct {
	Movies []ContentItem `json:"movies"`
	Shows  []ContentItem `json:"shows"`
}

// SearchResult holds the outcome of a multi search together with the
// request generation that produced it. Callers compare Generation
// against their latest issued value and discard stale results.
type SearchResult struct {
	Query      string        `json:"query"`
	Generation uint64        `json:"generation"`
	Items      []ContentItem `json:"items"`
}
