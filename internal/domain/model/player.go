package model

// PlaybackRequest identifies a title to play. Season and Episode only
// apply to TV shows; zero values mean "use the defaults".
type PlaybackRequest struct {
	MediaType MediaType
	TMDBID    int64
	Season    int
	Episode   int
}

// Playback is a resolved, ready-to-embed player target.
type Playback struct {
	MediaType MediaType `json:"media_type"`
	TMDBID    int64     `json:"tmdb_id"`
	Season    int       `json:"season,omitempty"`
	Episode   int       `json:"episode,omitempty"`
	EmbedURL  string    `json:"embed_url"`
}
