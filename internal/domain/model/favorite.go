package model

import "time"

// Favorite is a saved catalog entry belonging to one user.
type Favorite struct {
	ID        int64     `json:"id" db:"id"`
	UserUID   string    `json:"user_uid" db:"user_uid"`
	TMDBID    int64     `json:"tmdb_id" db:"tmdb_id"`
	MediaType MediaType `json:"media_type" db:"media_type"`
	Title     string    `json:"title" db:"title"`
	PosterURL string    `json:"poster_url" db:"poster_url"`
	AddedAt   time.Time `json:"added_at" db:"added_at"`
}

// NewFavoriteParams carries the fields needed to save a favorite.
type NewFavoriteParams struct {
	UserUID   string
	TMDBID    int64
	MediaType MediaType
	Title     string
	PosterURL string
}
