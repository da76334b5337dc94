package service

import (
	"fmt"
	"strings"

	"github.com/skyemovie/skyemovie/config"
	"github.com/skyemovie/skyemovie/internal/domain/model"
	apperrors "github.com/skyemovie/skyemovie/internal/errors"
)

// PlayerService resolves playback requests to embeddable player URLs.
// It is pure: no I/O, no state.
type PlayerService struct {
	movieBase string
	tvBase    string
}

// NewPlayerService constructs a PlayerService from player configuration.
func NewPlayerService(cfg config.PlayerConfig) *PlayerService {
	return &PlayerService{
		movieBase: strings.TrimSuffix(cfg.MovieBaseURL, "/"),
		tvBase:    strings.TrimSuffix(cfg.TVBaseURL, "/"),
	}
}

// Resolve builds the embed URL for a playback request. Movies resolve
// to <base>/<id>; TV shows to <base>/<id>-<season>-<episode> with
// season and episode defaulting to 1.
func (s *PlayerService) Resolve(req model.PlaybackRequest) (model.Playback, error) {
	if req.TMDBID <= 0 {
		return model.Playback{}, apperrors.ValidationField("tmdb_id", "a positive tmdb id is required")
	}

	switch req.MediaType {
	case model.MediaTypeMovie:
		return model.Playback{
			MediaType: model.MediaTypeMovie,
			TMDBID:    req.TMDBID,
			EmbedURL:  fmt.Sprintf("%s/%d", s.movieBase, req.TMDBID),
		}, nil
	case model.MediaTypeTV:
		season := req.Season
		if season <= 0 {
			season = 1
		}
		episode := req.Episode
		if episode <= 0 {
			episode = 1
		}
		return model.Playback{
			MediaType: model.MediaTypeTV,
			TMDBID:    req.TMDBID,
			Season:    season,
			Episode:   episode,
			EmbedURL:  fmt.Sprintf("%s/%d-%d-%d", s.tvBase, req.TMDBID, season, episode),
		}, nil
	default:
		return model.Playback{}, apperrors.ValidationField("media_type", "media type must be movie or tv")
	}
}
