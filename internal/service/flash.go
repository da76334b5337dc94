package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/skyemovie/skyemovie/internal/domain/model"
	"github.com/skyemovie/skyemovie/internal/ports"
)

const flashKeyPrefix = "notice:"

// FlashServiceOptions groups dependencies for FlashService.
type FlashServiceOptions struct {
	Cache ports.CacheRepository
	// TTL is the notice display window; a notice set now expires at
	// now+TTL even if never shown.
	TTL time.Duration
	// Time reports the current time; defaults to time.Now.
	Time func() time.Time
}

// FlashService keeps at most one transient notice per session. Setting
// a new notice replaces the previous one and restarts the display
// window.
type FlashService struct {
	cache ports.CacheRepository
	ttl   time.Duration
	now   func() time.Time
}

// NewFlashService constructs a new FlashService.
func NewFlashService(opts FlashServiceOptions) *FlashService {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 4 * time.Second
	}
	now := opts.Time
	if now == nil {
		now = time.Now
	}
	return &FlashService{
		cache: opts.Cache,
		ttl:   ttl,
		now:   now,
	}
}

// Set stores a notice for sessionID, replacing any existing one.
func (s *FlashService) Set(ctx context.Context, sessionID string, level model.NoticeLevel, message string) error {
	if sessionID == "" || message == "" {
		return nil
	}

	notice := model.Notice{
		Level:    level,
		Message:  message,
		Deadline: s.now().Add(s.ttl),
	}
	raw, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("marshal notice: %w", err)
	}
	return s.cache.Set(ctx, flashKeyPrefix+sessionID, raw, s.ttl)
}

// Peek returns the current notice without consuming it, or ok=false
// when none is pending or the pending one has expired.
func (s *FlashService) Peek(ctx context.Context, sessionID string) (model.Notice, bool) {
	if sessionID == "" {
		return model.Notice{}, false
	}

	raw, err := s.cache.Get(ctx, flashKeyPrefix+sessionID)
	if err != nil || raw == nil {
		return model.Notice{}, false
	}

	var notice model.Notice
	if unmarshalErr := json.Unmarshal(raw, &notice); unmarshalErr != nil {
		return model.Notice{}, false
	}
	// The cache TTL usually evicts first; the deadline check covers a
	// skewed or injected clock.
	if notice.Expired(s.now()) {
		return model.Notice{}, false
	}
	return notice, true
}

// Consume returns and clears the current notice.
func (s *FlashService) Consume(ctx context.Context, sessionID string) (model.Notice, bool) {
	notice, ok := s.Peek(ctx, sessionID)
	if !ok {
		return model.Notice{}, false
	}
	_ = s.cache.Delete(ctx, flashKeyPrefix+sessionID)
	return notice, true
}
