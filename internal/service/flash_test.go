package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyemovie/skyemovie/internal/domain/model"
	"github.com/skyemovie/skyemovie/internal/mocks"
)

func TestFlashSetAndConsume(t *testing.T) {
	svc := NewFlashService(FlashServiceOptions{Cache: mocks.NewMemoryCache(), TTL: 4 * time.Second})
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "sess-1", model.NoticeSuccess, "Added to favorites."))

	notice, ok := svc.Peek(ctx, "sess-1")
	require.True(t, ok)
	assert.Equal(t, model.NoticeSuccess, notice.Level)
	assert.Equal(t, "Added to favorites.", notice.Message)

	notice, ok = svc.Consume(ctx, "sess-1")
	require.True(t, ok)
	assert.Equal(t, "Added to favorites.", notice.Message)

	_, ok = svc.Peek(ctx, "sess-1")
	assert.False(t, ok, "consume should clear the notice")
}

func TestFlashNewNoticeReplacesOld(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	svc := NewFlashService(FlashServiceOptions{
		Cache: mocks.NewMemoryCache(),
		TTL:   4 * time.Second,
		Time:  func() time.Time { return clock },
	})
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "sess-1", model.NoticeInfo, "first"))

	clock = clock.Add(3 * time.Second)
	require.NoError(t, svc.Set(ctx, "sess-1", model.NoticeError, "second"))

	// The first notice would have expired at t+4s; the second restarts
	// the window and is still visible at t+6s.
	clock = clock.Add(3 * time.Second)
	notice, ok := svc.Peek(ctx, "sess-1")
	require.True(t, ok)
	assert.Equal(t, "second", notice.Message)
	assert.Equal(t, model.NoticeError, notice.Level)
}

func TestFlashExpiresAfterDeadline(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	svc := NewFlashService(FlashServiceOptions{
		Cache: mocks.NewMemoryCache(),
		TTL:   4 * time.Second,
		Time:  func() time.Time { return clock },
	})
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "sess-1", model.NoticeInfo, "hello"))

	clock = clock.Add(5 * time.Second)
	_, ok := svc.Peek(ctx, "sess-1")
	assert.False(t, ok, "notice should expire even if never shown")
}

func TestFlashEmptyInputsAreNoOps(t *testing.T) {
	svc := NewFlashService(FlashServiceOptions{Cache: mocks.NewMemoryCache()})
	ctx := context.Background()

	assert.NoError(t, svc.Set(ctx, "", model.NoticeInfo, "msg"))
	assert.NoError(t, svc.Set(ctx, "sess-1", model.NoticeInfo, ""))

	_, ok := svc.Peek(ctx, "")
	assert.False(t, ok)
	_, ok = svc.Consume(ctx, "sess-1")
	assert.False(t, ok)
}
