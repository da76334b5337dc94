package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyemovie/skyemovie/internal/domain/model"
	"github.com/skyemovie/skyemovie/internal/testutil"
)

func matrixFavorite(uid string) model.NewFavoriteParams {
	return model.NewFavoriteParams{
		UserUID:   uid,
		TMDBID:    603,
		MediaType: model.MediaTypeMovie,
		Title:     "The Matrix",
		PosterURL: "https://image.example/w500/matrix.jpg",
	}
}

func TestFavoriteRepo_AddAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewFavoriteRepo(db)
	ctx := context.Background()

	fav, created, err := repo.Add(ctx, matrixFavorite("uid-1"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, fav.ID)
	assert.Equal(t, "The Matrix", fav.Title)

	list, err := repo.ListByUser(ctx, "uid-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, fav.ID, list[0].ID)
}

func TestFavoriteRepo_AddDuplicateIsNoOp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewFavoriteRepo(db)
	ctx := context.Background()

	first, created, err := repo.Add(ctx, matrixFavorite("uid-1"))
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := repo.Add(ctx, matrixFavorite("uid-1"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID, "existing row should be returned untouched")

	list, err := repo.ListByUser(ctx, "uid-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestFavoriteRepo_SameTitleBothMediaTypes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewFavoriteRepo(db)
	ctx := context.Background()

	_, created, err := repo.Add(ctx, matrixFavorite("uid-1"))
	require.NoError(t, err)
	require.True(t, created)

	asShow := matrixFavorite("uid-1")
	asShow.MediaType = model.MediaTypeTV
	_, created, err = repo.Add(ctx, asShow)
	require.NoError(t, err)
	assert.True(t, created, "same tmdb id with different media type is a distinct favorite")
}

func TestFavoriteRepo_Remove(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewFavoriteRepo(db)
	ctx := context.Background()

	_, _, err := repo.Add(ctx, matrixFavorite("uid-1"))
	require.NoError(t, err)

	require.NoError(t, repo.Remove(ctx, "uid-1", 603, model.MediaTypeMovie))

	list, err := repo.ListByUser(ctx, "uid-1")
	require.NoError(t, err)
	assert.Empty(t, list)

	err = repo.Remove(ctx, "uid-1", 603, model.MediaTypeMovie)
	assert.ErrorIs(t, err, ErrFavoriteNotFound)
}

func TestFavoriteRepo_ListIsScopedToUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewFavoriteRepo(db)
	ctx := context.Background()

	_, _, err := repo.Add(ctx, matrixFavorite("uid-1"))
	require.NoError(t, err)
	_, _, err = repo.Add(ctx, matrixFavorite("uid-2"))
	require.NoError(t, err)

	list, err := repo.ListByUser(ctx, "uid-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "uid-1", list[0].UserUID)
}

func TestFavoriteRepo_ListOrdersNewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tp := NewFixedTimeProvider(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	repo := NewFavoriteRepoWithTimeProvider(db, tp)
	ctx := context.Background()

	older := matrixFavorite("uid-1")
	_, _, err := repo.Add(ctx, older)
	require.NoError(t, err)

	tp.AddTime(time.Hour)
	newer := matrixFavorite("uid-1")
	newer.TMDBID = 604
	newer.Title = "The Matrix Reloaded"
	_, _, err = repo.Add(ctx, newer)
	require.NoError(t, err)

	list, err := repo.ListByUser(ctx, "uid-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(604), list[0].TMDBID)
	assert.Equal(t, int64(603), list[1].TMDBID)
}

func TestFavoriteRepo_AddValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewFavoriteRepo(db)
	ctx := context.Background()

	_, _, err := repo.Add(ctx, model.NewFavoriteParams{TMDBID: 1, MediaType: model.MediaTypeMovie})
	assert.Error(t, err)

	_, _, err = repo.Add(ctx, model.NewFavoriteParams{UserUID: "u", MediaType: model.MediaTypeMovie})
	assert.Error(t, err)

	_, _, err = repo.Add(ctx, model.NewFavoriteParams{UserUID: "u", TMDBID: 1, MediaType: "person"})
	assert.Error(t, err)
}

func TestFavoriteRepo_WaitForChangeSeesAdd(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewFavoriteRepo(db)
	ctx := context.Background()

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- repo.WaitForChange(waitCtx, "uid-live")
	}()

	// Give the listener a moment to issue LISTEN.
	time.Sleep(200 * time.Millisecond)

	_, _, err := repo.Add(ctx, matrixFavorite("uid-live"))
	require.NoError(t, err)

	select {
	case err := <-waitErr:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("expected WaitForChange to return after a favorite was added")
	}
}
