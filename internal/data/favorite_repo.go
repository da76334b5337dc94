package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/skyemovie/skyemovie/internal/data/pgxutil"
	"github.com/skyemovie/skyemovie/internal/domain/model"
)

const favoriteColumns = "id, user_uid, tmdb_id, media_type, title, poster_url, added_at"

// FavoriteRepo provides database operations for per-user favorites.
// Every write publishes a pg_notify on the owner's channel so live
// subscriptions can refresh.
type FavoriteRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewFavoriteRepo creates a new FavoriteRepo with real time provider.
func NewFavoriteRepo(db *sql.DB) *FavoriteRepo {
	return &FavoriteRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewFavoriteRepoWithTimeProvider creates a FavoriteRepo with a custom time provider (useful for tests).
func NewFavoriteRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *FavoriteRepo {
	return &FavoriteRepo{DB: db, timeProvider: tp}
}

// favoritesChannel names the pg_notify channel for one user's favorites.
func favoritesChannel(userUID string) string {
	return "favorites_changed_" + userUID
}

// Add inserts a favorite unless the user already saved the same title.
// The insert and the duplicate check are a single atomic statement;
// created reports whether a row was actually written. Duplicates do
// not notify.
func (r *FavoriteRepo) Add(ctx context.Context, params model.NewFavoriteParams) (model.Favorite, bool, error) {
	if params.UserUID == "" {
		return model.Favorite{}, false, errors.New("user uid is required")
	}
	if params.TMDBID == 0 {
		return model.Favorite{}, false, errors.New("tmdb id is required")
	}
	if !params.MediaType.Valid() {
		return model.Favorite{}, false, fmt.Errorf("invalid media type %q", params.MediaType)
	}

	addedAt := r.timeProvider.Now().UTC()
	var out model.Favorite
	created := false

	err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			INSERT INTO favorites (user_uid, tmdb_id, media_type, title, poster_url, added_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (user_uid, tmdb_id, media_type) DO NOTHING
			RETURNING `+favoriteColumns,
			params.UserUID,
			params.TMDBID,
			params.MediaType,
			params.Title,
			params.PosterURL,
			addedAt,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Favorite])
		if errors.Is(err, pgx.ErrNoRows) {
			// Conflict path: the favorite already exists, fetch it.
			return r.getExisting(ctx, tx, params, &out)
		}
		if err != nil {
			return err
		}

		created = true
		channel := favoritesChannel(params.UserUID)
		if _, notifyErr := tx.Exec(ctx, `SELECT pg_notify($1::text, $2::text)`, channel, "added"); notifyErr != nil {
			return fmt.Errorf("send favorite notification: %w", notifyErr)
		}
		return nil
	})
	if err != nil {
		return model.Favorite{}, false, err
	}
	return out, created, nil
}

func (r *FavoriteRepo) getExisting(ctx context.Context, tx pgx.Tx, params model.NewFavoriteParams, out *model.Favorite) error {
	rows, err := tx.Query(ctx, `
		SELECT `+favoriteColumns+`
		FROM favorites
		WHERE user_uid = $1 AND tmdb_id = $2 AND media_type = $3
	`, params.UserUID, params.TMDBID, params.MediaType)
	if err != nil {
		return err
	}
	defer rows.Close()
	existing, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Favorite])
	if err != nil {
		return err
	}
	*out = existing
	return nil
}

// Remove deletes a favorite and notifies the owner's channel.
func (r *FavoriteRepo) Remove(ctx context.Context, userUID string, tmdbID int64, mediaType model.MediaType) error {
	if userUID == "" {
		return errors.New("user uid is required")
	}

	return pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM favorites
			WHERE user_uid = $1 AND tmdb_id = $2 AND media_type = $3
		`, userUID, tmdbID, mediaType)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrFavoriteNotFound
		}

		channel := favoritesChannel(userUID)
		if _, notifyErr := tx.Exec(ctx, `SELECT pg_notify($1::text, $2::text)`, channel, "removed"); notifyErr != nil {
			return fmt.Errorf("send favorite notification: %w", notifyErr)
		}
		return nil
	})
}

// ListByUser returns all favorites for one user, newest first.
func (r *FavoriteRepo) ListByUser(ctx context.Context, userUID string) ([]model.Favorite, error) {
	if userUID == "" {
		return nil, errors.New("user uid is required")
	}

	var out []model.Favorite
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+favoriteColumns+`
			FROM favorites
			WHERE user_uid = $1
			ORDER BY added_at DESC, id DESC
		`, userUID)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Favorite])
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WaitForChange blocks until a pg_notify arrives on userUID's favorites
// channel, or ctx is done. It dedicates a pooled connection for the
// duration of the wait.
func (r *FavoriteRepo) WaitForChange(ctx context.Context, userUID string) error {
	conn, err := r.DB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get conn from pool: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			_ = cerr
		}
	}()

	channel := favoritesChannel(userUID)
	quoted := pgx.Identifier{channel}.Sanitize()

	if _, execErr := conn.ExecContext(ctx, "LISTEN "+quoted); execErr != nil {
		return fmt.Errorf("listen %s: %w", channel, execErr)
	}
	defer func() {
		if _, execErr := conn.ExecContext(context.Background(), "UNLISTEN "+quoted); execErr != nil {
			_ = execErr
		}
	}()

	return conn.Raw(func(dc any) error {
		sc, ok := dc.(*stdlib.Conn)
		if !ok {
			return errors.New("unexpected driver connection type; expected *stdlib.Conn")
		}
		_, notifyErr := sc.Conn().WaitForNotification(ctx)
		return notifyErr
	})
}
