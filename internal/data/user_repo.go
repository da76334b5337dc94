package data

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/skyemovie/skyemovie/internal/data/pgxutil"
	"github.com/skyemovie/skyemovie/internal/domain/model"
)

const userColumns = "uid, email, password_hash, created_at"

// UserRepo provides database operations for registered accounts.
type UserRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewUserRepo creates a new UserRepo with real time provider.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewUserRepoWithTimeProvider creates a new UserRepo with a custom time provider (useful for tests).
func NewUserRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *UserRepo {
	return &UserRepo{DB: db, timeProvider: tp}
}

// Create inserts a new user. The email is stored lowercased.
func (r *UserRepo) Create(ctx context.Context, user model.User) (model.User, error) {
	if user.UID == "" {
		return model.User{}, errors.New("user uid is required")
	}
	if user.Email == "" {
		return model.User{}, errors.New("user email is required")
	}

	createdAt := r.timeProvider.Now().UTC()
	var out model.User
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO users (uid, email, password_hash, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING `+userColumns,
			user.UID,
			strings.ToLower(strings.TrimSpace(user.Email)),
			user.PasswordHash,
			createdAt,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	}); err != nil {
		return model.User{}, r.mapWriteErr(err)
	}
	return out, nil
}

// GetByEmail retrieves a user by email (case-insensitive).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getByQuery(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, strings.ToLower(strings.TrimSpace(email)))
}

// GetByUID retrieves a user by UID.
func (r *UserRepo) GetByUID(ctx context.Context, uid string) (model.User, error) {
	return r.getByQuery(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE uid = $1
	`, uid)
}

func (r *UserRepo) getByQuery(ctx context.Context, query, arg string) (model.User, error) {
	var out model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, arg)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	return out, nil
}

// mapWriteErr converts a unique violation on the email column to the
// package sentinel so callers stay pgx-free.
func (r *UserRepo) mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrEmailExists
	}
	return err
}
