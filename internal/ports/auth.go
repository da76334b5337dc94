package ports

// Package ports defines interfaces (hexagonal ports) for the application.
// Implementations live in internal/adapters and internal/data;
// orchestration in internal/service.

import (
	"context"

	domainauth "github.com/skyemovie/skyemovie/internal/domain/auth"
	"github.com/skyemovie/skyemovie/internal/domain/model"
)

// SessionStore persists and retrieves browser sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// UserRepository persists registered accounts.
type UserRepository interface {
	Create(ctx context.Context, user model.User) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByUID(ctx context.Context, uid string) (model.User, error)
}
