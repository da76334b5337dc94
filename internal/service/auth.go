package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/skyemovie/skyemovie/config"
	"github.com/skyemovie/skyemovie/internal/data"
	domainauth "github.com/skyemovie/skyemovie/internal/domain/auth"
	"github.com/skyemovie/skyemovie/internal/domain/model"
	apperrors "github.com/skyemovie/skyemovie/internal/errors"
	"github.com/skyemovie/skyemovie/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Sessions ports.SessionStore
	Users    ports.UserRepository
	Config   config.AuthConfig
	// Time reports the current time; defaults to time.Now.
	Time func() time.Time
}

// AuthService orchestrates identity: every visitor gets an anonymous
// session, which registration or login replaces with a named one.
type AuthService struct {
	sessions ports.SessionStore
	users    ports.UserRepository
	cfg      config.AuthConfig
	now      func() time.Time
}

var errSessionExpired = errors.New("session expired")

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	now := opts.Time
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		sessions: opts.Sessions,
		users:    opts.Users,
		cfg:      opts.Config,
		now:      now,
	}
}

// BeginAnonymous creates and persists a fresh anonymous session. The
// generated UID doubles as the visitor's favorites identity, so
// anonymous favorites survive for the session lifetime.
func (s *AuthService) BeginAnonymous(ctx context.Context) (domainauth.Session, error) {
	now := s.now()
	session := domainauth.Session{
		ID:        uuid.NewString(),
		UserUID:   "anon-" + uuid.NewString(),
		Anonymous: true,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.AnonymousSessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return domainauth.Session{}, fmt.Errorf("save anonymous session: %w", err)
	}
	return session, nil
}

// RegisterInput groups parameters for Register.
type RegisterInput struct {
	Email    string
	Password string
}

// Register creates an account and returns a fresh authenticated session
// replacing current (which may be empty for visitors without one).
func (s *AuthService) Register(ctx context.Context, current domainauth.Session, in RegisterInput) (domainauth.Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validateCredentials(email, in.Password); err != nil {
		return domainauth.Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, model.User{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	})
	if errors.Is(err, data.ErrEmailExists) {
		return domainauth.Session{}, apperrors.ValidationField("email", "email is already registered")
	}
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("create user: %w", err)
	}

	return s.replaceSession(ctx, current, user)
}

// LoginInput groups parameters for Login.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns a fresh authenticated session
// replacing current. Unknown email and wrong password report the same
// error.
func (s *AuthService) Login(ctx context.Context, current domainauth.Session, in LoginInput) (domainauth.Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return domainauth.Session{}, apperrors.Auth("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, data.ErrUserNotFound) {
		// Burn a bcrypt comparison so missing accounts take the same
		// time as wrong passwords.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$000000000000000000000uGZLKJxEnjyM0QsqHDAOZowXcwkRa2La"), []byte(in.Password))
		return domainauth.Session{}, apperrors.Auth("invalid email or password")
	}
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("get user: %w", err)
	}

	if compareErr := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); compareErr != nil {
		return domainauth.Session{}, apperrors.Auth("invalid email or password")
	}

	return s.replaceSession(ctx, current, user)
}

// Logout deletes the current session and starts a fresh anonymous one,
// so the browser is never left without an identity.
func (s *AuthService) Logout(ctx context.Context, sessionID string) (domainauth.Session, error) {
	if sessionID != "" {
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			return domainauth.Session{}, fmt.Errorf("delete session: %w", err)
		}
	}
	return s.BeginAnonymous(ctx)
}

// GetSession retrieves a session by ID, evicting it when expired.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (domainauth.Session, error) {
	if sessionID == "" {
		return domainauth.Session{}, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("get session: %w", err)
	}

	if session.Expired(s.now()) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return domainauth.Session{}, errors.Join(errSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return domainauth.Session{}, errSessionExpired
	}

	return session, nil
}

// IsSessionExpired reports whether err marks an expired session.
func IsSessionExpired(err error) bool {
	return errors.Is(err, errSessionExpired)
}

// ExchangeBootstrapToken verifies an HS256 token minted by a trusted
// sidecar and returns an authenticated session for the uid claim. The
// exchange is disabled when no signing key is configured.
func (s *AuthService) ExchangeBootstrapToken(ctx context.Context, current domainauth.Session, token string) (domainauth.Session, error) {
	if s.cfg.BootstrapTokenKey == "" {
		return domainauth.Session{}, apperrors.Auth("token exchange is not enabled")
	}
	if token == "" {
		return domainauth.Session{}, apperrors.Auth("token is required")
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.BootstrapTokenKey), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return domainauth.Session{}, apperrors.Auth("invalid token")
	}

	uid, _ := claims["uid"].(string)
	if uid == "" {
		return domainauth.Session{}, apperrors.Auth("token has no uid claim")
	}

	user, err := s.users.GetByUID(ctx, uid)
	if errors.Is(err, data.ErrUserNotFound) {
		return domainauth.Session{}, apperrors.Auth("unknown account")
	}
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("get user: %w", err)
	}

	return s.replaceSession(ctx, current, user)
}

// replaceSession deletes the current session (if any) and persists a
// new authenticated one for user.
func (s *AuthService) replaceSession(ctx context.Context, current domainauth.Session, user model.User) (domainauth.Session, error) {
	if current.ID != "" {
		if err := s.sessions.Delete(ctx, current.ID); err != nil {
			return domainauth.Session{}, fmt.Errorf("delete previous session: %w", err)
		}
	}

	now := s.now()
	session := domainauth.Session{
		ID:        uuid.NewString(),
		UserUID:   user.UID,
		Email:     user.Email,
		Anonymous: false,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return domainauth.Session{}, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

func (s *AuthService) validateCredentials(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return apperrors.ValidationField("email", "a valid email is required")
	}
	if len(password) < s.cfg.MinPasswordLength {
		return apperrors.ValidationField("password", fmt.Sprintf("password must be at least %d characters", s.cfg.MinPasswordLength))
	}
	return nil
}
