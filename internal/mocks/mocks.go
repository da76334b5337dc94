// Package mocks contains simple hand-written test doubles for the
// application ports. These are lightweight and suitable for unit tests
// without codegen.
package mocks

import (
	"context"
	"errors"
	"sync"
	"time"

	domainauth "github.com/skyemovie/skyemovie/internal/domain/auth"
	"github.com/skyemovie/skyemovie/internal/domain/model"
	"github.com/skyemovie/skyemovie/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.SessionStore       = (*MemorySessionStore)(nil)
	_ ports.UserRepository     = (*MemoryUserRepo)(nil)
	_ ports.GrantStore         = (*MemoryGrantStore)(nil)
	_ ports.CatalogClient      = (*StubCatalogClient)(nil)
	_ ports.CacheRepository    = (*MemoryCache)(nil)
	_ ports.FavoriteRepository = (*MemoryFavoriteRepo)(nil)
)

// sessionNotFound mirrors the redis adapter's not-found sentinel shape.
type sessionNotFound struct{}

func (sessionNotFound) Error() string { return "session not found" }

// ErrSessionNotFound is returned when a session is not found.
var ErrSessionNotFound error = sessionNotFound{}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ErrSessionNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len reports how many sessions are stored.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// MemoryUserRepo is an in-memory user repository for unit tests. It
// returns the same sentinels as the data package.
type MemoryUserRepo struct {
	mu    sync.Mutex
	byUID map[string]model.User

	// NotFoundErr and EmailExistsErr let tests wire the data package
	// sentinels without this package importing it.
	NotFoundErr    error
	EmailExistsErr error
}

// NewMemoryUserRepo creates a new in-memory user repository using the
// given sentinel errors.
func NewMemoryUserRepo(notFound, emailExists error) *MemoryUserRepo {
	return &MemoryUserRepo{
		byUID:          make(map[string]model.User),
		NotFoundErr:    notFound,
		EmailExistsErr: emailExists,
	}
}

func (m *MemoryUserRepo) Create(_ context.Context, user model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byUID {
		if existing.Email == user.Email {
			return model.User{}, m.EmailExistsErr
		}
	}
	user.CreatedAt = time.Now().UTC()
	m.byUID[user.UID] = user
	return user, nil
}

func (m *MemoryUserRepo) GetByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.byUID {
		if user.Email == email {
			return user, nil
		}
	}
	return model.User{}, m.NotFoundErr
}

func (m *MemoryUserRepo) GetByUID(_ context.Context, uid string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byUID[uid]
	if !ok {
		return model.User{}, m.NotFoundErr
	}
	return user, nil
}

// MemoryGrantStore is an in-memory grant store for unit tests.
type MemoryGrantStore struct {
	mu     sync.Mutex
	grants map[string]string // gateID -> code
}

// NewMemoryGrantStore creates a new in-memory grant store.
func NewMemoryGrantStore() *MemoryGrantStore {
	return &MemoryGrantStore{grants: make(map[string]string)}
}

func (m *MemoryGrantStore) Grant(_ context.Context, gateID, code string) error {
	if gateID == "" || code == "" {
		return errors.New("gate id and code are required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grants[gateID] = code
	return nil
}

func (m *MemoryGrantStore) HasGrant(_ context.Context, gateID, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.grants[gateID] == code && code != "", nil
}

func (m *MemoryGrantStore) Revoke(_ context.Context, gateID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.grants, gateID)
	return nil
}

// StubCatalogClient serves canned catalog data, with per-method
// override funcs for error injection.
type StubCatalogClient struct {
	Movies []model.ContentItem
	Shows  []model.ContentItem
	Search []model.ContentItem

	DiscoverMoviesFunc func(ctx context.Context) ([]model.ContentItem, error)
	DiscoverTVFunc     func(ctx context.Context) ([]model.ContentItem, error)
	SearchMultiFunc    func(ctx context.Context, query string) ([]model.ContentItem, error)

	mu            sync.Mutex
	SearchQueries []string
	DiscoverCalls int
}

func (s *StubCatalogClient) DiscoverMovies(ctx context.Context) ([]model.ContentItem, error) {
	s.mu.Lock()
	s.DiscoverCalls++
	s.mu.Unlock()
	if s.DiscoverMoviesFunc != nil {
		return s.DiscoverMoviesFunc(ctx)
	}
	return s.Movies, nil
}

func (s *StubCatalogClient) DiscoverTV(ctx context.Context) ([]model.ContentItem, error) {
	if s.DiscoverTVFunc != nil {
		return s.DiscoverTVFunc(ctx)
	}
	return s.Shows, nil
}

func (s *StubCatalogClient) SearchMulti(ctx context.Context, query string) ([]model.ContentItem, error) {
	s.mu.Lock()
	s.SearchQueries = append(s.SearchQueries, query)
	s.mu.Unlock()
	if s.SearchMultiFunc != nil {
		return s.SearchMultiFunc(ctx, query)
	}
	return s.Search, nil
}

type cacheEntry struct {
	value    []byte
	deadline time.Time
}

// MemoryCache is an in-memory CacheRepository for unit tests.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]cacheEntry)}
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	deadline := time.Time{}
	if ttl > 0 {
		deadline = time.Now().Add(ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = cacheEntry{value: append([]byte(nil), value...), deadline: deadline}
	return nil
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.New("key cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	if !entry.deadline.IsZero() && time.Now().After(entry.deadline) {
		delete(m.entries, key)
		return nil, nil
	}
	return append([]byte(nil), entry.value...), nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryCache) Health(_ context.Context) error { return nil }

// MemoryFavoriteRepo is an in-memory favorite repository for unit
// tests. Changes signal waiting WaitForChange callers.
type MemoryFavoriteRepo struct {
	mu      sync.Mutex
	nextID  int64
	rows    []model.Favorite
	waiters map[string][]chan struct{}

	// NotFoundErr lets tests wire the data package sentinel.
	NotFoundErr error
}

// NewMemoryFavoriteRepo creates a new in-memory favorite repository
// using the given not-found sentinel.
func NewMemoryFavoriteRepo(notFound error) *MemoryFavoriteRepo {
	return &MemoryFavoriteRepo{
		nextID:      1,
		waiters:     make(map[string][]chan struct{}),
		NotFoundErr: notFound,
	}
}

func (m *MemoryFavoriteRepo) Add(_ context.Context, params model.NewFavoriteParams) (model.Favorite, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range m.rows {
		if row.UserUID == params.UserUID && row.TMDBID == params.TMDBID && row.MediaType == params.MediaType {
			return row, false, nil
		}
	}

	fav := model.Favorite{
		ID:        m.nextID,
		UserUID:   params.UserUID,
		TMDBID:    params.TMDBID,
		MediaType: params.MediaType,
		Title:     params.Title,
		PosterURL: params.PosterURL,
		AddedAt:   time.Now().UTC(),
	}
	m.nextID++
	m.rows = append(m.rows, fav)
	m.signalLocked(params.UserUID)
	return fav, true, nil
}

func (m *MemoryFavoriteRepo) Remove(_ context.Context, userUID string, tmdbID int64, mediaType model.MediaType) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, row := range m.rows {
		if row.UserUID == userUID && row.TMDBID == tmdbID && row.MediaType == mediaType {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			m.signalLocked(userUID)
			return nil
		}
	}
	return m.NotFoundErr
}

func (m *MemoryFavoriteRepo) ListByUser(_ context.Context, userUID string) ([]model.Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Favorite
	for _, row := range m.rows {
		if row.UserUID == userUID {
			out = append(out, row)
		}
	}
	// Newest first mirrors the database ordering.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (m *MemoryFavoriteRepo) WaitForChange(ctx context.Context, userUID string) error {
	ch := make(chan struct{}, 1)
	m.mu.Lock()
	m.waiters[userUID] = append(m.waiters[userUID], ch)
	m.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	}
}

func (m *MemoryFavoriteRepo) signalLocked(userUID string) {
	for _, ch := range m.waiters[userUID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	m.waiters[userUID] = nil
}
