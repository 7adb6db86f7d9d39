// Package cache persists raw Notion API responses in a local SQLite
// database so repeated exports skip requests whose answers are still fresh.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-notion-export/internal/logging"
	"github.com/goliatone/go-notion-export/pkg/interfaces"
)

// Entry is one cached API response row.
type Entry struct {
	bun.BaseModel `bun:"table:response_cache,alias:rc"`

	ID        uuid.UUID `bun:",pk,type:uuid"`
	Key       string    `bun:"key,notnull,unique"`
	Value     []byte    `bun:"value"`
	ExpiresAt time.Time `bun:"expires_at,nullzero"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}

// NewEntryRepository creates a repository for cache entries keyed by the
// request key.
func NewEntryRepository(db *bun.DB) repository.Repository[*Entry] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Entry]{
		NewRecord: func() *Entry { return &Entry{} },
		GetID: func(e *Entry) uuid.UUID {
			return e.ID
		},
		SetID: func(e *Entry, id uuid.UUID) {
			e.ID = id
		},
		GetIdentifier: func() string {
			return "key"
		},
		GetIdentifierValue: func(e *Entry) string {
			return e.Key
		},
	})
}

// Store implements the cache provider contract over bun/SQLite. A zero ttl
// on Set keeps the entry until it is deleted or cleared.
type Store struct {
	db     *bun.DB
	repo   repository.Repository[*Entry]
	logger interfaces.Logger
	now    func() time.Time
	ownsDB bool
}

var _ interfaces.CacheProvider = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a store logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLoggerProvider scopes the store logger from a provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(s *Store) {
		s.logger = logging.CacheLogger(provider)
	}
}

// WithClock overrides the time source used for TTL checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open opens or creates the cache database at path and prepares its schema.
// The returned store owns the handle; callers close it with Close.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	sqlDB, err := sql.Open("sqlite3", "file:"+path+"?_fk=1")
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	store := NewStore(bun.NewDB(sqlDB, sqlitedialect.New()), opts...)
	store.ownsDB = true
	if err := store.Init(ctx); err != nil {
		store.db.Close()
		return nil, err
	}
	return store, nil
}

// NewStore wraps an existing bun handle.
func NewStore(db *bun.DB, opts ...Option) *Store {
	s := &Store{
		db:     db,
		repo:   NewEntryRepository(db),
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init creates the cache table when missing.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*Entry)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("cache: create table: %w", err)
	}
	return nil
}

// Get returns the cached bytes for key, or nil when the key is missing or
// its TTL elapsed. Expired rows are evicted on read.
func (s *Store) Get(ctx context.Context, key string) (any, error) {
	entry, err := s.repo.GetByIdentifier(ctx, key)
	if err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache: get %q: %w", key, err)
	}
	if !entry.ExpiresAt.IsZero() && s.now().After(entry.ExpiresAt) {
		if err := s.repo.Delete(ctx, entry); err != nil {
			s.logger.Debug("evicting expired cache entry failed", "error", err)
		}
		return nil, nil
	}
	return entry.Value, nil
}

// Set stores value under key. Byte and string values are stored as given,
// anything else is JSON encoded.
func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := encodeValue(value)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	entry := &Entry{
		ID:        entryID(key),
		Key:       key,
		Value:     data,
		UpdatedAt: now,
	}
	if ttl > 0 {
		entry.ExpiresAt = now.Add(ttl)
	}

	existing, err := s.repo.GetByIdentifier(ctx, key)
	if err != nil {
		if !goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return fmt.Errorf("cache: set %q: %w", key, err)
		}
		entry.CreatedAt = now
		if _, err := s.repo.Create(ctx, entry); err != nil {
			return fmt.Errorf("cache: set %q: %w", key, err)
		}
		return nil
	}

	entry.CreatedAt = existing.CreatedAt
	if _, err := s.repo.Update(ctx, entry); err != nil {
		return fmt.Errorf("cache: set %q: %w", key, err)
	}
	return nil
}

// Delete removes key; deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	entry, err := s.repo.GetByIdentifier(ctx, key)
	if err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil
		}
		return fmt.Errorf("cache: delete %q: %w", key, err)
	}
	if err := s.repo.Delete(ctx, entry); err != nil {
		return fmt.Errorf("cache: delete %q: %w", key, err)
	}
	return nil
}

// Clear removes every entry.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.NewDelete().Model((*Entry)(nil)).Where("1 = 1").Exec(ctx); err != nil {
		return fmt.Errorf("cache: clear: %w", err)
	}
	return nil
}

// PurgeExpired removes entries whose TTL elapsed and reports how many went.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.NewDelete().Model((*Entry)(nil)).
		Where("expires_at IS NOT NULL AND expires_at < ?", s.now().UTC()).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("cache: purge expired: %w", err)
	}
	purged, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return purged, nil
}

// Close releases the database handle when the store opened it itself.
func (s *Store) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}

func encodeValue(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("cache: encode value: %w", err)
		}
		return data, nil
	}
}

// entryID derives the primary key from the request key, so an upsert of the
// same key always lands on the same row.
func entryID(key string) uuid.UUID {
	id, err := hashid.NewUUID(key, hashid.WithHashAlgorithm(hashid.SHA256))
	if err != nil || id == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
	}
	return id
}
