package notebook

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/verso/pkg/logger"
	"github.com/papercomputeco/verso/pkg/storage"
)

const (
	// Key is the durable slot the notebook is stored under.
	Key = "research_notebook"

	// maxIDAttempts bounds id regeneration on collision.
	maxIDAttempts = 3
)

// Store is the authoritative in-memory notebook mirrored to a storage.Driver.
//
// Operations are serialized: the lock is held across the in-memory mutation and
// the durable write, so two mutations can never interleave their writes.
type Store struct {
	mu sync.Mutex

	driver storage.Driver
	key    string

	// items is newest-first and never nil, so an empty notebook encodes as [].
	items []EvidenceItem

	// dirty is set when the last durable write failed.
	dirty bool

	newID  func() string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Store created with NewStore.
type Option func(*Store)

// WithKey overrides the durable slot key. Defaults to Key.
func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

// WithIDGenerator overrides id generation. Defaults to random UUIDv4 strings.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// WithClock overrides the time source used for item timestamps.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) {
		s.now = fn
	}
}

// WithLogger sets the store logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// NewStore creates an empty store backed by driver. Call Load to pull the
// persisted notebook into memory.
func NewStore(driver storage.Driver, opts ...Option) (*Store, error) {
	if driver == nil {
		return nil, fmt.Errorf("storage driver is required")
	}

	s := &Store{
		driver: driver,
		key:    Key,
		items:  []EvidenceItem{},
		newID:  uuid.NewString,
		now:    time.Now,
		logger: logger.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Load replaces the in-memory notebook with the persisted one and returns it.
// A slot that was never written loads as an empty notebook. On any read or
// decode failure the in-memory notebook is left untouched.
func (s *Store) Load(ctx context.Context) ([]EvidenceItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.driver.Get(ctx, s.key)
	if err != nil {
		if storage.IsNotFound(err) {
			s.items = []EvidenceItem{}
			s.dirty = false
			s.logger.Debug("notebook slot empty", "key", s.key)
			return []EvidenceItem{}, nil
		}
		return nil, fmt.Errorf("load notebook: %w", err)
	}

	items, err := decode(raw)
	if err != nil {
		return nil, err
	}

	s.items = items
	s.dirty = false

	s.logger.Debug("notebook loaded",
		"key", s.key,
		"items", len(items),
	)

	return s.snapshot(), nil
}

// Append creates a new item at the front of the notebook and persists the
// whole list. The created item is returned even when persistence fails, in
// which case the error is a *PersistError and the item stays in memory.
func (s *Store) Append(ctx context.Context, content string, itemType ItemType, sourceURL, sourceTitle string) (EvidenceItem, error) {
	if !itemType.Valid() {
		return EvidenceItem{}, fmt.Errorf("%w: %q", ErrInvalidType, itemType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.uniqueID()
	if err != nil {
		return EvidenceItem{}, err
	}

	item := EvidenceItem{
		ID:          id,
		Timestamp:   s.now().UnixMilli(),
		SourceURL:   sourceURL,
		SourceTitle: sourceTitle,
		Content:     content,
		Type:        itemType,
	}

	updated := make([]EvidenceItem, 0, len(s.items)+1)
	updated = append(updated, item)
	updated = append(updated, s.items...)
	s.items = updated

	s.logger.Debug("evidence appended",
		"id", item.ID,
		"type", string(item.Type),
		"items", len(s.items),
	)

	if err := s.persist(ctx, "append"); err != nil {
		return item, err
	}

	return item, nil
}

// Remove deletes the item with the given id and persists the whole list.
// Removing an id that is not present is a no-op and performs no write.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		s.logger.Debug("remove skipped, id not found", "id", id)
		return nil
	}

	updated := make([]EvidenceItem, 0, len(s.items)-1)
	updated = append(updated, s.items[:idx]...)
	updated = append(updated, s.items[idx+1:]...)
	s.items = updated

	s.logger.Debug("evidence removed",
		"id", id,
		"items", len(s.items),
	)

	return s.persist(ctx, "remove")
}

// Sync retries the durable write after a failed mutation. It is a no-op when
// the store is not dirty.
func (s *Store) Sync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}

	return s.persist(ctx, "sync")
}

// Items returns a copy of the notebook, newest first.
func (s *Store) Items() []EvidenceItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot()
}

// Get returns the item with the given id.
func (s *Store) Get(id string) (EvidenceItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return EvidenceItem{}, false
	}
	return s.items[idx], true
}

// Len returns the number of items in memory.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

// Dirty reports whether memory holds changes the durable slot has not
// accepted yet.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.dirty
}

// persist overwrites the durable slot with the full in-memory list.
// Callers must hold s.mu.
func (s *Store) persist(ctx context.Context, op string) error {
	raw, err := json.Marshal(s.items)
	if err != nil {
		s.dirty = true
		return &PersistError{Op: op, Err: fmt.Errorf("encode notebook: %w", err)}
	}

	if err := s.driver.Set(ctx, s.key, raw); err != nil {
		s.dirty = true
		s.logger.Warn("notebook persistence failed, memory kept",
			"op", op,
			"items", len(s.items),
			"error", err,
		)
		return &PersistError{Op: op, Err: err}
	}

	s.dirty = false
	return nil
}

// uniqueID generates an id not already used in the notebook.
// Callers must hold s.mu.
func (s *Store) uniqueID() (string, error) {
	for range maxIDAttempts {
		id := s.newID()
		if id != "" && s.indexOf(id) < 0 {
			return id, nil
		}
		s.logger.Warn("evidence id collision, regenerating", "id", id)
	}
	return "", ErrIDCollision
}

func (s *Store) indexOf(id string) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshot() []EvidenceItem {
	out := make([]EvidenceItem, len(s.items))
	copy(out, s.items)
	return out
}

// decode parses a durable value and checks the notebook invariants.
func decode(raw []byte) ([]EvidenceItem, error) {
	var items []EvidenceItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedNotebook, err)
	}

	if items == nil {
		return []EvidenceItem{}, nil
	}

	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		if item.ID == "" {
			return nil, fmt.Errorf("%w: item %d has no id", ErrMalformedNotebook, i)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrMalformedNotebook, item.ID)
		}
		if !item.Type.Valid() {
			return nil, fmt.Errorf("%w: item %q has type %q", ErrMalformedNotebook, item.ID, item.Type)
		}
		seen[item.ID] = struct{}{}
	}

	return items, nil
}
