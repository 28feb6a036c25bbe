// Package badgerstore persists the item collection in an embedded badger database.
package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/events"
	"github.com/MrSnakeDoc/vault/internal/logger"
	"github.com/MrSnakeDoc/vault/internal/metrics"
)

const (
	// DefaultConflictRetries bounds how many times a write transaction is
	// replayed after badger reports a conflict.
	DefaultConflictRetries = 5
)

// ErrClosed is wrapped in a StorageError once the store has been closed.
var ErrClosed = errors.New("store is closed")

// Options configures Open.
type Options struct {
	// Dir is the database directory. Ignored when InMemory is set.
	Dir string
	// InMemory keeps everything in RAM (tests, ephemeral runs).
	InMemory bool
	// SyncWrites fsyncs every commit.
	SyncWrites bool
	// ConflictRetries overrides DefaultConflictRetries when > 0.
	ConflictRetries int
	// Now is the creation clock. Defaults to time.Now.
	Now func() time.Time
}

// Store is the collection store. It is safe for concurrent use.
type Store struct {
	db      *badger.DB
	log     logger.Logger
	broker  *events.Broker
	now     func() time.Time
	retries int
	closed  atomic.Bool
}

// Open opens (or creates) the database and brings its schema up to date.
func Open(ctx context.Context, opts Options, log logger.Logger) (*Store, error) {
	bopts := badger.DefaultOptions(opts.Dir).
		WithLogger(newBadgerLogger(log)).
		WithSyncWrites(opts.SyncWrites)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").
			WithInMemory(true).
			WithLogger(newBadgerLogger(log))
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, &domain.StorageError{Op: "open", Err: err}
	}

	s := &Store{
		db:      db,
		log:     log,
		broker:  events.NewBroker(),
		now:     opts.Now,
		retries: opts.ConflictRetries,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.retries <= 0 {
		s.retries = DefaultConflictRetries
	}

	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Info("Collection store opened",
		logger.String("dir", opts.Dir),
		logger.Bool("in_memory", opts.InMemory),
	)
	return s, nil
}

// Close releases the database. Later calls fail with a StorageError.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return &domain.StorageError{Op: "close", Err: err}
	}
	return nil
}

// Subscribe registers fn for change events and returns the unsubscribe func.
func (s *Store) Subscribe(fn func(domain.ChangeEvent)) (unsubscribe func()) {
	return s.broker.Subscribe(fn)
}

// Ping checks the database answers a read.
func (s *Store) Ping(ctx context.Context) error {
	return s.view(ctx, "ping", func(txn *badger.Txn) error {
		_, err := readUint64(txn, []byte(KeySchemaVersion))
		return err
	})
}

// Size returns the on-disk size of the LSM tree and the value log.
func (s *Store) Size() (lsm, vlog int64) {
	return s.db.Size()
}

// RunValueLogGC reclaims value-log space. It returns false when
// there was nothing worth rewriting.
func (s *Store) RunValueLogGC(discardRatio float64) (bool, error) {
	if s.closed.Load() {
		return false, &domain.StorageError{Op: "gc", Err: ErrClosed}
	}
	err := s.db.RunValueLogGC(discardRatio)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrRejected), errors.Is(err, badger.ErrGCInMemoryMode):
		return false, nil
	default:
		return false, &domain.StorageError{Op: "gc", Err: err}
	}
}

// ─────────────────────────────
// Reads
// ─────────────────────────────

// GetAll returns every item, newest first.
func (s *Store) GetAll(ctx context.Context) ([]*domain.Item, error) {
	var items []*domain.Item
	err := s.view(ctx, "get all", func(txn *badger.Txn) error {
		ids := scanIDs(txn, []byte(KeyPrefixCreated), 0, -1)
		var err error
		items, err = loadItems(txn, ids)
		return err
	})
	return items, err
}

// GetPage returns one page of the newest-first ordering.
func (s *Store) GetPage(ctx context.Context, page, pageSize int) (*domain.Page, error) {
	return s.page(ctx, "get page", []byte(KeyPrefixCreated), page, pageSize)
}

// GetByCategory returns every item of cat, newest first.
func (s *Store) GetByCategory(ctx context.Context, cat domain.Category) ([]*domain.Item, error) {
	if !cat.Valid() {
		return nil, &domain.ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", cat)}
	}

	var items []*domain.Item
	err := s.view(ctx, "get by category", func(txn *badger.Txn) error {
		ids := scanIDs(txn, CategoryPrefix(cat), 0, -1)
		var err error
		items, err = loadItems(txn, ids)
		return err
	})
	return items, err
}

// GetByCategoryPage returns one page of a single category.
func (s *Store) GetByCategoryPage(ctx context.Context, cat domain.Category, page, pageSize int) (*domain.Page, error) {
	if !cat.Valid() {
		return nil, &domain.ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", cat)}
	}
	return s.page(ctx, "get category page", CategoryPrefix(cat), page, pageSize)
}

// GetByID returns the item or domain.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id uint64) (*domain.Item, error) {
	var it *domain.Item
	err := s.view(ctx, "get by id", func(txn *badger.Txn) error {
		var err error
		it, err = getItem(txn, id)
		return err
	})
	return it, err
}

// Count returns the number of stored items.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.view(ctx, "count", func(txn *badger.Txn) error {
		n = countPrefix(txn, []byte(KeyPrefixCreated))
		return nil
	})
	return n, err
}

// CountByCategory returns the number of stored items in cat.
func (s *Store) CountByCategory(ctx context.Context, cat domain.Category) (int, error) {
	var n int
	err := s.view(ctx, "count by category", func(txn *badger.Txn) error {
		n = countPrefix(txn, CategoryPrefix(cat))
		return nil
	})
	return n, err
}

func (s *Store) page(ctx context.Context, op string, prefix []byte, page, pageSize int) (*domain.Page, error) {
	if err := domain.ValidatePaging(page, pageSize); err != nil {
		return nil, err
	}

	var (
		items []*domain.Item
		total int
	)
	err := s.view(ctx, op, func(txn *badger.Txn) error {
		total = countPrefix(txn, prefix)
		offset := domain.Offset(page, pageSize)
		if offset >= total {
			return nil
		}
		ids := scanIDs(txn, prefix, offset, pageSize)
		var err error
		items, err = loadItems(txn, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return domain.NewPage(items, total, page, pageSize), nil
}

// ─────────────────────────────
// Writes
// ─────────────────────────────

// Add persists a new item and returns its id.
func (s *Store) Add(ctx context.Context, d domain.Draft) (uint64, error) {
	if err := domain.ValidateDraft(d); err != nil {
		return 0, err
	}

	var id uint64
	err := s.update(ctx, "add", func(txn *badger.Txn) error {
		var err error
		id, err = s.insert(txn, d, s.now())
		return err
	})
	if err != nil {
		return 0, err
	}

	s.broker.Publish(domain.ChangeEvent{Op: domain.ChangeAdded, ID: id})
	return id, nil
}

// BulkAdd persists every draft in one transaction. Either all of them are
// stored or none is.
func (s *Store) BulkAdd(ctx context.Context, drafts []domain.Draft) ([]uint64, error) {
	for i, d := range drafts {
		if err := domain.ValidateDraft(d); err != nil {
			return nil, fmt.Errorf("draft %d: %w", i, err)
		}
	}
	if len(drafts) == 0 {
		return []uint64{}, nil
	}

	var ids []uint64
	err := s.update(ctx, "bulk add", func(txn *badger.Txn) error {
		ids = make([]uint64, 0, len(drafts))
		now := s.now()
		for _, d := range drafts {
			id, err := s.insert(txn, d, now)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		s.broker.Publish(domain.ChangeEvent{Op: domain.ChangeAdded, ID: id})
	}
	return ids, nil
}

// Update merges the fields set in p into the stored item.
// A missing id yields domain.ErrNotFound.
func (s *Store) Update(ctx context.Context, id uint64, p *domain.Patch) error {
	if p == nil || p.Empty() {
		// Nothing to write; only report whether the id exists.
		_, err := s.GetByID(ctx, id)
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}

	err := s.update(ctx, "update", func(txn *badger.Txn) error {
		it, err := getItem(txn, id)
		if err != nil {
			return err
		}

		prevCategory := it.Category
		p.Apply(it)

		if err := putItem(txn, it); err != nil {
			return err
		}
		if it.Category != prevCategory {
			if err := txn.Delete(CategoryKey(prevCategory, it.CreatedAt, id)); err != nil {
				return err
			}
			if err := txn.Set(CategoryKey(it.Category, it.CreatedAt, id), nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.broker.Publish(domain.ChangeEvent{Op: domain.ChangeUpdated, ID: id})
	return nil
}

// Delete removes the item. Deleting a missing id is a no-op.
func (s *Store) Delete(ctx context.Context, id uint64) error {
	removed := false
	err := s.update(ctx, "delete", func(txn *badger.Txn) error {
		removed = false
		it, err := getItem(txn, id)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		for _, k := range [][]byte{
			DataKey(id),
			CreatedKey(it.CreatedAt, id),
			CategoryKey(it.Category, it.CreatedAt, id),
		} {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		removed = true
		return nil
	})
	if err != nil {
		return err
	}

	if removed {
		s.broker.Publish(domain.ChangeEvent{Op: domain.ChangeDeleted, ID: id})
	}
	return nil
}

func (s *Store) insert(txn *badger.Txn, d domain.Draft, createdAt time.Time) (uint64, error) {
	id, err := readUint64(txn, []byte(KeyNextID))
	if err != nil {
		return 0, err
	}
	if id == 0 {
		id = 1
	}
	if err := txn.Set([]byte(KeyNextID), encodeUint64(id+1)); err != nil {
		return 0, err
	}

	it := d.ToItem(id, createdAt)
	if err := putItem(txn, it); err != nil {
		return 0, err
	}
	if err := txn.Set(CreatedKey(it.CreatedAt, id), nil); err != nil {
		return 0, err
	}
	if err := txn.Set(CategoryKey(it.Category, it.CreatedAt, id), nil); err != nil {
		return 0, err
	}
	return id, nil
}

// ─────────────────────────────
// Transactions
// ─────────────────────────────

func (s *Store) view(ctx context.Context, op string, fn func(txn *badger.Txn) error) (err error) {
	defer func(start time.Time) { metrics.ObserveStoreOp(op, start, err) }(time.Now())

	if err := s.guard(ctx, op); err != nil {
		return err
	}
	return s.wrap(op, s.db.View(fn))
}

// update runs fn in a read-write transaction and replays it when badger
// detects a conflicting concurrent commit.
func (s *Store) update(ctx context.Context, op string, fn func(txn *badger.Txn) error) (err error) {
	defer func(start time.Time) { metrics.ObserveStoreOp(op, start, err) }(time.Now())

	for attempt := 0; attempt <= s.retries; attempt++ {
		if err = s.guard(ctx, op); err != nil {
			return err
		}
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
		s.log.Debug("Write conflict, retrying",
			logger.String("op", op),
			logger.Int("attempt", attempt+1),
		)
	}
	return s.wrap(op, err)
}

func (s *Store) guard(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed.Load() {
		return &domain.StorageError{Op: op, Err: ErrClosed}
	}
	return nil
}

// wrap passes domain errors through and turns everything else into a StorageError.
func (s *Store) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) || domain.IsValidation(err) || domain.IsStorage(err) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &domain.StorageError{Op: op, Err: err}
}

// ─────────────────────────────
// Record helpers
// ─────────────────────────────

func getItem(txn *badger.Txn, id uint64) (*domain.Item, error) {
	item, err := txn.Get(DataKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var it domain.Item
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &it)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode item %d: %w", id, err)
	}
	return &it, nil
}

func putItem(txn *badger.Txn, it *domain.Item) error {
	data, err := json.Marshal(it)
	if err != nil {
		return fmt.Errorf("failed to encode item %d: %w", it.ID, err)
	}
	return txn.Set(DataKey(it.ID), data)
}

func loadItems(txn *badger.Txn, ids []uint64) ([]*domain.Item, error) {
	items := make([]*domain.Item, 0, len(ids))
	for _, id := range ids {
		it, err := getItem(txn, id)
		if errors.Is(err, domain.ErrNotFound) {
			// Dangling index entry; the v2 migration rebuilds these.
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

// scanIDs walks an index prefix newest first, skipping offset entries and
// collecting at most limit ids (all of them when limit < 0).
func scanIDs(txn *badger.Txn, prefix []byte, offset, limit int) []uint64 {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Reverse = true
	opts.Prefix = prefix

	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []uint64
	skipped := 0
	for it.Seek(seekLast(prefix)); it.ValidForPrefix(prefix); it.Next() {
		if skipped < offset {
			skipped++
			continue
		}
		if limit >= 0 && len(ids) >= limit {
			break
		}
		id, err := IDFromIndexKey(it.Item().Key())
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func countPrefix(txn *badger.Txn, prefix []byte) int {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix

	it := txn.NewIterator(opts)
	defer it.Close()

	n := 0
	for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
		n++
	}
	return n
}

// readUint64 returns 0 when the key is absent.
func readUint64(txn *badger.Txn, key []byte) (uint64, error) {
	item, err := txn.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}

	var v uint64
	err = item.Value(func(val []byte) error {
		var derr error
		v, derr = decodeUint64(val)
		return derr
	})
	return v, err
}
