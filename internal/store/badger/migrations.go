package badgerstore

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/logger"
)

// Migration upgrades the layout to Version. Each one runs in its own transaction.
type Migration struct {
	Version uint64
	Name    string
	Apply   func(txn *badger.Txn) error
}

// Migrations is the ordered upgrade path. Append only.
var Migrations = []Migration{
	{Version: 1, Name: "initial layout", Apply: migrateInitial},
	{Version: 2, Name: "rebuild secondary indexes", Apply: rebuildIndexes},
}

// LatestSchemaVersion is the layout this binary writes.
func LatestSchemaVersion() uint64 {
	return Migrations[len(Migrations)-1].Version
}

// SchemaVersion returns the version recorded in the database.
func (s *Store) SchemaVersion(ctx context.Context) (uint64, error) {
	var v uint64
	err := s.view(ctx, "schema version", func(txn *badger.Txn) error {
		var err error
		v, err = readUint64(txn, []byte(KeySchemaVersion))
		return err
	})
	return v, err
}

// Reindex rebuilds every secondary index from the data records.
func (s *Store) Reindex(ctx context.Context) error {
	return s.update(ctx, "reindex", rebuildIndexes)
}

func (s *Store) migrate(ctx context.Context) error {
	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	latest := LatestSchemaVersion()
	if current > latest {
		return &domain.StorageError{
			Op:  "migrate",
			Err: fmt.Errorf("database schema version %d is newer than supported version %d", current, latest),
		}
	}

	for _, m := range Migrations {
		if m.Version <= current {
			continue
		}
		m := m
		err := s.update(ctx, "migrate", func(txn *badger.Txn) error {
			if err := m.Apply(txn); err != nil {
				return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
			}
			return txn.Set([]byte(KeySchemaVersion), encodeUint64(m.Version))
		})
		if err != nil {
			return err
		}
		s.log.Info("Applied schema migration",
			logger.Uint64("version", m.Version),
			logger.String("name", m.Name),
		)
	}
	return nil
}

func migrateInitial(txn *badger.Txn) error {
	next, err := readUint64(txn, []byte(KeyNextID))
	if err != nil {
		return err
	}
	if next == 0 {
		return txn.Set([]byte(KeyNextID), encodeUint64(1))
	}
	return nil
}

// rebuildIndexes drops both index families and recreates them from the
// records, so it also repairs drift. next_id is raised past the highest id.
func rebuildIndexes(txn *badger.Txn) error {
	var stale [][]byte
	for _, prefix := range [][]byte{[]byte(KeyPrefixCreated), []byte(KeyPrefixCategory)} {
		stale = append(stale, collectKeys(txn, prefix)...)
	}
	for _, k := range stale {
		if err := txn.Delete(k); err != nil {
			return err
		}
	}

	var items []*domain.Item
	for _, k := range collectKeys(txn, []byte(KeyPrefixData)) {
		id, err := decodeUint64(k[len(KeyPrefixData):])
		if err != nil {
			return fmt.Errorf("invalid data key %q: %w", k, err)
		}
		it, err := getItem(txn, id)
		if err != nil {
			return err
		}
		items = append(items, it)
	}

	var maxID uint64
	for _, it := range items {
		if err := txn.Set(CreatedKey(it.CreatedAt, it.ID), nil); err != nil {
			return err
		}
		if err := txn.Set(CategoryKey(it.Category, it.CreatedAt, it.ID), nil); err != nil {
			return err
		}
		if it.ID > maxID {
			maxID = it.ID
		}
	}

	next, err := readUint64(txn, []byte(KeyNextID))
	if err != nil {
		return err
	}
	if next <= maxID {
		return txn.Set([]byte(KeyNextID), encodeUint64(maxID+1))
	}
	return nil
}

func collectKeys(txn *badger.Txn, prefix []byte) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix

	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys
}
