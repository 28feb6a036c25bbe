package badgerstore

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/vault/internal/domain"
)

const (
	// KeyPrefixData holds one JSON record per item, keyed by id.
	KeyPrefixData = "items/data/"
	// KeyPrefixCreated orders every item by creation time then id.
	KeyPrefixCreated = "items/created/"
	// KeyPrefixCategory orders items of one category by creation time then id.
	KeyPrefixCategory = "items/category/"

	// KeyNextID stores the next id to hand out.
	KeyNextID = "meta/next_id"
	// KeySchemaVersion stores the last applied migration.
	KeySchemaVersion = "meta/schema_version"
)

// DataKey returns the record key for an item id.
func DataKey(id uint64) []byte {
	return appendUint64([]byte(KeyPrefixData), id)
}

// CreatedKey returns the global ordering key for an item.
func CreatedKey(createdAt time.Time, id uint64) []byte {
	return appendOrder([]byte(KeyPrefixCreated), createdAt, id)
}

// CategoryPrefix returns the prefix shared by every index key of cat.
func CategoryPrefix(cat domain.Category) []byte {
	return []byte(KeyPrefixCategory + string(cat) + "/")
}

// CategoryKey returns the per-category ordering key for an item.
func CategoryKey(cat domain.Category, createdAt time.Time, id uint64) []byte {
	return appendOrder(CategoryPrefix(cat), createdAt, id)
}

// IDFromIndexKey extracts the trailing id of a created or category key.
func IDFromIndexKey(key []byte) (uint64, error) {
	if len(key) < 16 {
		return 0, fmt.Errorf("invalid index key: %q", key)
	}
	return binary.BigEndian.Uint64(key[len(key)-8:]), nil
}

// Big-endian timestamps then ids sort lexicographically in creation order,
// so a reverse scan yields newest first with ties broken by the higher id.
func appendOrder(prefix []byte, createdAt time.Time, id uint64) []byte {
	key := appendUint64(prefix, uint64(createdAt.UnixNano()))
	return appendUint64(key, id)
}

func appendUint64(b []byte, v uint64) []byte {
	return binary.BigEndian.AppendUint64(b, v)
}

func decodeUint64(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("expected 8 bytes, got %d", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

func encodeUint64(v uint64) []byte {
	return appendUint64(make([]byte, 0, 8), v)
}

// seekLast returns the key a reverse iterator seeks to so that it lands
// on the last key carrying prefix.
func seekLast(prefix []byte) []byte {
	k := make([]byte, 0, len(prefix)+1)
	k = append(k, prefix...)
	return append(k, 0xFF)
}
