package redis

import "strings"

const (
	// KeyPrefixSearch is the prefix for cached search results
	KeyPrefixSearch = "vault:search:"
)

// SearchKey returns the Redis key for a cached search result
func SearchKey(key string) string {
	return KeyPrefixSearch + key
}

// IsSearchKey reports whether a Redis key belongs to the search cache
func IsSearchKey(key string) bool {
	return strings.HasPrefix(key, KeyPrefixSearch) && len(key) > len(KeyPrefixSearch)
}
