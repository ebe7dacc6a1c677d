// Package cache provides translation caching implementations.
//
// A cache is scoped to one run by default: the in-memory cache never evicts,
// so every distinct string reaches the translation backend at most once.
// Redis and JSON export/import are opt-in ways to share translations beyond
// a single run.
package cache

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	// Get retrieves a cached translation. Returns empty string and false if not found or expired.
	Get(key string) (string, bool)

	// Set stores a translation in the cache.
	Set(key string, value string) error
}

// ExportableCache is a cache that can enumerate its live entries.
type ExportableCache interface {
	TranslationCache
	Entries() (map[string]string, error)
}
