package rtlify

import (
	"context"
	"log/slog"

	"github.com/ZaguanLabs/rtlify/cache"
)

// Translator resolves content strings to translations, calling the provider
// at most once per distinct string for the lifetime of its cache.
type Translator struct {
	targetLang string
	sourceLang string
	provider   Provider
	cache      TranslationCache
	logger     *slog.Logger
}

// Provider is the interface for translation backends.
type Provider interface {
	Translate(ctx context.Context, req TranslateRequest) (string, error)
}

// TranslateRequest contains the parameters for a translation request.
type TranslateRequest struct {
	Text       string
	SourceLang string // "auto" lets the backend detect it
	TargetLang string
}

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithSourceLang sets the source language.
func WithSourceLang(lang string) TranslatorOption {
	return func(t *Translator) {
		t.sourceLang = lang
	}
}

// WithCache sets the translation cache.
func WithCache(cache TranslationCache) TranslatorOption {
	return func(t *Translator) {
		t.cache = cache
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) TranslatorOption {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTranslator creates a new Translator with the given target language and
// provider. Without WithCache it memoizes in a non-expiring in-memory cache.
func NewTranslator(targetLang string, provider Provider, opts ...TranslatorOption) *Translator {
	t := &Translator{
		targetLang: targetLang,
		sourceLang: "auto",
		provider:   provider,
		logger:     discardLogger(),
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.cache == nil {
		t.cache = cache.NewInMemoryCache(0)
	}

	return t
}

// Translate returns the translation of content. A cached value is returned
// without calling the provider.
func (t *Translator) Translate(ctx context.Context, content string) (string, error) {
	translated, _, err := t.translate(ctx, content)
	return translated, err
}

// TranslateUnits translates the distinct contents of units in first
// appearance order and returns the content to translation map.
func (t *Translator) TranslateUnits(ctx context.Context, units []Unit) (map[string]string, TranslationStats, error) {
	translations := make(map[string]string)
	var stats TranslationStats

	for _, u := range units {
		if _, seen := translations[u.Content]; seen {
			continue
		}
		stats.Distinct++

		translated, hit, err := t.translate(ctx, u.Content)
		if err != nil {
			return nil, stats, err
		}
		if hit {
			stats.Cached++
		} else {
			stats.Translated++
		}
		translations[u.Content] = translated
	}

	return translations, stats, nil
}

// translate reports whether the result came from the cache.
func (t *Translator) translate(ctx context.Context, content string) (string, bool, error) {
	key := CacheKey(content, t.targetLang)

	if cached, ok := t.cache.Get(key); ok {
		t.logger.DebugContext(ctx, "cache hit", "text", content)
		return cached, true, nil
	}

	if t.provider == nil {
		return "", false, &TranslationError{Message: "no provider configured", Text: content}
	}

	t.logger.DebugContext(ctx, "cache miss", "text", content)
	translated, err := t.provider.Translate(ctx, TranslateRequest{
		Text:       content,
		SourceLang: t.sourceLang,
		TargetLang: t.targetLang,
	})
	if err != nil {
		return "", false, err
	}

	if err := t.cache.Set(key, translated); err != nil {
		// The translation is already in hand; a failed write only costs a
		// repeat request later.
		t.logger.WarnContext(ctx, "cache write failed", "error", err)
	}

	return translated, false, nil
}

// TargetLang returns the target language.
func (t *Translator) TargetLang() string {
	return t.targetLang
}

// SourceLang returns the source language.
func (t *Translator) SourceLang() string {
	return t.sourceLang
}

// Cache returns the cache backing the translator.
func (t *Translator) Cache() TranslationCache {
	return t.cache
}

// IsRTL returns true if the target language uses right-to-left text direction.
func (t *Translator) IsRTL() bool {
	return IsRTL(t.targetLang)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
