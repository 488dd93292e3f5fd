package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"aomame/internal/domain"
	"aomame/internal/port"
)

// LanguageCache fetches a provider's language list on first use and keeps
// it for a TTL. Nothing is fetched when the cache is created.
type LanguageCache struct {
	mu      sync.RWMutex
	lister  port.LanguageLister
	ttl     time.Duration
	langs   []domain.Language
	codes   map[string]bool
	fetched time.Time
	now     func() time.Time

	store  port.LanguageStore
	key    string
	loaded bool
	logger *zap.Logger
}

func NewLanguageCache(lister port.LanguageLister, ttl time.Duration) *LanguageCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &LanguageCache{
		lister: lister,
		ttl:    ttl,
		now:    time.Now,
		logger: zap.NewNop(),
	}
}

// WithStore saves fetched lists under key and reads them back on first use,
// so the TTL spans processes. Store failures are logged, never returned.
func (c *LanguageCache) WithStore(key string, store port.LanguageStore, logger *zap.Logger) *LanguageCache {
	c.store = store
	c.key = key
	if logger != nil {
		c.logger = logger
	}
	return c
}

// Languages returns the cached list, fetching it when missing or expired.
// When the refetch of an expired list fails, the expired list is served.
func (c *LanguageCache) Languages(ctx context.Context) ([]domain.Language, error) {
	c.load()

	c.mu.RLock()
	langs, fresh, have := c.langs, c.fresh(), c.codes != nil
	c.mu.RUnlock()
	if fresh {
		return langs, nil
	}

	fetched, err := c.Refresh(ctx)
	if err == nil {
		return fetched, nil
	}
	if have && ctx.Err() == nil {
		c.logger.Warn("Serving expired language list",
			zap.String("key", c.key),
			zap.Error(err),
		)
		return langs, nil
	}
	return nil, err
}

// Refresh fetches the list unconditionally. On failure the error is
// returned and the previous list, if any, is kept.
func (c *LanguageCache) Refresh(ctx context.Context) ([]domain.Language, error) {
	langs, err := c.lister.Languages(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.set(langs, c.now())
	fetched := c.fetched
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.SaveLanguages(c.key, langs, fetched); err != nil {
			c.logger.Warn("Failed to save language list", zap.String("key", c.key), zap.Error(err))
		}
	}
	return langs, nil
}

// Supports reports whether code is in the provider's list.
func (c *LanguageCache) Supports(ctx context.Context, code string) (bool, error) {
	if _, err := c.Languages(ctx); err != nil {
		return false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.codes[code], nil
}

func (c *LanguageCache) load() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded || c.store == nil {
		return
	}
	c.loaded = true
	if c.codes != nil {
		return
	}

	langs, fetched, err := c.store.LoadLanguages(c.key)
	if err != nil {
		c.logger.Warn("Failed to load saved language list", zap.String("key", c.key), zap.Error(err))
		return
	}
	if langs != nil {
		c.set(langs, fetched)
	}
}

// set must be called with mu held.
func (c *LanguageCache) set(langs []domain.Language, fetched time.Time) {
	codes := make(map[string]bool, len(langs))
	for _, l := range langs {
		codes[l.Code] = true
	}
	c.langs = langs
	c.codes = codes
	c.fetched = fetched
}

func (c *LanguageCache) fresh() bool {
	return c.codes != nil && c.now().Sub(c.fetched) <= c.ttl
}
