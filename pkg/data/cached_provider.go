package data

import (
	"log"
	"path/filepath"
	"sync"

	"github.com/ducminhle1904/harmonic-backtest/pkg/types"
)

// MemoryCache implements Cache using in-memory storage
type MemoryCache struct {
	cache map[string][]types.Bar
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		cache: make(map[string][]types.Bar),
	}
}

// Get retrieves bars from cache if available
func (c *MemoryCache) Get(key string) ([]types.Bar, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	bars, exists := c.cache[key]
	if exists {
		// Return a copy to prevent external modifications
		result := make([]types.Bar, len(bars))
		copy(result, bars)
		return result, true
	}

	return nil, false
}

// Set stores bars in cache
func (c *MemoryCache) Set(key string, bars []types.Bar) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	cached := make([]types.Bar, len(bars))
	copy(cached, bars)
	c.cache[key] = cached
}

// Clear removes all cached entries
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache = make(map[string][]types.Bar)
}

// Size returns the number of cached entries
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.cache)
}

// CachedProvider wraps another Provider with caching functionality
type CachedProvider struct {
	provider Provider
	cache    Cache
}

// NewCachedProvider creates a new cached data provider
func NewCachedProvider(provider Provider) *CachedProvider {
	return &CachedProvider{
		provider: provider,
		cache:    NewMemoryCache(),
	}
}

// NewCachedProviderWithCache creates a new cached data provider with custom cache
func NewCachedProviderWithCache(provider Provider, cache Cache) *CachedProvider {
	return &CachedProvider{
		provider: provider,
		cache:    cache,
	}
}

// GetName returns the name of the underlying provider with cache indication
func (p *CachedProvider) GetName() string {
	return "Cached " + p.provider.GetName()
}

// LoadBars loads bars with caching to avoid re-reading the same source
func (p *CachedProvider) LoadBars(source string) ([]types.Bar, error) {
	if cached, exists := p.cache.Get(source); exists {
		return cached, nil
	}

	log.Printf("🔄 Loading historical data from %s", filepath.Base(source))
	bars, err := p.provider.LoadBars(source)
	if err != nil {
		log.Printf("❌ Failed to load data from %s: %v", filepath.Base(source), err)
		return nil, err
	}

	p.cache.Set(source, bars)

	log.Printf("✅ Loaded and cached data from %s (%d bars)", filepath.Base(source), len(bars))
	return bars, nil
}

// ValidateBars validates bars using the underlying provider
func (p *CachedProvider) ValidateBars(bars []types.Bar) error {
	return p.provider.ValidateBars(bars)
}

// ClearCache clears all cached entries
func (p *CachedProvider) ClearCache() {
	p.cache.Clear()
}

// GetCacheSize returns the number of cached entries
func (p *CachedProvider) GetCacheSize() int {
	return p.cache.Size()
}
