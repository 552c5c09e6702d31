package fhirpath

import (
	"container/list"
	"sync"
	"time"
)

// ExpressionCache is a thread-safe, size-bounded cache of compiled
// Expressions with LRU eviction, so that evaluating the same expression
// string against many resources only pays the lex/parse cost once.
type ExpressionCache struct {
	mu      sync.RWMutex
	cache   map[string]*cacheEntry
	lruList *list.List // front = most recently used
	limit   int
	hits    int64
	misses  int64
}

type cacheEntry struct {
	expr     *Expression
	key      string
	element  *list.Element
	lastUsed time.Time
}

// CacheStats is a snapshot of an ExpressionCache's usage.
type CacheStats struct {
	Size   int
	Limit  int
	Hits   int64
	Misses int64
}

// NewExpressionCache builds a cache holding at most limit compiled
// expressions; limit<=0 means unbounded.
func NewExpressionCache(limit int) *ExpressionCache {
	return &ExpressionCache{
		cache:   make(map[string]*cacheEntry),
		lruList: list.New(),
		limit:   limit,
	}
}

// Get returns expr's compiled form, compiling and caching it on a miss.
func (c *ExpressionCache) Get(expr string) (*Expression, error) {
	if compiled, ok := c.promote(expr); ok {
		return compiled, nil
	}

	compiled, err := Compile(expr)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have compiled and inserted expr while this one
	// held no lock between the promote attempt above and here.
	if entry, ok := c.cache[expr]; ok {
		c.lruList.MoveToFront(entry.element)
		entry.lastUsed = time.Now()
		return entry.expr, nil
	}

	c.misses++
	if c.limit > 0 && len(c.cache) >= c.limit {
		c.evictLRU()
	}

	entry := &cacheEntry{expr: compiled, key: expr, lastUsed: time.Now()}
	entry.element = c.lruList.PushFront(entry)
	c.cache[expr] = entry

	return compiled, nil
}

// promote reports a cache hit for expr, moving it to the front of the LRU
// list and bumping the hit counter; ok is false on a miss, with no
// counters touched (Get charges the miss once it actually compiles).
func (c *ExpressionCache) promote(expr string) (*Expression, bool) {
	c.mu.RLock()
	entry, ok := c.cache[expr]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	c.mu.Lock()
	c.lruList.MoveToFront(entry.element)
	entry.lastUsed = time.Now()
	c.hits++
	c.mu.Unlock()
	return entry.expr, true
}

// evictLRU drops the least recently used entry. Caller must hold the write
// lock.
func (c *ExpressionCache) evictLRU() {
	oldest := c.lruList.Back()
	if oldest == nil {
		return
	}
	entry := oldest.Value.(*cacheEntry)
	c.lruList.Remove(oldest)
	delete(c.cache, entry.key)
}

// MustGet is like Get but panics on error; for use with expressions known
// to be valid at compile time.
func (c *ExpressionCache) MustGet(expr string) *Expression {
	compiled, err := c.Get(expr)
	if err != nil {
		panic(err)
	}
	return compiled
}

// Clear empties the cache and resets its hit/miss counters.
func (c *ExpressionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*cacheEntry)
	c.lruList = list.New()
	c.hits = 0
	c.misses = 0
}

// Size reports the number of cached expressions.
func (c *ExpressionCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Stats returns a snapshot of the cache's current size and hit/miss counts.
func (c *ExpressionCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{
		Size:   len(c.cache),
		Limit:  c.limit,
		Hits:   c.hits,
		Misses: c.misses,
	}
}

// HitRate returns the cache hit rate as a percentage in [0, 100].
func (c *ExpressionCache) HitRate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total) * 100
}

// DefaultCache is the package-wide expression cache backing
// GetCached/EvaluateCached; construct a dedicated ExpressionCache instead
// when a caller needs its own eviction policy or lifetime.
var DefaultCache = NewExpressionCache(1000)

// GetCached retrieves or compiles expr using DefaultCache.
func GetCached(expr string) (*Expression, error) {
	return DefaultCache.Get(expr)
}

// MustGetCached is like GetCached but panics on error.
func MustGetCached(expr string) *Expression {
	return DefaultCache.MustGet(expr)
}

// EvaluateCached compiles expr (via DefaultCache) and evaluates it against
// resource; the recommended entry point when the same expression will run
// repeatedly across many resources.
func EvaluateCached(resource []byte, expr string) (Collection, error) {
	compiled, err := DefaultCache.Get(expr)
	if err != nil {
		return nil, err
	}
	return compiled.Evaluate(resource)
}
