package funcs

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/go-fhirpath/fhirpath/pkg/fhirpath/eval"
)

// RegexCache compiles and caches regexp.Regexp values used by matches()
// and replaceMatches(), with LRU eviction, a pattern-length cap, and a
// coarse complexity check, since those functions take user-controlled
// patterns and an unbounded one can turn into catastrophic backtracking.
type RegexCache struct {
	mu      sync.RWMutex
	cache   map[string]*regexEntry
	order   []string
	limit   int
	maxLen  int
	timeout time.Duration
}

type regexEntry struct {
	re       *regexp.Regexp
	lastUsed time.Time
}

// DefaultRegexCache backs every matches()/replaceMatches() call in this package.
var DefaultRegexCache = NewRegexCache(500, 1000, 100*time.Millisecond)

// NewRegexCache builds a cache holding at most limit compiled patterns, no
// longer than maxLen characters each, with timeout bounding any single
// match/replace call that doesn't have a shorter deadline of its own.
func NewRegexCache(limit, maxLen int, timeout time.Duration) *RegexCache {
	return &RegexCache{
		cache:   make(map[string]*regexEntry),
		order:   make([]string, 0, limit),
		limit:   limit,
		maxLen:  maxLen,
		timeout: timeout,
	}
}

// Compile returns a cached compilation of pattern, validating its length
// and structural complexity first.
func (c *RegexCache) Compile(pattern string) (*regexp.Regexp, error) {
	if len(pattern) > c.maxLen {
		return nil, eval.NewEvalError(eval.ErrInvalidExpression,
			"regex pattern too long (max %d characters)", c.maxLen)
	}
	if err := validateRegexComplexity(pattern); err != nil {
		return nil, err
	}

	c.mu.RLock()
	if entry, ok := c.cache[pattern]; ok {
		entry.lastUsed = time.Now()
		c.mu.RUnlock()
		return entry.re, nil
	}
	c.mu.RUnlock()

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, eval.NewEvalError(eval.ErrInvalidExpression, "invalid regex: %s", err.Error())
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.cache[pattern]; ok {
		return entry.re, nil
	}
	if len(c.cache) >= c.limit {
		c.evictLRU()
	}
	c.cache[pattern] = &regexEntry{re: re, lastUsed: time.Now()}
	c.order = append(c.order, pattern)

	return re, nil
}

// evictLRU drops the least recently used cached pattern. Caller must hold
// the write lock.
func (c *RegexCache) evictLRU() {
	if len(c.order) == 0 {
		return
	}

	oldest, oldestIdx := c.order[0], 0
	oldestTime := c.cache[oldest].lastUsed
	for i, pattern := range c.order {
		if entry, ok := c.cache[pattern]; ok && entry.lastUsed.Before(oldestTime) {
			oldest, oldestIdx, oldestTime = pattern, i, entry.lastUsed
		}
	}

	delete(c.cache, oldest)
	c.order = append(c.order[:oldestIdx], c.order[oldestIdx+1:]...)
}

// shortInputLen is the input length below which a regex operation runs
// directly rather than paying for a goroutine + select: backtracking blowup
// needs enough input to matter, and most FHIRPath string values are short.
const shortInputLen = 1000

// MatchWithTimeout compiles pattern (via the cache) and matches it against
// s, bounded by ctx's deadline or the cache's default timeout.
func (c *RegexCache) MatchWithTimeout(ctx context.Context, pattern, s string) (bool, error) {
	re, err := c.Compile(pattern)
	if err != nil {
		return false, err
	}
	if len(s) < shortInputLen {
		return re.MatchString(s), nil
	}
	return runBounded(ctx, c.timeout, "regex match timeout exceeded", func() bool {
		return re.MatchString(s)
	})
}

// ReplaceWithTimeout compiles pattern (via the cache) and replaces every
// match in s with replacement, bounded the same way MatchWithTimeout is.
func (c *RegexCache) ReplaceWithTimeout(ctx context.Context, pattern, s, replacement string) (string, error) {
	re, err := c.Compile(pattern)
	if err != nil {
		return "", err
	}
	if len(s) < shortInputLen {
		return re.ReplaceAllString(s, replacement), nil
	}
	return runBounded(ctx, c.timeout, "regex replace timeout exceeded", func() string {
		return re.ReplaceAllString(s, replacement)
	})
}

// runBounded runs work on its own goroutine and returns its result, unless
// ctx is cancelled or the effective timeout (the shorter of timeout and
// ctx's own deadline) elapses first, in which case it returns a timeout
// error without waiting for work to finish.
func runBounded[T any](ctx context.Context, timeout time.Duration, timeoutMsg string, work func() T) (T, error) {
	var zero T

	done := make(chan T, 1)
	go func() { done <- work() }()

	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	select {
	case result := <-done:
		return result, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-time.After(timeout):
		return zero, eval.NewEvalError(eval.ErrTimeout, timeoutMsg)
	}
}

// Clear empties the cache.
func (c *RegexCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*regexEntry)
	c.order = make([]string, 0, c.limit)
}

// Size reports the number of cached patterns.
func (c *RegexCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// validateRegexComplexity rejects patterns with structural markers of
// catastrophic backtracking: runs of consecutive quantifiers, and
// excessive group nesting.
func validateRegexComplexity(pattern string) error {
	var (
		groupDepth    int
		maxGroupDepth int
		prevWasQuant  bool
	)

	for _, ch := range pattern {
		switch ch {
		case '(':
			groupDepth++
			if groupDepth > maxGroupDepth {
				maxGroupDepth = groupDepth
			}
		case ')':
			if groupDepth > 0 {
				groupDepth--
			}
		case '*', '+', '?', '{':
			if prevWasQuant {
				return eval.NewEvalError(eval.ErrInvalidExpression,
					"potentially dangerous regex: consecutive quantifiers")
			}
			prevWasQuant = true
		default:
			prevWasQuant = false
		}
	}

	if maxGroupDepth > 5 {
		return eval.NewEvalError(eval.ErrInvalidExpression,
			"regex has too much nesting (max depth 5)")
	}
	return nil
}
