package pattern

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/singleflight"
)

type cachedOutput struct {
	out Output
	err error
}

// ResultCache is a concurrency-safe, in-memory, per-evaluation cache of
// external command results keyed by argv and stdin. Concurrent callers with
// the same key share a single run.
type ResultCache struct {
	mu    sync.RWMutex
	store map[string]cachedOutput
	group singleflight.Group
}

// NewResultCache returns an initialized ResultCache.
func NewResultCache() *ResultCache {
	return &ResultCache{store: make(map[string]cachedOutput)}
}

// Key computes a deterministic cache key from the command and its input.
func (c *ResultCache) Key(argv []string, stdin string) string {
	h := xxh3.New()
	for _, arg := range argv {
		_, _ = h.WriteString(strconv.Itoa(len(arg)))
		_, _ = h.WriteString(":")
		_, _ = h.WriteString(arg)
	}
	_, _ = h.WriteString("|")
	_, _ = h.WriteString(stdin)
	sum := h.Sum128()
	return fmt.Sprintf("%016x%016x", sum.Hi, sum.Lo)
}

// Do returns the cached result for argv and stdin, or calls run once and
// stores its result. Timeouts are stored too: rerunning a hung command for
// another rule would only hang again.
func (c *ResultCache) Do(argv []string, stdin string, run func() (Output, error)) (Output, error) {
	key := c.Key(argv, stdin)
	if r, ok := c.get(key); ok {
		return r.out, r.err
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		if r, ok := c.get(key); ok {
			return r, nil
		}
		out, err := run()
		r := cachedOutput{out: out, err: err}
		c.set(key, r)
		return r, nil
	})
	r := v.(cachedOutput)
	return r.out, r.err
}

func (c *ResultCache) get(key string) (cachedOutput, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.store[key]
	return r, ok
}

func (c *ResultCache) set(key string, r cachedOutput) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = r
}

// Size returns the number of cached entries.
func (c *ResultCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}
