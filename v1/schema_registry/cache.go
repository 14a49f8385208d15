package schema_registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Aleph-Alpha/avroframe/v1/avro"
)

// Observer is notified about cache lookups and registry fetches.
// Implementations must be safe for concurrent use.
type Observer interface {
	// ObserveLookup is called once per Resolve with whether it was served from cache.
	ObserveLookup(id uint32, hit bool)

	// ObserveFetch is called after every registry fetch.
	ObserveFetch(id uint32, duration time.Duration, err error)

	// ObserveCacheSize is called with the number of cached schemas after an insert or purge.
	ObserveCacheSize(n int)
}

// Logger defines the logging methods used by the cache.
type Logger interface {
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
}

// Cache resolves schema ids to parsed schemas, fetching from the registry on
// a miss and keeping every successfully parsed schema for its lifetime.
//
// Only successes are cached. A failed fetch or an unparsable document leaves
// the id absent, so the next Resolve for it tries the registry again.
//
// Concurrent Resolve calls for the same missing id share one fetch. The
// cache-wide lock is never held while a fetch is in flight, so other ids stay
// resolvable.
//
// The cache is unbounded: schema id cardinality is operator controlled and
// small in practice. Purge exists for manual invalidation, not as an eviction
// policy.
type Cache struct {
	fetcher Fetcher

	mu      sync.RWMutex
	schemas map[uint32]*avro.Schema

	// purges counts Purge calls per id so a fetch that started before a
	// purge does not repopulate the cache.
	purges map[uint32]uint64

	inflight singleflight.Group

	observer Observer
	logger   Logger
}

// NewCache creates an empty cache backed by fetcher.
func NewCache(fetcher Fetcher) *Cache {
	return &Cache{
		fetcher: fetcher,
		schemas: make(map[uint32]*avro.Schema),
		purges:  make(map[uint32]uint64),
	}
}

// WithObserver attaches an observer to the cache for tracking lookups and fetches.
// This method uses the builder pattern and returns the cache for method chaining.
func (c *Cache) WithObserver(observer Observer) *Cache {
	c.observer = observer
	return c
}

// WithLogger attaches a logger to the cache.
func (c *Cache) WithLogger(logger Logger) *Cache {
	c.logger = logger
	return c
}

// Resolve returns the schema for id.
//
// On a hit it returns immediately without I/O. On a miss it fetches the
// document, parses it and stores the result.
//
// Errors:
//   - ErrFetchFailed (plus ErrTimeout on deadlines) when the fetch fails or
//     ctx is done before the shared fetch finishes
//   - ErrMalformedDocument when the document is not {"schema": "<text>"}
//   - ErrInvalidSchema (wrapping the avro error) when the schema text is invalid
//
// The shared fetch is detached from the cancellation of any single caller;
// it is bounded by the Fetcher's own timeout.
func (c *Cache) Resolve(ctx context.Context, id uint32) (*avro.Schema, error) {
	if s, ok := c.get(id); ok {
		c.observeLookup(id, true)
		return s, nil
	}
	c.observeLookup(id, false)

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.inflight.DoChan(flightKey(id), func() (interface{}, error) {
		if s, ok := c.get(id); ok {
			return s, nil
		}
		return c.load(fetchCtx, id)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*avro.Schema), nil
	case <-ctx.Done():
		err := ctx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: schema %d: %w: %w", ErrFetchFailed, id, ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: schema %d: %w", ErrFetchFailed, id, err)
	}
}

// Len returns the number of cached schemas.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.schemas)
}

// Purge removes id from the cache so the next Resolve fetches it again.
// It reports whether the id was cached.
//
// A fetch for id that is already in flight still answers its waiters, but
// its result is not cached, and later Resolve calls start a new fetch.
func (c *Cache) Purge(id uint32) bool {
	c.mu.Lock()
	_, ok := c.schemas[id]
	delete(c.schemas, id)
	c.purges[id]++
	n := len(c.schemas)
	c.mu.Unlock()

	c.inflight.Forget(flightKey(id))

	if ok && c.observer != nil {
		c.observer.ObserveCacheSize(n)
	}
	return ok
}

func (c *Cache) get(id uint32) (*avro.Schema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.schemas[id]
	return s, ok
}

func (c *Cache) load(ctx context.Context, id uint32) (*avro.Schema, error) {
	c.mu.RLock()
	generation := c.purges[id]
	c.mu.RUnlock()

	start := time.Now()
	doc, err := c.fetcher.Fetch(ctx, id)
	if c.observer != nil {
		c.observer.ObserveFetch(id, time.Since(start), err)
	}
	if err != nil {
		c.warn("Schema fetch failed", err, id)
		return nil, fmt.Errorf("%w: schema %d: %w", ErrFetchFailed, id, err)
	}

	text, err := schemaText(doc)
	if err != nil {
		c.warn("Schema document malformed", err, id)
		return nil, fmt.Errorf("schema %d: %w", id, err)
	}

	schema, err := avro.Parse(text)
	if err != nil {
		c.warn("Schema definition invalid", err, id)
		return nil, fmt.Errorf("%w: schema %d: %w", ErrInvalidSchema, id, err)
	}

	c.mu.Lock()
	if c.purges[id] != generation {
		c.mu.Unlock()
		if c.logger != nil {
			c.logger.Debug("Schema purged during fetch, not cached", nil, map[string]interface{}{"schema_id": id})
		}
		return schema, nil
	}
	c.schemas[id] = schema
	n := len(c.schemas)
	c.mu.Unlock()

	if c.observer != nil {
		c.observer.ObserveCacheSize(n)
	}
	if c.logger != nil {
		c.logger.Debug("Schema cached", nil, map[string]interface{}{
			"schema_id":   id,
			"schema_type": schema.String(),
			"cached":      n,
		})
	}
	return schema, nil
}

func flightKey(id uint32) string {
	return strconv.FormatUint(uint64(id), 10)
}

// schemaText extracts the "schema" string from a registry document.
func schemaText(doc []byte) (string, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(doc, &envelope); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if envelope == nil {
		return "", fmt.Errorf("%w: document is null", ErrMalformedDocument)
	}

	raw, ok := envelope["schema"]
	if !ok {
		return "", fmt.Errorf("%w: no \"schema\" field", ErrMalformedDocument)
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", fmt.Errorf("%w: \"schema\" is not a string", ErrMalformedDocument)
	}
	if text == "" {
		return "", fmt.Errorf("%w: \"schema\" is empty", ErrMalformedDocument)
	}
	return text, nil
}

func (c *Cache) observeLookup(id uint32, hit bool) {
	if c.observer != nil {
		c.observer.ObserveLookup(id, hit)
	}
}

func (c *Cache) warn(msg string, err error, id uint32) {
	if c.logger != nil {
		c.logger.Warn(msg, err, map[string]interface{}{"schema_id": id})
	}
}
