package pipeline

import (
	"sync"

	"github.com/opendav/da-verifier/internal/record"
	"github.com/opendav/da-verifier/internal/verrors"
)

// resultCache is the single concurrent key→value map from RecordId to
// outcome the spec's concurrency model calls for: readers snapshot,
// writers overwrite freely, and a cache miss racing an in-flight
// verification produces at most one redundant verification.
type resultCache struct {
	mu      sync.RWMutex
	results map[record.Id]cachedResult
}

type cachedResult struct {
	ok   bool
	kind verrors.Kind
}

func newResultCache() *resultCache {
	return &resultCache{results: make(map[record.Id]cachedResult)}
}

func (c *resultCache) get(id record.Id) (cachedResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.results[id]
	return r, ok
}

func (c *resultCache) put(id record.Id, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		c.results[id] = cachedResult{ok: true}
		return
	}
	kind, ok := verrors.KindOf(err)
	if !ok {
		kind = verrors.Kind(err.Error())
	}
	c.results[id] = cachedResult{ok: false, kind: kind}
}

func (r cachedResult) toError() error {
	if r.ok {
		return nil
	}
	return verrors.New(r.kind, nil)
}
