package domain

import (
	"context"
	"sync/atomic"
)

type queryUsageKey struct{}

// QueryUsage accounts the embedding work behind one retrieval request. The
// HTTP handler attaches it, the embedding decorators fill it in, and the
// handler reports it in the X-Embedding-* response headers.
type QueryUsage struct {
	tokens    atomic.Int64
	embedded  atomic.Bool
	cacheHits atomic.Int64
}

// WithQueryUsage returns a context carrying a fresh usage record.
func WithQueryUsage(ctx context.Context) (context.Context, *QueryUsage) {
	u := &QueryUsage{}
	return context.WithValue(ctx, queryUsageKey{}, u), u
}

// QueryUsageFrom returns the usage record attached to ctx, or nil.
// All methods are no-ops on nil.
func QueryUsageFrom(ctx context.Context) *QueryUsage {
	u, _ := ctx.Value(queryUsageKey{}).(*QueryUsage)
	return u
}

// RecordTokens marks the query as embedded and adds provider tokens.
// A cache hit records 0.
func (u *QueryUsage) RecordTokens(n int) {
	if u == nil {
		return
	}
	u.tokens.Add(int64(n))
	u.embedded.Store(true)
}

// RecordCacheHit counts a vector served from the embedding cache.
func (u *QueryUsage) RecordCacheHit() {
	if u != nil {
		u.cacheHits.Add(1)
	}
}

// Tokens returns the provider tokens spent.
func (u *QueryUsage) Tokens() int64 {
	if u == nil {
		return 0
	}
	return u.tokens.Load()
}

// Embedded reports whether any embedding was produced.
func (u *QueryUsage) Embedded() bool {
	return u != nil && u.embedded.Load()
}

// CacheHits returns how many vectors came from the cache.
func (u *QueryUsage) CacheHits() int64 {
	if u == nil {
		return 0
	}
	return u.cacheHits.Load()
}
