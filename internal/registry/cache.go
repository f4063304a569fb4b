package registry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"

	"jira-mcp/internal/metrics"
)

// CachingResolver memoizes successful lookups of another resolver. Keys are
// stored hashed; failures are never cached.
type CachingResolver struct {
	next  Resolver
	cache *cache.Cache
}

func NewCachingResolver(next Resolver, ttl time.Duration) *CachingResolver {
	return &CachingResolver{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (r *CachingResolver) Resolve(ctx context.Context, apiKey string) (*Credentials, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	key := hashKey(apiKey)
	if cached, found := r.cache.Get(key); found {
		if creds, ok := cached.(Credentials); ok {
			metrics.RecordRegistryLookup(metrics.OutcomeHit)
			return &creds, nil
		}
	}

	creds, err := r.next.Resolve(ctx, apiKey)
	switch {
	case err == nil:
		metrics.RecordRegistryLookup(metrics.OutcomeMiss)
	case errors.Is(err, ErrUnknownAPIKey):
		metrics.RecordRegistryLookup(metrics.OutcomeUnknown)
		return nil, err
	default:
		metrics.RecordRegistryLookup(metrics.OutcomeError)
		return nil, err
	}

	r.cache.SetDefault(key, *creds)
	return creds, nil
}

// Forget drops the cached entry for apiKey.
func (r *CachingResolver) Forget(apiKey string) {
	r.cache.Delete(hashKey(apiKey))
}

func hashKey(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}
