package client

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"jira-mcp/internal/registry"
)

// Pool keeps one Client per credential bundle so that rate limiters and
// idle connections survive across requests.
type Pool struct {
	mu    sync.Mutex
	cache *lru.Cache
	opts  Options
}

func NewPool(size int, opts Options) (*Pool, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "creating client pool")
	}
	return &Pool{cache: cache, opts: opts}, nil
}

// Get returns the pooled client for creds, creating it on first use.
// Rotated tokens produce a new client.
func (p *Pool) Get(creds registry.Credentials) *Client {
	key := poolKey(creds)

	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.cache.Get(key); ok {
		return c.(*Client)
	}
	c := New(creds, p.opts)
	p.cache.Add(key, c)
	return c
}

func (p *Pool) Len() int {
	return p.cache.Len()
}

func poolKey(creds registry.Credentials) string {
	sum := sha256.Sum256([]byte(creds.Domain + "\x00" + creds.Email + "\x00" + creds.APIToken))
	return hex.EncodeToString(sum[:])
}
