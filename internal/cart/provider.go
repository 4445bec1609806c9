package cart

import (
	"context"
	"sync"
	"time"

	"github.com/imrishuroy/avenge-storefront/internal/slot"
)

// Provider hands out one Store per session. It is built once at startup and shared by the
// handlers. The slot stays authoritative: a cached Store is refreshed from it on every Open, so
// writes from other instances are never overwritten with a stale cart. The cache only keeps a
// session's in-memory cart alive for an idle TTL while the slot is failing; a TTL of zero
// disables it and every Open loads a fresh Store.
type Provider struct {
	slot      slot.Slot
	namespace string
	ttl       time.Duration
	opts      []Option
	nowFunc   func() time.Time

	mu        sync.Mutex
	entries   map[string]*entry
	lastSweep time.Time
}

type entry struct {
	store    *Store
	lastUsed time.Time
}

func NewProvider(sl slot.Slot, namespace string, ttl time.Duration, opts ...Option) *Provider {
	return &Provider{
		slot:      sl,
		namespace: namespace,
		ttl:       ttl,
		opts:      opts,
		nowFunc:   time.Now,
		entries:   map[string]*entry{},
	}
}

// Open returns the Store for sessionID with its state read from the slot.
func (p *Provider) Open(ctx context.Context, sessionID string) *Store {
	key := slot.Key(p.namespace, sessionID)
	if p.ttl <= 0 {
		return Load(ctx, p.slot, key, p.opts...)
	}

	p.mu.Lock()
	now := p.nowFunc()
	p.evictLocked(now)
	if e, ok := p.entries[key]; ok && now.Sub(e.lastUsed) <= p.ttl {
		e.lastUsed = now
		p.mu.Unlock()
		e.store.Refresh(ctx)
		return e.store
	}
	p.mu.Unlock()

	loaded := Load(ctx, p.slot, key, p.opts...)

	p.mu.Lock()
	defer p.mu.Unlock()
	// another request for the same session may have loaded it meanwhile
	if e, ok := p.entries[key]; ok && now.Sub(e.lastUsed) <= p.ttl {
		e.lastUsed = now
		return e.store
	}
	p.entries[key] = &entry{store: loaded, lastUsed: now}
	return loaded
}

// Len reports the number of cached stores.
func (p *Provider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// evictLocked drops idle stores, sweeping at most once per TTL.
func (p *Provider) evictLocked(now time.Time) {
	if now.Sub(p.lastSweep) < p.ttl {
		return
	}
	p.lastSweep = now
	for k, e := range p.entries {
		if now.Sub(e.lastUsed) > p.ttl {
			delete(p.entries, k)
		}
	}
}
