// Copyright (C) 2017 ScyllaDB

package kuduclient

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/arnaudpue/kudu/pkg/util/timeutc"
)

// ProviderFunc is a function that returns a Client for a set of master
// addresses.
type ProviderFunc func(ctx context.Context, masters []string) (Client, error)

// clientValidity specifies for how long a cached client is reused before it
// is reconnected.
const clientValidity = 15 * time.Minute

type clientTTL struct {
	client Client
	ttl    time.Time
}

// CachedProvider is a provider implementation that reuses clients.
type CachedProvider struct {
	inner    ProviderFunc
	validity time.Duration
	clients  map[string]clientTTL
	mu       sync.Mutex
}

func NewCachedProvider(f ProviderFunc) *CachedProvider {
	return &CachedProvider{
		inner:    f,
		validity: clientValidity,
		clients:  make(map[string]clientTTL),
	}
}

// Client is the cached ProviderFunc.
func (p *CachedProvider) Client(ctx context.Context, masters []string) (Client, error) {
	key := strings.Join(masters, ",")

	p.mu.Lock()
	c, ok := p.clients[key]
	p.mu.Unlock()

	// Cache hit
	if ok && c.ttl.After(timeutc.Now()) {
		return c.client, nil
	}

	// If not found or expired create a new one
	client, err := p.inner(ctx, masters)
	if err != nil {
		return nil, err
	}

	c = clientTTL{
		client: client,
		ttl:    timeutc.Now().Add(p.validity),
	}

	p.mu.Lock()
	if old, ok := p.clients[key]; ok && old.client != client {
		old.client.Close()
	}
	p.clients[key] = c
	p.mu.Unlock()

	return c.client, nil
}

// Invalidate removes the client for the given masters from cache.
func (p *CachedProvider) Invalidate(masters []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.clients, strings.Join(masters, ","))
}

// Close removes all clients and closes them to clear up any resources.
func (p *CachedProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for key, c := range p.clients {
		delete(p.clients, key)
		c.client.Close()
	}

	return nil
}
