// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package vault

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/vault/api"

	"github.com/hashicorp/vault-credentials-resolver/internal/config"
)

// pooledClient is an api.Client together with its login state. Only the
// AppRole auth method ever updates the login state.
type pooledClient struct {
	client     *api.Client
	address    string
	authSecret *api.Secret
	lastLogin  time.Time
	mu         sync.Mutex
}

// clientPool keeps api.Clients, and therefore their HTTP connections, around
// for reuse across resolvers. The pool size is fixed, the least recently used
// client is dropped first.
type clientPool struct {
	cache *lru.Cache[ClientPoolKey, *pooledClient]
	// newClient is swapped out in tests.
	newClient func(context.Context, *config.ConnectionConfig) (*api.Client, error)
	mu        sync.Mutex
}

// get returns the pooledClient for cfg, creating it on first use.
func (p *clientPool) get(ctx context.Context, cfg *config.ConnectionConfig) (*pooledClient, error) {
	key, err := ComputeClientPoolKey(cfg)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.cache.Get(key); ok {
		poolHits.Inc()
		return c, nil
	}
	poolMisses.Inc()

	vc, err := p.newClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	c := &pooledClient{
		client:  vc,
		address: cfg.Address,
	}
	p.cache.Add(key, c)
	poolLength.Set(float64(p.cache.Len()))

	return c, nil
}

// Len returns the length/size of the pool.
func (p *clientPool) Len() int {
	return p.cache.Len()
}

// Purge drops every pooled client.
func (p *clientPool) Purge() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cache.Purge()
	poolLength.Set(0)
}

func newClientPool(size int) (*clientPool, error) {
	cache, err := lru.NewWithEvict[ClientPoolKey, *pooledClient](size, func(_ ClientPoolKey, _ *pooledClient) {
		poolEvictions.Inc()
	})
	if err != nil {
		return nil, err
	}

	return &clientPool{
		cache:     cache,
		newClient: MakeVaultClient,
	}, nil
}
