// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-logr/logr"
	"golang.org/x/sync/singleflight"
	"k8s.io/utils/clock"

	"github.com/hashicorp/vault-credentials-resolver/internal/config"
	"github.com/hashicorp/vault-credentials-resolver/internal/consts"
	"github.com/hashicorp/vault-credentials-resolver/internal/metrics"
	"github.com/hashicorp/vault-credentials-resolver/internal/vault"
)

const flightKey = "fetch"

// Credential is a resolved username and password pair.
type Credential struct {
	Username string
	Password string
}

type cacheEntry struct {
	record    *vault.SecretRecord
	expiresAt time.Time
}

// Resolver reads a username/password secret from Vault on first use.
// Concurrent callers share a single in-flight fetch. When a cache TTL is set
// the fetched secret is served until it expires, after which the next access
// reads from Vault again. A failed fetch never falls back to an older record.
type Resolver struct {
	path        string
	usernameKey string
	passwordKey string
	cacheTTL    time.Duration
	timeout     time.Duration
	maxRetries  uint64
	request     vault.ReadRequest
	provider    config.Provider
	client      vault.Client
	clock       clock.PassiveClock

	group singleflight.Group
	entry atomic.Pointer[cacheEntry]
}

// New returns a Resolver for the secret at path. No request is made to Vault
// until one of the accessors is called.
func New(path string, provider config.Provider, client vault.Client, opts ...Option) (*Resolver, error) {
	if path == "" {
		return nil, errors.New("secret path is empty")
	}
	if provider == nil {
		return nil, errors.New("connection config provider is nil")
	}
	if client == nil {
		return nil, errors.New("vault client is nil")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if o.cacheTTL < 0 {
		return nil, fmt.Errorf("invalid cache TTL %s", o.cacheTTL)
	}
	if o.timeout <= 0 {
		return nil, fmt.Errorf("invalid timeout %s", o.timeout)
	}
	if o.version < 0 {
		return nil, fmt.Errorf("invalid secret version %d", o.version)
	}

	var request vault.ReadRequest
	switch o.kvVersion {
	case consts.KVSecretTypeV2:
		request = vault.NewKVReadRequestV2(mountOrDefault(o.mount), path, o.version)
	case consts.KVSecretTypeV1:
		if o.version > 0 {
			return nil, fmt.Errorf("secret version is not supported by %s", consts.KVSecretTypeV1)
		}
		request = vault.NewKVReadRequestV1(mountOrDefault(o.mount), path)
	default:
		if o.version > 0 {
			return nil, errors.New("secret version requires a kv-v2 mount")
		}
		request = vault.NewReadRequest(path, nil)
	}

	return &Resolver{
		path:        path,
		usernameKey: o.usernameKey,
		passwordKey: o.passwordKey,
		cacheTTL:    o.cacheTTL,
		timeout:     o.timeout,
		maxRetries:  o.maxRetries,
		request:     request,
		provider:    provider,
		client:      client,
		clock:       o.clock,
	}, nil
}

func (r *Resolver) Path() string {
	return r.path
}

func (r *Resolver) UsernameKey() string {
	return r.usernameKey
}

func (r *Resolver) PasswordKey() string {
	return r.passwordKey
}

// Username returns the value of the username field.
func (r *Resolver) Username(ctx context.Context) (string, error) {
	return r.field(ctx, r.usernameKey)
}

// Password returns the value of the password field.
func (r *Resolver) Password(ctx context.Context) (string, error) {
	return r.field(ctx, r.passwordKey)
}

// Credential returns both fields from one secret record.
func (r *Resolver) Credential(ctx context.Context) (*Credential, error) {
	record, err := r.Record(ctx)
	if err != nil {
		return nil, err
	}
	return r.CredentialFrom(record)
}

// CredentialFrom extracts both fields from a record returned by Record.
func (r *Resolver) CredentialFrom(record *vault.SecretRecord) (*Credential, error) {
	username, err := r.lookup(record, r.usernameKey)
	if err != nil {
		return nil, err
	}
	password, err := r.lookup(record, r.passwordKey)
	if err != nil {
		return nil, err
	}

	return &Credential{
		Username: username,
		Password: password,
	}, nil
}

// Invalidate drops the cached record, the next access reads from Vault.
func (r *Resolver) Invalidate() {
	r.entry.Store(nil)
}

// Record returns the secret record, from the cache when it is still valid.
// Errors are always of type *BackendError.
func (r *Resolver) Record(ctx context.Context) (*vault.SecretRecord, error) {
	if record := r.cached(); record != nil {
		resolverRequests.WithLabelValues(metrics.ResultHit).Inc()
		return record, nil
	}

	var leader, hit bool
	ch := r.group.DoChan(flightKey, func() (any, error) {
		leader = true
		// a previous flight may have filled the cache since the check above
		if record := r.cached(); record != nil {
			hit = true
			return record, nil
		}
		return r.fetch(ctx)
	})

	select {
	case res := <-ch:
		switch {
		case hit:
			resolverRequests.WithLabelValues(metrics.ResultHit).Inc()
		case leader:
			resolverRequests.WithLabelValues(metrics.ResultMiss).Inc()
		default:
			resolverRequests.WithLabelValues(metrics.ResultCoalesced).Inc()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*vault.SecretRecord), nil
	case <-ctx.Done():
		return nil, &BackendError{
			Path: r.path,
			Err:  &vault.UnreachableError{Err: ctx.Err()},
		}
	}
}

func (r *Resolver) field(ctx context.Context, key string) (string, error) {
	record, err := r.Record(ctx)
	if err != nil {
		return "", err
	}
	return r.lookup(record, key)
}

func (r *Resolver) lookup(record *vault.SecretRecord, key string) (string, error) {
	v, ok := record.Get(key)
	if !ok {
		return "", &FieldNotFoundError{
			Path: r.path,
			Key:  key,
		}
	}
	return v, nil
}

func (r *Resolver) cached() *vault.SecretRecord {
	if r.cacheTTL <= 0 {
		return nil
	}

	entry := r.entry.Load()
	if entry == nil || !r.clock.Now().Before(entry.expiresAt) {
		return nil
	}
	return entry.record
}

// fetch runs detached from the caller's cancellation so that callers joining
// the flight are not failed by the leader going away.
func (r *Resolver) fetch(ctx context.Context) (*vault.SecretRecord, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	logger := logr.FromContextOrDiscard(ctx).WithName("resolver").WithValues("path", r.path)

	var record *vault.SecretRecord
	operation := func() error {
		cfg, err := r.provider.ConnectionConfig(ctx)
		if err != nil {
			return backoff.Permanent(&vault.UnreachableError{
				Err: fmt.Errorf("failed to get connection config: %w", err),
			})
		}

		rec, err := r.client.Fetch(ctx, r.request, cfg)
		if err != nil {
			if vault.IsRetryableError(err) {
				return err
			}
			return backoff.Permanent(err)
		}

		record = rec
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewExponentialBackOff(
				backoff.WithInitialInterval(250*time.Millisecond),
				backoff.WithMaxInterval(2*time.Second),
			),
			r.maxRetries,
		),
		ctx,
	)

	if err := backoff.RetryNotify(operation, bo, func(err error, d time.Duration) {
		logger.V(consts.LogLevelDebug).Info("Retrying secret read", "error", err, "backoff", d)
	}); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			if !vault.IsUnreachableError(err) {
				err = &vault.UnreachableError{Err: err}
			}
		}
		logger.Error(err, "Failed to read secret")
		return nil, &BackendError{
			Path: r.path,
			Err:  err,
		}
	}

	if r.cacheTTL > 0 {
		r.entry.Store(&cacheEntry{
			record:    record,
			expiresAt: r.clock.Now().Add(r.cacheTTL),
		})
	}

	logger.V(consts.LogLevelDebug).Info("Read secret", "version", record.Version, "keys", record.Keys())
	return record, nil
}

func mountOrDefault(mount string) string {
	if mount == "" {
		return consts.DefaultKVMount
	}
	return mount
}
