// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package vault

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/hashicorp/vault/api"
	"k8s.io/utils/clock"

	"github.com/hashicorp/vault-credentials-resolver/internal/config"
	"github.com/hashicorp/vault-credentials-resolver/internal/consts"
	"github.com/hashicorp/vault-credentials-resolver/internal/metrics"
)

const (
	// DefaultPoolSize is the default number of pooled api.Clients.
	DefaultPoolSize = 100

	// loginExpiryOffset is subtracted from an AppRole token's TTL to decide
	// when to log in again.
	loginExpiryOffset = 5 * time.Second
)

type ClientOptions struct {
	// PoolSize is the maximum number of distinct connections kept around.
	PoolSize int
	// Clock is used to stamp SecretRecord.FetchedAt, and to track AppRole
	// token expiry.
	Clock clock.PassiveClock
}

func DefaultClientOptions() *ClientOptions {
	return &ClientOptions{
		PoolSize: DefaultPoolSize,
		Clock:    clock.RealClock{},
	}
}

// Client reads secrets from Vault. It holds no per-secret state and is
// safe for concurrent use by any number of resolvers.
type Client interface {
	// Fetch reads req from the Vault server described by cfg. Errors are
	// always one of *NotFoundError, *RejectedError, *UnreachableError, or
	// *MalformedResponseError. Fetch never retries.
	Fetch(context.Context, ReadRequest, *config.ConnectionConfig) (*SecretRecord, error)
	// Close drops all pooled connections. It is safe to be called multiple times.
	Close()
}

var _ Client = (*defaultClient)(nil)

// NewClient returns a Client, opts may be nil.
func NewClient(opts *ClientOptions) (Client, error) {
	if opts == nil {
		opts = DefaultClientOptions()
	}

	size := opts.PoolSize
	if size <= 0 {
		size = DefaultPoolSize
	}

	pool, err := newClientPool(size)
	if err != nil {
		return nil, err
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}

	return &defaultClient{
		pool:  pool,
		clock: clk,
	}, nil
}

type defaultClient struct {
	pool  *clientPool
	clock clock.PassiveClock
}

func (c *defaultClient) Fetch(ctx context.Context, req ReadRequest, cfg *config.ConnectionConfig) (*SecretRecord, error) {
	if req == nil {
		return nil, errors.New("ReadRequest was nil")
	}
	if cfg == nil {
		return nil, &UnreachableError{Err: errors.New("ConnectionConfig was nil")}
	}

	var err error
	startTS := time.Now()
	defer func() {
		observeTime(startTS, metrics.OperationRead, cfg.Address)
		incrementOperationCounter(metrics.OperationRead, cfg.Address, err)
	}()

	var record *SecretRecord
	record, err = c.fetch(ctx, req, cfg)
	return record, err
}

// Close un-initializes this Client, dropping every pooled api.Client.
func (c *defaultClient) Close() {
	c.pool.Purge()
}

func (c *defaultClient) fetch(ctx context.Context, req ReadRequest, cfg *config.ConnectionConfig) (*SecretRecord, error) {
	path := req.SecretPath()
	logger := logr.FromContextOrDiscard(ctx).WithValues("path", path, "address", cfg.Address)

	if err := cfg.Validate(); err != nil {
		return nil, &UnreachableError{
			Address: cfg.Address,
			Err:     fmt.Errorf("invalid connection config: %w", err),
		}
	}

	pc, err := c.pool.get(ctx, cfg)
	if err != nil {
		return nil, &UnreachableError{
			Address: cfg.Address,
			Err:     err,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout())
	defer cancel()

	appRole := cfg.Method() == consts.AuthMethodAppRole
	if appRole {
		if err := c.login(ctx, pc, cfg); err != nil {
			return nil, err
		}
	}

	logger.V(consts.LogLevelDebug).Info("Reading secret from Vault")
	resp, err := pc.client.Logical().ReadRawWithDataWithContext(ctx, req.Path(), req.Values())
	if resp != nil && resp.Response != nil {
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return nil, &NotFoundError{Path: path}
		}
	}
	if err != nil {
		err = classifyError(cfg.Address, path, err)
		if appRole && IsForbiddenError(err) {
			// the token may have been revoked, log in again on the next Fetch.
			pc.resetLogin()
		}
		return nil, err
	}
	if resp == nil || resp.Response == nil {
		return nil, &MalformedResponseError{Path: path, Err: errEmptyResponse}
	}

	secret, err := api.ParseSecret(resp.Body)
	if err != nil {
		return nil, classifyError(cfg.Address, path, err)
	}
	if secret == nil {
		return nil, &MalformedResponseError{Path: path, Err: errEmptyResponse}
	}

	r := req.newResponse(secret)
	d := r.Data()
	if d == nil {
		return nil, &MalformedResponseError{Path: path, Err: errMissingData}
	}

	data, err := makeRecordData(d)
	if err != nil {
		return nil, &MalformedResponseError{Path: path, Err: err}
	}

	record := NewSecretRecord(path, data, c.clock.Now())
	record.Version = r.Version()
	record.RequestID = secret.RequestID
	record.LeaseID = secret.LeaseID
	record.LeaseDuration = time.Duration(secret.LeaseDuration) * time.Second

	logger.V(consts.LogLevelTrace).Info("Read secret from Vault",
		"requestID", record.RequestID, "version", record.Version)

	return record, nil
}

// login the pooled client via AppRole, unless it already holds a token that
// is still valid.
func (c *defaultClient) login(ctx context.Context, pc *pooledClient, cfg *config.ConnectionConfig) error {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	now := c.clock.Now()
	if pc.authSecret != nil && !pc.checkExpiry(now, loginExpiryOffset) {
		return nil
	}

	var err error
	startTS := time.Now()
	defer func() {
		observeTime(startTS, metrics.OperationLogin, cfg.Address)
		incrementOperationCounter(metrics.OperationLogin, cfg.Address, err)
	}()

	path := JoinPath("auth", cfg.AppRoleMount(), "login")
	logr.FromContextOrDiscard(ctx).V(consts.LogLevelDebug).Info(
		"Logging in to Vault", "path", path, "roleID", cfg.AppRole.RoleID)

	var resp *api.Secret
	resp, err = pc.client.Logical().WriteWithContext(ctx, path, map[string]any{
		"role_id":   cfg.AppRole.RoleID,
		"secret_id": cfg.AppRole.SecretID,
	})
	if err != nil {
		err = classifyError(cfg.Address, path, err)
		return err
	}
	if resp == nil || resp.Auth == nil || resp.Auth.ClientToken == "" {
		err = &MalformedResponseError{
			Path: path,
			Err:  errors.New("login response has no client token"),
		}
		return err
	}

	pc.client.SetToken(resp.Auth.ClientToken)
	pc.authSecret = resp
	pc.lastLogin = now

	return nil
}

// checkExpiry returns true if the pooled client's token is within offset of
// its TTL. Tokens without a TTL never expire.
func (pc *pooledClient) checkExpiry(now time.Time, offset time.Duration) bool {
	ttl, err := pc.authSecret.TokenTTL()
	if err != nil {
		return true
	}
	if ttl == 0 {
		return false
	}

	horizon := ttl - offset
	if horizon < time.Second {
		// will always result in expiry
		return true
	}

	return now.After(pc.lastLogin.Add(horizon))
}

func (pc *pooledClient) resetLogin() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.authSecret = nil
	pc.lastLogin = time.Time{}
}
