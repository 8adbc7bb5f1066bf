// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"time"

	"k8s.io/utils/clock"

	"github.com/hashicorp/vault-credentials-resolver/internal/consts"
)

type Option func(*options)

type options struct {
	usernameKey string
	passwordKey string
	cacheTTL    time.Duration
	timeout     time.Duration
	maxRetries  uint64
	kvVersion   string
	mount       string
	version     int
	clock       clock.PassiveClock
}

func defaultOptions() *options {
	return &options{
		usernameKey: consts.DefaultUsernameKey,
		passwordKey: consts.DefaultPasswordKey,
		timeout:     consts.DefaultClientTimeout,
		clock:       clock.RealClock{},
	}
}

// WithUsernameKey sets the secret field holding the username. An empty key
// keeps the default.
func WithUsernameKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.usernameKey = key
		}
	}
}

// WithPasswordKey sets the secret field holding the password. An empty key
// keeps the default.
func WithPasswordKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.passwordKey = key
		}
	}
}

// WithCacheTTL enables caching of the fetched secret for ttl. A zero ttl
// disables caching, every accessor call then reads from Vault.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.cacheTTL = ttl
	}
}

// WithTimeout bounds a single resolution, including any retries.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithMaxRetries sets how many times a retryable failure is tried again.
func WithMaxRetries(n uint64) Option {
	return func(o *options) {
		o.maxRetries = n
	}
}

// WithKVv2 reads the path from a KV version 2 secrets engine mounted at mount.
func WithKVv2(mount string) Option {
	return func(o *options) {
		o.kvVersion = consts.KVSecretTypeV2
		o.mount = mount
	}
}

// WithKVv1 reads the path from a KV version 1 secrets engine mounted at mount.
func WithKVv1(mount string) Option {
	return func(o *options) {
		o.kvVersion = consts.KVSecretTypeV1
		o.mount = mount
	}
}

// WithVersion pins the KV version 2 secret version. Zero means latest.
func WithVersion(version int) Option {
	return func(o *options) {
		o.version = version
	}
}

func WithClock(clk clock.PassiveClock) Option {
	return func(o *options) {
		o.clock = clk
	}
}
