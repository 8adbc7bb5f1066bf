// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package credentials

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/hashicorp/vault-credentials-resolver/internal/consts"
	"github.com/hashicorp/vault-credentials-resolver/internal/resolver"
)

const (
	ScopeGlobal = "global"
	ScopeSystem = "system"
)

var scopesSupported = []string{ScopeGlobal, ScopeSystem}

// Credential describes a username/password pair stored in Vault.
type Credential struct {
	ID          string        `yaml:"id,omitempty"`
	Scope       string        `yaml:"scope,omitempty"`
	Description string        `yaml:"description,omitempty"`
	Path        string        `yaml:"path"`
	UsernameKey string        `yaml:"usernameKey,omitempty"`
	PasswordKey string        `yaml:"passwordKey,omitempty"`
	KVVersion   string        `yaml:"kvVersion,omitempty"`
	Mount       string        `yaml:"mount,omitempty"`
	Version     int           `yaml:"version,omitempty"`
	CacheTTL    time.Duration `yaml:"cacheTTL,omitempty"`
}

// NewCredential returns a Credential for path with all defaults applied.
func NewCredential(path string) *Credential {
	c := &Credential{Path: path}
	c.SetDefaults()
	return c
}

// SetDefaults fills in the ID, scope and field keys when they are unset.
func (c *Credential) SetDefaults() {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Scope == "" {
		c.Scope = ScopeGlobal
	}
	if c.UsernameKey == "" {
		c.UsernameKey = consts.DefaultUsernameKey
	}
	if c.PasswordKey == "" {
		c.PasswordKey = consts.DefaultPasswordKey
	}
}

func (c *Credential) DisplayName() string {
	return c.Path
}

func (c *Credential) Validate() error {
	var errs error
	if c.ID == "" {
		errs = errors.Join(errs, errors.New("credential ID is empty"))
	}
	if c.Path == "" {
		errs = errors.Join(errs, errors.New("credential path is empty"))
	}
	if c.Scope != "" && !slices.Contains(scopesSupported, c.Scope) {
		errs = errors.Join(errs, fmt.Errorf("unsupported scope %q", c.Scope))
	}
	switch c.KVVersion {
	case "", consts.KVSecretTypeV1, consts.KVSecretTypeV2:
	default:
		errs = errors.Join(errs, fmt.Errorf("unsupported kvVersion %q", c.KVVersion))
	}
	if c.Version != 0 && c.KVVersion != consts.KVSecretTypeV2 {
		errs = errors.Join(errs, fmt.Errorf("version requires kvVersion %s", consts.KVSecretTypeV2))
	}
	if c.Version < 0 {
		errs = errors.Join(errs, fmt.Errorf("invalid version %d", c.Version))
	}
	if c.CacheTTL < 0 {
		errs = errors.Join(errs, fmt.Errorf("invalid cacheTTL %s", c.CacheTTL))
	}

	if errs != nil {
		return fmt.Errorf("invalid credential %q: %w", c.ID, errs)
	}
	return nil
}

// ResolverOptions converts the Credential into resolver options. A zero
// CacheTTL leaves any caching configured by the caller in place.
func (c *Credential) ResolverOptions() []resolver.Option {
	opts := []resolver.Option{
		resolver.WithUsernameKey(c.UsernameKey),
		resolver.WithPasswordKey(c.PasswordKey),
	}
	if c.CacheTTL > 0 {
		opts = append(opts, resolver.WithCacheTTL(c.CacheTTL))
	}

	switch c.KVVersion {
	case consts.KVSecretTypeV2:
		opts = append(opts, resolver.WithKVv2(c.Mount), resolver.WithVersion(c.Version))
	case consts.KVSecretTypeV1:
		opts = append(opts, resolver.WithKVv1(c.Mount))
	}

	return opts
}
