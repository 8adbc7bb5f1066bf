// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/vault-credentials-resolver/internal/consts"
)

// AppRoleConfig holds the AppRole auth method parameters.
type AppRoleConfig struct {
	// Mount is the AppRole auth mount path, defaults to "approle"
	Mount string `yaml:"mount,omitempty"`
	// RoleID of the AppRole
	RoleID string `yaml:"roleID"`
	// SecretID of the AppRole
	SecretID string `yaml:"secretID"`
}

// ConnectionConfig contains the connection and auth information needed to
// read a secret from Vault. Values are treated as immutable once handed out by
// a Provider.
type ConnectionConfig struct {
	// Address is the URL of the Vault server
	Address string `yaml:"address"`
	// Token is sent as the X-Vault-Token header when AuthMethod is "token"
	Token string `yaml:"token,omitempty"`
	// Namespace is the namespace in Vault to read from
	Namespace string `yaml:"namespace,omitempty"`
	// SkipTLSVerify controls whether the Vault server's TLS certificate is
	// verified
	SkipTLSVerify bool `yaml:"skipTLSVerify,omitempty"`
	// TLSServerName is the name to use as the SNI host when connecting via TLS
	// to Vault
	TLSServerName string `yaml:"tlsServerName,omitempty"`
	// CACert is the path to a PEM encoded CA cert file used to validate the
	// certificate presented by the Vault server
	CACert string `yaml:"caCert,omitempty"`
	// Timeout for a single request to Vault, defaults to
	// consts.DefaultClientTimeout
	Timeout time.Duration `yaml:"timeout,omitempty"`
	// AuthMethod is one of "token" or "appRole", defaults to "token"
	AuthMethod string `yaml:"authMethod,omitempty"`
	// AppRole is required when AuthMethod is "appRole"
	AppRole *AppRoleConfig `yaml:"appRole,omitempty"`
}

// Method returns the effective auth method.
func (c *ConnectionConfig) Method() string {
	if c.AuthMethod == "" {
		return consts.AuthMethodToken
	}
	return c.AuthMethod
}

// RequestTimeout returns the effective per request timeout.
func (c *ConnectionConfig) RequestTimeout() time.Duration {
	if c.Timeout <= 0 {
		return consts.DefaultClientTimeout
	}
	return c.Timeout
}

// AppRoleMount returns the effective AppRole mount path.
func (c *ConnectionConfig) AppRoleMount() string {
	if c.AppRole == nil || c.AppRole.Mount == "" {
		return consts.DefaultAppRoleMount
	}
	return c.AppRole.Mount
}

// Clone returns a deep copy of the ConnectionConfig.
func (c *ConnectionConfig) Clone() *ConnectionConfig {
	if c == nil {
		return nil
	}

	clone := *c
	if c.AppRole != nil {
		appRole := *c.AppRole
		clone.AppRole = &appRole
	}

	return &clone
}

// Validate the ConnectionConfig, all problems are reported together.
func (c *ConnectionConfig) Validate() error {
	if c == nil {
		return errors.New("connection config is nil")
	}

	var errs error
	if c.Address == "" {
		errs = errors.Join(errs, errors.New("vault address is empty"))
	}

	if c.Timeout < 0 {
		errs = errors.Join(errs, fmt.Errorf("invalid timeout %s", c.Timeout))
	}

	switch method := c.Method(); method {
	case consts.AuthMethodToken:
		if c.Token == "" {
			errs = errors.Join(errs, errors.New("vault token is empty"))
		}
	case consts.AuthMethodAppRole:
		if c.AppRole == nil {
			errs = errors.Join(errs, errors.New("appRole auth method requires an appRole config"))
			break
		}
		if c.AppRole.RoleID == "" {
			errs = errors.Join(errs, errors.New("appRole roleID is empty"))
		}
		if c.AppRole.SecretID == "" {
			errs = errors.Join(errs, errors.New("appRole secretID is empty"))
		}
	default:
		errs = errors.Join(errs, fmt.Errorf("unsupported authentication method %s", method))
	}

	return errs
}
