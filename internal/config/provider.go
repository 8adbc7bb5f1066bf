// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Provider supplies the current ConnectionConfig. Callers must ask for the
// value each time they need it rather than holding on to it, so that changes
// made by an administrator are picked up without rebuilding anything.
type Provider interface {
	ConnectionConfig(context.Context) (*ConnectionConfig, error)
}

var (
	_ Provider = (ProviderFunc)(nil)
	_ Provider = (*StaticProvider)(nil)
	_ Provider = (*EnvProvider)(nil)
	_ Provider = (*FileProvider)(nil)
)

// ProviderFunc adapts a function to a Provider.
type ProviderFunc func(context.Context) (*ConnectionConfig, error)

func (f ProviderFunc) ConnectionConfig(ctx context.Context) (*ConnectionConfig, error) {
	return f(ctx)
}

// StaticProvider always returns a copy of the same ConnectionConfig.
type StaticProvider struct {
	config *ConnectionConfig
}

func (p *StaticProvider) ConnectionConfig(_ context.Context) (*ConnectionConfig, error) {
	if p.config == nil {
		return nil, fmt.Errorf("no connection config set")
	}
	return p.config.Clone(), nil
}

func NewStaticProvider(cfg *ConnectionConfig) *StaticProvider {
	return &StaticProvider{
		config: cfg.Clone(),
	}
}

// connectionEnv are the environment variables read by the EnvProvider,
// prefixed with VAULT:
// connectionEnv.ApproleRoleID = VAULT_APPROLE_ROLE_ID
type connectionEnv struct {
	Addr            string        `split_words:"true"`
	Token           string        `split_words:"true"`
	Namespace       string        `split_words:"true"`
	SkipVerify      bool          `split_words:"true"`
	TLSServerName   string        `split_words:"true"`
	Cacert          string        `split_words:"true"`
	ClientTimeout   time.Duration `split_words:"true"`
	AuthMethod      string        `split_words:"true"`
	ApproleMount    string        `split_words:"true"`
	ApproleRoleID   string        `split_words:"true"`
	ApproleSecretID string        `split_words:"true"`
}

// EnvProvider reads the ConnectionConfig from the process environment on
// every call. The variable names match the ones understood by the Vault CLI.
type EnvProvider struct{}

func (p *EnvProvider) ConnectionConfig(_ context.Context) (*ConnectionConfig, error) {
	var env connectionEnv
	if err := envconfig.Process("vault", &env); err != nil {
		return nil, fmt.Errorf("failed to read connection config from the environment: %w", err)
	}

	cfg := &ConnectionConfig{
		Address:       env.Addr,
		Token:         env.Token,
		Namespace:     env.Namespace,
		SkipTLSVerify: env.SkipVerify,
		TLSServerName: env.TLSServerName,
		CACert:        env.Cacert,
		Timeout:       env.ClientTimeout,
		AuthMethod:    env.AuthMethod,
	}
	if env.ApproleRoleID != "" || env.ApproleSecretID != "" {
		cfg.AppRole = &AppRoleConfig{
			Mount:    env.ApproleMount,
			RoleID:   env.ApproleRoleID,
			SecretID: env.ApproleSecretID,
		}
	}

	return cfg, nil
}

// FileProvider reads the ConnectionConfig from a YAML file on every call.
type FileProvider struct {
	Path string
}

func (p *FileProvider) ConnectionConfig(_ context.Context) (*ConnectionConfig, error) {
	b, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read connection config: %w", err)
	}

	cfg := &ConnectionConfig{}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse connection config %q: %w", p.Path, err)
	}

	return cfg, nil
}
