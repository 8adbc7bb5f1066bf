// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package vault

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/hashicorp/vault/api"

	"github.com/hashicorp/vault-credentials-resolver/internal/config"
	"github.com/hashicorp/vault-credentials-resolver/internal/consts"
)

// MakeVaultClient creates a Vault api.Client from a ConnectionConfig.
// The returned client never retries on its own, and it does not pick up a
// token or namespace from the process environment.
func MakeVaultClient(ctx context.Context, cfg *config.ConnectionConfig) (*api.Client, error) {
	l := logr.FromContextOrDiscard(ctx)
	if cfg == nil {
		return nil, fmt.Errorf("ConnectionConfig was nil")
	}

	vc := api.DefaultConfig()
	vc.Address = cfg.Address
	vc.Timeout = cfg.RequestTimeout()
	vc.MaxRetries = 0
	if err := vc.ConfigureTLS(&api.TLSConfig{
		CACert:        cfg.CACert,
		Insecure:      cfg.SkipTLSVerify,
		TLSServerName: cfg.TLSServerName,
	}); err != nil {
		return nil, err
	}

	c, err := api.NewClient(vc)
	if err != nil {
		l.Error(err, "error setting up Vault API client")
		return nil, err
	}

	c.ClearToken()
	if cfg.Method() == consts.AuthMethodToken {
		c.SetToken(cfg.Token)
	}

	c.ClearNamespace()
	if cfg.Namespace != "" {
		c.SetNamespace(cfg.Namespace)
	}

	l.V(consts.LogLevelDebug).Info("Created Vault API client",
		"address", cfg.Address, "namespace", cfg.Namespace, "authMethod", cfg.Method())

	return c, nil
}
