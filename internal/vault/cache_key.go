// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package vault

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/hashicorp/vault-credentials-resolver/internal/config"
)

// ClientPoolKey is a type that holds the unique value of an entity in a clientPool.
type ClientPoolKey string

func (k ClientPoolKey) String() string {
	return string(k)
}

// ComputeClientPoolKey for use in a clientPool. The key is derived from every
// ConnectionConfig field that affects how the api.Client is built or
// authenticated, so a changed token or address always yields a new key.
//
// The resulting key will resemble something like: token-2a8108711ae49ac0faa724, where the prefix
// is the auth method, and the remainder is the concatenation of the
// first 7 and last 4 bytes of the computed BLAKE2b-256 check-sum in hex.
// No secret material is recoverable from the key.
func ComputeClientPoolKey(cfg *config.ConnectionConfig) (ClientPoolKey, error) {
	if cfg == nil {
		return "", errors.New("ConnectionConfig was nil")
	}

	method := cfg.Method()
	parts := []string{
		method,
		cfg.Address,
		cfg.Namespace,
		strconv.FormatBool(cfg.SkipTLSVerify),
		cfg.TLSServerName,
		cfg.CACert,
		cfg.RequestTimeout().String(),
		cfg.Token,
	}
	if cfg.AppRole != nil {
		parts = append(parts, cfg.AppRoleMount(), cfg.AppRole.RoleID, cfg.AppRole.SecretID)
	}

	sum := blake2b.Sum256([]byte(strings.Join(parts, "\x00")))
	return ClientPoolKey(method + "-" + fmt.Sprintf("%x%x", sum[0:7], sum[len(sum)-4:])), nil
}
