// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package consts

import "time"

const (
	DefaultUsernameKey = "username"
	DefaultPasswordKey = "password"

	// DefaultClientTimeout bounds every call to Vault.
	DefaultClientTimeout = 10 * time.Second

	KVSecretTypeV2 = "kv-v2"
	KVSecretTypeV1 = "kv-v1"

	AuthMethodToken   = "token"
	AuthMethodAppRole = "appRole"

	DefaultAppRoleMount = "approle"
	DefaultKVMount      = "secret"
)
