// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package credentials

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCredential(t *testing.T) {
	c := NewCredential("secret/db")
	_, err := uuid.Parse(c.ID)
	require.NoError(t, err)
	assert.Equal(t, ScopeGlobal, c.Scope)
	assert.Equal(t, "username", c.UsernameKey)
	assert.Equal(t, "password", c.PasswordKey)
	assert.Equal(t, "secret/db", c.DisplayName())
	assert.NoError(t, c.Validate())

	other := NewCredential("secret/db")
	assert.NotEqual(t, c.ID, other.ID)
}

func TestCredential_SetDefaults(t *testing.T) {
	c := &Credential{
		ID:          "db",
		Scope:       ScopeSystem,
		Path:        "secret/db",
		UsernameKey: "name",
		PasswordKey: "alias",
	}
	c.SetDefaults()
	assert.Equal(t, &Credential{
		ID:          "db",
		Scope:       ScopeSystem,
		Path:        "secret/db",
		UsernameKey: "name",
		PasswordKey: "alias",
	}, c)
}

func TestCredential_Validate(t *testing.T) {
	tests := []struct {
		name    string
		c       *Credential
		wantErr string
	}{
		{
			name: "valid",
			c:    &Credential{ID: "db", Path: "secret/db"},
		},
		{
			name: "valid-kv-v2",
			c:    &Credential{ID: "db", Path: "db", KVVersion: "kv-v2", Mount: "kv", Version: 2, CacheTTL: time.Minute},
		},
		{
			name:    "empty-path",
			c:       &Credential{ID: "db"},
			wantErr: "invalid credential \"db\": credential path is empty",
		},
		{
			name:    "bad-scope",
			c:       &Credential{ID: "db", Path: "secret/db", Scope: "folder"},
			wantErr: "invalid credential \"db\": unsupported scope \"folder\"",
		},
		{
			name:    "bad-kv-version",
			c:       &Credential{ID: "db", Path: "secret/db", KVVersion: "kv-v3"},
			wantErr: "invalid credential \"db\": unsupported kvVersion \"kv-v3\"",
		},
		{
			name:    "version-without-kv-v2",
			c:       &Credential{ID: "db", Path: "secret/db", Version: 1},
			wantErr: "invalid credential \"db\": version requires kvVersion kv-v2",
		},
		{
			name: "multiple",
			c:    &Credential{Path: "", CacheTTL: -time.Second},
			wantErr: "invalid credential \"\": credential ID is empty\n" +
				"credential path is empty\n" +
				"invalid cacheTTL -1s",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
