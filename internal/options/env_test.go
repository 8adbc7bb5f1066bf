// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package options

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := map[string]struct {
		envs        map[string]string
		wantOptions VCREnvOptions
	}{
		"empty": {
			envs:        map[string]string{},
			wantOptions: VCREnvOptions{},
		},
		"set all": {
			envs: map[string]string{
				"VCR_LOG_FORMAT":       "json",
				"VCR_LOG_LEVEL":        "debug",
				"VCR_CREDENTIALS_FILE": "/etc/vcr/credentials.yaml",
				"VCR_CONNECTION_FILE":  "/etc/vcr/connection.yaml",
				"VCR_CLIENT_POOL_SIZE": "100",
				"VCR_CACHE_TTL":        "30s",
				"VCR_MAX_RETRIES":      "3",
			},
			wantOptions: VCREnvOptions{
				LogFormat:       "json",
				LogLevel:        "debug",
				CredentialsFile: "/etc/vcr/credentials.yaml",
				ConnectionFile:  "/etc/vcr/connection.yaml",
				ClientPoolSize:  makeInt(t, 100),
				CacheTTL:        time.Second * 30,
				MaxRetries:      makeUint64(t, 3),
			},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			for env, val := range tt.envs {
				t.Setenv(env, val)
			}

			gotOptions := VCREnvOptions{}
			require.NoError(t, gotOptions.Parse())
			assert.Equal(t, tt.wantOptions, gotOptions)
		})
	}
}

func makeInt(t *testing.T, i int) *int {
	t.Helper()
	return &i
}

func makeUint64(t *testing.T, i uint64) *uint64 {
	t.Helper()
	return &i
}
