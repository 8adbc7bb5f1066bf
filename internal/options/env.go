// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package options

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// VCREnvOptions are the supported environment variable options, prefixed with VCR.
// The names of the variables in the struct are split using camel case:
// Specification.ClientPoolSize = VCR_CLIENT_POOL_SIZE
type VCREnvOptions struct {
	// LogFormat is the VCR_LOG_FORMAT environment variable option
	LogFormat string `split_words:"true"`

	// LogLevel is the VCR_LOG_LEVEL environment variable option
	LogLevel string `split_words:"true"`

	// CredentialsFile is the VCR_CREDENTIALS_FILE environment variable option
	CredentialsFile string `split_words:"true"`

	// ConnectionFile is the VCR_CONNECTION_FILE environment variable option
	ConnectionFile string `split_words:"true"`

	// ClientPoolSize is the VCR_CLIENT_POOL_SIZE environment variable option
	ClientPoolSize *int `split_words:"true"`

	// CacheTTL is the VCR_CACHE_TTL environment variable option
	CacheTTL time.Duration `envconfig:"cache_ttl"`

	// MaxRetries is the VCR_MAX_RETRIES environment variable option
	MaxRetries *uint64 `split_words:"true"`
}

// Parse environment variable options, prefixed with "VCR_"
func (c *VCREnvOptions) Parse() error {
	return envconfig.Process("vcr", c)
}
