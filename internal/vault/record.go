// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package vault

import (
	"time"
)

// SecretRecord is the result of one successful read from Vault. It is never
// modified after Fetch returns it; a newer read produces a new SecretRecord.
type SecretRecord struct {
	// Path the record was read from.
	Path string
	// FetchedAt is the time the read completed.
	FetchedAt time.Time
	// Version of the secret, only set for KV version 2 secrets.
	Version int
	// RequestID is Vault's request_id for the read, useful for matching
	// against the audit log.
	RequestID     string
	LeaseID       string
	LeaseDuration time.Duration

	data map[string]string
}

// Get returns the value stored under key.
func (r *SecretRecord) Get(key string) (string, bool) {
	if r == nil {
		return "", false
	}
	v, ok := r.data[key]
	return v, ok
}

// Keys returns the field names contained in the record.
func (r *SecretRecord) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, 0, len(r.data))
	for k := range r.data {
		keys = append(keys, k)
	}
	return keys
}

// Data returns a copy of the record's field mapping.
func (r *SecretRecord) Data() map[string]string {
	if r == nil {
		return nil
	}
	data := make(map[string]string, len(r.data))
	for k, v := range r.data {
		data[k] = v
	}
	return data
}

// Age of the record relative to now.
func (r *SecretRecord) Age(now time.Time) time.Duration {
	return now.Sub(r.FetchedAt)
}

// NewSecretRecord returns a SecretRecord holding a copy of data.
func NewSecretRecord(path string, data map[string]string, fetchedAt time.Time) *SecretRecord {
	r := &SecretRecord{
		Path:      path,
		FetchedAt: fetchedAt,
		data:      make(map[string]string, len(data)),
	}
	for k, v := range data {
		r.data[k] = v
	}
	return r
}
