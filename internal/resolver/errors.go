// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"errors"
	"fmt"
)

var (
	_ error = (*BackendError)(nil)
	_ error = (*FieldNotFoundError)(nil)
)

// BackendError wraps the error returned while reading the secret from Vault.
// Err is always one of the typed errors from the vault package.
type BackendError struct {
	Path string
	Err  error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("failed to resolve secret %q: %s", e.Path, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// FieldNotFoundError is returned when the secret exists but has no value
// for Key.
type FieldNotFoundError struct {
	Path string
	Key  string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field %q not found in secret %q", e.Key, e.Path)
}

// IsFieldNotFoundError returns true if err is, or wraps, a FieldNotFoundError.
func IsFieldNotFoundError(err error) bool {
	var e *FieldNotFoundError
	return errors.As(err, &e)
}

// IsBackendError returns true if err is, or wraps, a BackendError.
func IsBackendError(err error) bool {
	var e *BackendError
	return errors.As(err, &e)
}
