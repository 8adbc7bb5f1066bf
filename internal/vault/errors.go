// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package vault

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/vault/api"
)

var (
	_ error = (*NotFoundError)(nil)
	_ error = (*RejectedError)(nil)
	_ error = (*UnreachableError)(nil)
	_ error = (*MalformedResponseError)(nil)

	errEmptyResponse = errors.New("empty response from Vault")
	errMissingData   = errors.New("response has no data")
)

// NotFoundError is returned when Vault has no secret at Path.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("secret not found, path=%q: Vault responded with HTTP status code: %d",
		e.Path, http.StatusNotFound)
}

func (e *NotFoundError) HTTPStatusCode() int {
	return http.StatusNotFound
}

// RejectedError is returned when Vault answered with an error status other
// than 404.
type RejectedError struct {
	Path       string
	StatusCode int
	// Body holds the errors reported by Vault.
	Body string
}

func (e *RejectedError) Error() string {
	msg := fmt.Sprintf("request rejected, path=%q: Vault responded with HTTP status code: %d",
		e.Path, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *RejectedError) HTTPStatusCode() int {
	return e.StatusCode
}

// Temporary is true for server side errors.
func (e *RejectedError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// UnreachableError is returned when Vault could not be reached at all, this
// includes timeouts, refused connections, TLS failures and bad connection
// configs.
type UnreachableError struct {
	Address string
	Err     error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("vault unreachable, address=%q: %s", e.Address, e.Err)
}

func (e *UnreachableError) Unwrap() error {
	return e.Err
}

// MalformedResponseError is returned when Vault's response could not be
// decoded or did not carry any secret data.
type MalformedResponseError struct {
	Path string
	Err  error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from Vault, path=%q: %s", e.Path, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code carried by err, if any.
func StatusCode(err error) (int, bool) {
	var coder interface {
		HTTPStatusCode() int
	}
	if errors.As(err, &coder) {
		return coder.HTTPStatusCode(), true
	}
	return 0, false
}

// IsNotFoundError returns true if Vault has no secret at the requested path.
func IsNotFoundError(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsUnreachableError returns true if Vault could not be reached.
func IsUnreachableError(err error) bool {
	var e *UnreachableError
	return errors.As(err, &e)
}

// IsForbiddenError returns true if a forbidden error is returned from Vault.
func IsForbiddenError(err error) bool {
	var e *RejectedError
	return errors.As(err, &e) && e.StatusCode == http.StatusForbidden
}

// IsRetryableError returns true for errors that may succeed when tried
// again: unreachable backends and 5xx responses.
func IsRetryableError(err error) bool {
	if IsUnreachableError(err) {
		return true
	}
	var e *RejectedError
	return errors.As(err, &e) && e.Temporary()
}

// classifyError maps an error returned by the Vault API client onto one of
// the typed errors above.
func classifyError(address, path string, err error) error {
	if err == nil {
		return nil
	}

	var respErr *api.ResponseError
	if errors.As(err, &respErr) && respErr != nil {
		if respErr.StatusCode == http.StatusNotFound {
			return &NotFoundError{Path: path}
		}
		return &RejectedError{
			Path:       path,
			StatusCode: respErr.StatusCode,
			Body:       strings.Join(respErr.Errors, "; "),
		}
	}

	if isTransportError(err) {
		return &UnreachableError{
			Address: address,
			Err:     err,
		}
	}

	return &MalformedResponseError{
		Path: path,
		Err:  err,
	}
}

func isTransportError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
