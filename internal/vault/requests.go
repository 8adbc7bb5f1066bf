// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package vault

import (
	"net/url"
	"strconv"

	"github.com/hashicorp/vault/api"
)

// ReadRequest describes a single read against Vault's HTTP API.
// Path is relative to /v1/.
type ReadRequest interface {
	Path() string
	Values() url.Values
	// SecretPath is the path as configured by the caller, used in errors.
	SecretPath() string
	newResponse(*api.Secret) Response
}

var (
	_ ReadRequest = (*kvReadRequestV1)(nil)
	_ ReadRequest = (*kvReadRequestV2)(nil)
	_ ReadRequest = (*defaultReadRequest)(nil)
)

// defaultReadRequest is a plain logical read, the response data is taken
// as-is.
type defaultReadRequest struct {
	path   string
	values url.Values
}

func (r *defaultReadRequest) Path() string {
	return r.path
}

func (r *defaultReadRequest) Values() url.Values {
	return r.values
}

func (r *defaultReadRequest) SecretPath() string {
	return r.path
}

func (r *defaultReadRequest) newResponse(secret *api.Secret) Response {
	return NewDefaultResponse(secret)
}

// kvReadRequestV1 can be used in Client.Fetch to get KV version 1 secrets
// from Vault.
type kvReadRequestV1 struct {
	mount string
	path  string
}

func (r *kvReadRequestV1) Path() string {
	return JoinPath(r.mount, r.path)
}

func (r *kvReadRequestV1) Values() url.Values {
	return nil
}

func (r *kvReadRequestV1) SecretPath() string {
	return r.Path()
}

func (r *kvReadRequestV1) newResponse(secret *api.Secret) Response {
	return NewKVV1Response(secret)
}

// kvReadRequestV2 can be used in Client.Fetch to get KV version 2 secrets
// from Vault. A version of 0 reads the latest version.
type kvReadRequestV2 struct {
	mount   string
	path    string
	version int
}

func (r *kvReadRequestV2) Path() string {
	return JoinPath(r.mount, "data", r.path)
}

func (r *kvReadRequestV2) Values() url.Values {
	var vals url.Values
	if r.version > 0 {
		vals = map[string][]string{
			"version": {strconv.Itoa(r.version)},
		}
	}

	return vals
}

func (r *kvReadRequestV2) SecretPath() string {
	return JoinPath(r.mount, r.path)
}

func (r *kvReadRequestV2) newResponse(secret *api.Secret) Response {
	return NewKVV2Response(secret)
}

func NewKVReadRequestV1(mount, path string) ReadRequest {
	return &kvReadRequestV1{
		mount: mount,
		path:  path,
	}
}

func NewKVReadRequestV2(mount, path string, version int) ReadRequest {
	return &kvReadRequestV2{
		mount:   mount,
		path:    path,
		version: version,
	}
}

func NewReadRequest(path string, values url.Values) ReadRequest {
	return &defaultReadRequest{
		path:   JoinPath(path),
		values: values,
	}
}
