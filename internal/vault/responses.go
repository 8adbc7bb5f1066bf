// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package vault

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/hashicorp/vault/api"
)

var (
	_ Response = (*defaultResponse)(nil)
	_ Response = (*kvV1Response)(nil)
	_ Response = (*kvV2Response)(nil)
)

type Response interface {
	Secret() *api.Secret
	// Data returns the secret's field mapping, nil when the response carries
	// none.
	Data() map[string]any
	// Version of the secret, 0 when the backend does not version it.
	Version() int
}

type defaultResponse struct {
	secret *api.Secret
}

func (r *defaultResponse) Secret() *api.Secret {
	return r.secret
}

func (r *defaultResponse) Data() map[string]any {
	if r.secret == nil {
		return nil
	}

	return r.secret.Data
}

func (r *defaultResponse) Version() int {
	return 0
}

type kvV1Response struct {
	secret *api.Secret
}

func (r *kvV1Response) Secret() *api.Secret {
	return r.secret
}

func (r *kvV1Response) Data() map[string]any {
	if r.secret == nil {
		return nil
	}

	return r.secret.Data
}

func (r *kvV1Response) Version() int {
	return 0
}

type kvV2Response struct {
	secret *api.Secret
}

func (r *kvV2Response) Secret() *api.Secret {
	return r.secret
}

func (r *kvV2Response) Data() map[string]any {
	if r.secret == nil {
		return nil
	}

	if r.secret.Data != nil {
		if v, ok := r.secret.Data["data"]; ok && v != nil {
			if d, ok := v.(map[string]interface{}); ok {
				return d
			}
		}
	}

	return nil
}

func (r *kvV2Response) Version() int {
	if r.secret == nil || r.secret.Data == nil {
		return 0
	}

	m, ok := r.secret.Data["metadata"].(map[string]interface{})
	if !ok {
		return 0
	}

	switch v := m["version"].(type) {
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0
		}
		return int(i)
	case float64:
		return int(v)
	case int:
		return v
	case string:
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

func NewKVV1Response(secret *api.Secret) Response {
	return &kvV1Response{
		secret: secret,
	}
}

func NewKVV2Response(secret *api.Secret) Response {
	return &kvV2Response{
		secret: secret,
	}
}

func NewDefaultResponse(secret *api.Secret) Response {
	return &defaultResponse{
		secret: secret,
	}
}

// makeRecordData flattens a Vault data map into string values. Strings are
// kept as-is, everything else is JSON encoded.
func makeRecordData(d map[string]any) (map[string]string, error) {
	data := make(map[string]string, len(d))
	for k, v := range d {
		switch x := v.(type) {
		case string:
			data[k] = x
		case json.Number:
			data[k] = x.String()
		case nil:
			data[k] = ""
		default:
			b, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("failed to encode value of field %q: %w", k, err)
			}
			data[k] = string(b)
		}
	}

	return data, nil
}
