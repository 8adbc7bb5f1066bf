// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package vault

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadRequests(t *testing.T) {
	tests := map[string]struct {
		req            ReadRequest
		wantPath       string
		wantSecretPath string
		wantValues     url.Values
		wantResponse   Response
	}{
		"default": {
			req:            NewReadRequest("/secret/cloudfoundry/", url.Values{"foo": {"bar"}}),
			wantPath:       "secret/cloudfoundry",
			wantSecretPath: "secret/cloudfoundry",
			wantValues:     url.Values{"foo": {"bar"}},
			wantResponse:   &defaultResponse{},
		},
		"kv-v1": {
			req:            NewKVReadRequestV1("kv", "ci/creds"),
			wantPath:       "kv/ci/creds",
			wantSecretPath: "kv/ci/creds",
			wantResponse:   &kvV1Response{},
		},
		"kv-v2-latest": {
			req:            NewKVReadRequestV2("kv", "ci/creds", 0),
			wantPath:       "kv/data/ci/creds",
			wantSecretPath: "kv/ci/creds",
			wantResponse:   &kvV2Response{},
		},
		"kv-v2-version": {
			req:            NewKVReadRequestV2("kv/", "/ci/creds", 2),
			wantPath:       "kv/data/ci/creds",
			wantSecretPath: "kv/ci/creds",
			wantValues:     url.Values{"version": {"2"}},
			wantResponse:   &kvV2Response{},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.wantPath, tt.req.Path())
			assert.Equal(t, tt.wantSecretPath, tt.req.SecretPath())
			assert.Equal(t, tt.wantValues, tt.req.Values())
			assert.IsType(t, tt.wantResponse, tt.req.newResponse(nil))
		})
	}
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "secret/data/foo", JoinPath("secret", "data", "foo"))
	assert.Equal(t, "secret/foo", JoinPath("/secret/", "", "/foo"))
	assert.Equal(t, "", JoinPath())
}
