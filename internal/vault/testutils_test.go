// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package vault

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"testing"
)

// NewTestHTTPServer creates a test HTTP server that handles requests until
// the listener returned is closed. The returned address can be used as
// ConnectionConfig.Address.
// XXX: based off of github.com/hashicorp/vault/api/client_test.go
func NewTestHTTPServer(t *testing.T, handler http.Handler) (string, net.Listener) {
	t.Helper()

	server, ln, err := testHTTPServer(handler, nil)
	if err != nil {
		t.Fatalf("err: %s", err)
	}

	go server.Serve(ln)
	t.Cleanup(func() {
		_ = ln.Close()
	})

	return fmt.Sprintf("http://%s", ln.Addr()), ln
}

func testHTTPServer(handler http.Handler, tlsConfig *tls.Config) (*http.Server, net.Listener, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, nil, err
	}

	server := &http.Server{
		Handler:   handler,
		TLSConfig: tlsConfig,
	}

	return server, ln, err
}

type testHandler struct {
	requestCount int
	paths        []string
	tokens       []string
	namespaces   []string
	params       []map[string]interface{}
	values       []url.Values
	handlerFunc  func(t *testHandler, w http.ResponseWriter, req *http.Request)
	mu           sync.Mutex
}

func (t *testHandler) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		t.mu.Lock()
		t.requestCount++

		t.paths = append(t.paths, req.URL.Path)
		t.tokens = append(t.tokens, req.Header.Get("X-Vault-Token"))
		t.namespaces = append(t.namespaces, req.Header.Get("X-Vault-Namespace"))

		var params map[string]interface{}
		switch req.Method {
		case http.MethodPut, http.MethodPost:
			b, err := io.ReadAll(req.Body)
			if err != nil {
				t.mu.Unlock()
				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			if len(b) > 0 {
				if err := json.Unmarshal(b, &params); err != nil {
					t.mu.Unlock()
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
			}
		case http.MethodGet:
			if req.URL.RawQuery != "" {
				vals, err := url.ParseQuery(req.URL.RawQuery)
				if err != nil {
					t.mu.Unlock()
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
				t.values = append(t.values, vals)
			}
		default:
			t.mu.Unlock()
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		if len(params) > 0 {
			t.params = append(t.params, params)
		}
		t.mu.Unlock()

		t.handlerFunc(t, w, req)
	}
}

func (t *testHandler) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.requestCount
}

// writeJSON writes v with status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}
