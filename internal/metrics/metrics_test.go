// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp/vault-credentials-resolver/internal/version"
)

func TestNewBuildInfoGauge(t *testing.T) {
	info := version.Info{
		Version:   "0.1.0",
		GitCommit: "abc123",
		BuildDate: "2026-10-14",
		GoVersion: "go1.25.0",
		Platform:  "linux/amd64",
	}

	g := NewBuildInfoGauge(info)
	assert.Equal(t, float64(1), testutil.ToFloat64(g))

	expected := `
# HELP vcr_build_info Vault credentials resolver build info.
# TYPE vcr_build_info gauge
vcr_build_info{build_date="2026-10-14",git_commit="abc123",go_version="go1.25.0",platform="linux/amd64",version="0.1.0"} 1
`
	require.NoError(t, testutil.CollectAndCompare(g, strings.NewReader(expected)))
}
