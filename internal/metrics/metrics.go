// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hashicorp/vault-credentials-resolver/internal/version"
)

// Namespace should be used for all metrics exported by this module.
const Namespace = "vcr"

const (
	NameOperationsTotal       = "operations_total"
	NameOperationsErrorsTotal = "operations_errors_total"
	NameOperationsTimeSeconds = "operations_time_seconds"
	NameLength                = "length"
	NameRequestsTotal         = "requests_total"

	LabelOperation    = "operation"
	LabelVaultAddress = "vault_address"
	LabelErrorKind    = "error_kind"
	LabelResult       = "result"

	OperationRead  = "read"
	OperationLogin = "login"

	ResultHit       = "hit"
	ResultMiss      = "miss"
	ResultCoalesced = "coalesced"
)

// NewBuildInfoGauge provides the build info as a Prometheus metric.
func NewBuildInfoGauge(info version.Info) prometheus.Gauge {
	metric := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "build",
			Name:      "info",
			Help:      "Vault credentials resolver build info.",
			ConstLabels: map[string]string{
				"version":    info.Version,
				"git_commit": info.GitCommit,
				"build_date": info.BuildDate,
				"go_version": info.GoVersion,
				"platform":   info.Platform,
			},
		},
	)
	metric.Set(1)

	return metric
}
