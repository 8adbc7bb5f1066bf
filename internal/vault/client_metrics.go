// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package vault

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hashicorp/vault-credentials-resolver/internal/metrics"
)

const (
	subsystemClient     = "client"
	subsystemClientPool = "client_pool"

	errorKindNotFound    = "not_found"
	errorKindRejected    = "rejected"
	errorKindUnreachable = "unreachable"
	errorKindMalformed   = "malformed"
	errorKindOther       = "other"
)

var (
	clientOperationTimes = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metrics.Namespace,
		Subsystem: subsystemClient,
		Name:      metrics.NameOperationsTimeSeconds,
		Buckets: []float64{
			0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5, 10,
		},
		Help: "Length of time per Vault client operation",
	}, []string{metrics.LabelOperation, metrics.LabelVaultAddress})

	clientOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Subsystem: subsystemClient,
		Name:      metrics.NameOperationsTotal,
		Help:      "Vault Client successful operations",
	}, []string{metrics.LabelOperation, metrics.LabelVaultAddress})

	clientOperationErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Subsystem: subsystemClient,
		Name:      metrics.NameOperationsErrorsTotal,
		Help:      "Vault Client operation errors",
	}, []string{metrics.LabelOperation, metrics.LabelVaultAddress, metrics.LabelErrorKind})

	poolLength = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metrics.Namespace,
		Subsystem: subsystemClientPool,
		Name:      metrics.NameLength,
		Help:      "Number of pooled Vault API clients",
	})

	poolHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Subsystem: subsystemClientPool,
		Name:      "hits",
		Help:      "Number of pooled Vault API client hits",
	})

	poolMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Subsystem: subsystemClientPool,
		Name:      "misses",
		Help:      "Number of pooled Vault API client misses",
	})

	poolEvictions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Subsystem: subsystemClientPool,
		Name:      "evictions",
		Help:      "Number of pooled Vault API client evictions",
	})
)

// MustRegisterClientMetrics to register the global Client Prometheus metrics.
func MustRegisterClientMetrics(registry prometheus.Registerer) {
	registry.MustRegister(
		clientOperationTimes,
		clientOperations,
		clientOperationErrors,
		poolLength,
		poolHits,
		poolMisses,
		poolEvictions,
	)
}

func observeTime(ts time.Time, operation, address string) {
	clientOperationTimes.WithLabelValues(operation, address).Observe(
		time.Since(ts).Seconds(),
	)
}

func incrementOperationCounter(operation, address string, err error) {
	if err != nil {
		clientOperationErrors.WithLabelValues(operation, address, errorKind(err)).Inc()
		return
	}
	clientOperations.WithLabelValues(operation, address).Inc()
}

func errorKind(err error) string {
	var (
		notFound    *NotFoundError
		rejected    *RejectedError
		unreachable *UnreachableError
		malformed   *MalformedResponseError
	)
	switch {
	case errors.As(err, &notFound):
		return errorKindNotFound
	case errors.As(err, &rejected):
		return errorKindRejected
	case errors.As(err, &unreachable):
		return errorKindUnreachable
	case errors.As(err, &malformed):
		return errorKindMalformed
	default:
		return errorKindOther
	}
}
