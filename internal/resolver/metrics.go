// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hashicorp/vault-credentials-resolver/internal/metrics"
)

const subsystemResolver = "resolver"

var resolverRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: metrics.Namespace,
	Subsystem: subsystemResolver,
	Name:      metrics.NameRequestsTotal,
	Help:      "Secret resolutions by outcome: served from the cache, fetched, or joined an in-flight fetch",
}, []string{metrics.LabelResult})

// MustRegisterResolverMetrics to register the global Resolver Prometheus metrics.
func MustRegisterResolverMetrics(registry prometheus.Registerer) {
	registry.MustRegister(resolverRequests)
}
