package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/aussiebroadwan/ut4master/internal/auth/service")

var (
	grantsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ut4master",
		Subsystem: "auth",
		Name:      "grants_total",
		Help:      "Token grant requests by grant type and outcome.",
	}, []string{"grant_type", "outcome"})

	authenticationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ut4master",
		Subsystem: "auth",
		Name:      "authentications_total",
		Help:      "Authorization header resolutions by scheme and outcome.",
	}, []string{"scheme", "outcome"})

	sessionsEvictedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ut4master",
		Subsystem: "auth",
		Name:      "sessions_evicted_total",
		Help:      "Sibling sessions removed by single-session clients and kill requests.",
	})

	housekeepingDeletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ut4master",
		Subsystem: "auth",
		Name:      "housekeeping_deleted_total",
		Help:      "Expired records removed by the housekeeping sweep.",
	}, []string{"record"})
)
