package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Business metrics
	MessagesProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "saathi_messages_processed_total",
		Help: "Messages run through the pipeline, by intent and outcome",
	}, []string{"intent", "outcome"})

	FallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "saathi_fallbacks_total",
		Help: "Replies served from the fallback table, by reason",
	}, []string{"reason"})

	GenerationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "saathi_generation_latency_seconds",
		Help:    "Model call latency, by operation",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	LowConfidenceTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "saathi_low_confidence_total",
		Help: "Classifications rejected below the confidence floor",
	})

	// Infrastructure metrics
	DeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "saathi_deliveries_total",
		Help: "Outbound WhatsApp deliveries, by status",
	}, []string{"status"})

	DatabaseLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "saathi_database_latency_seconds",
		Help:    "Query latency against Postgres",
		Buckets: prometheus.DefBuckets,
	})
)
