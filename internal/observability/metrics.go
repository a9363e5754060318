package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pixel_events_ingested_total",
		Help: "Pixel ingestion calls by outcome (ok, invalid, error).",
	}, []string{"outcome"})

	IngestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pixel_ingest_duration_seconds",
		Help:    "End-to-end duration of one pixel ingestion transaction.",
		Buckets: prometheus.DefBuckets,
	})
)
