// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	InterviewTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_turns_total",
			Help: "Total number of conversation turns by outcome",
		},
		[]string{"outcome"},
	)

	FilesIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_files_ingested_total",
			Help: "Total number of uploaded files by input class",
		},
		[]string{"kind"},
	)

	ExtractionWarnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_extraction_warnings_total",
			Help: "Total number of non-fatal extraction warnings",
		},
		[]string{"kind"},
	)

	ResolverLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolver_lookups_total",
			Help: "Total number of resource lookups by type and resolving tier",
		},
		[]string{"resource_type", "source"},
	)
)
