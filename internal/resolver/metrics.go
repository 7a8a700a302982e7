package resolver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolution stages, used as the stage label.
const (
	StageSmallTalk  = "smalltalk"
	StageManual     = "manual"
	StageGenerative = "generative"
	StageStructured = "structured"
	StageMiss       = "miss"
)

// Generation outcomes, used as the outcome label.
const (
	outcomeAnswered = "answered"
	outcomeUnknown  = "unknown"
	outcomeEmpty    = "empty"
	outcomeError    = "error"
	outcomeTimeout  = "timeout"
)

var (
	// answersTotal counts resolved queries by the stage that produced the answer.
	answersTotal = promauto.NewCounterVec( //nolint:gochecknoglobals // prometheus collector
		prometheus.CounterOpts{
			Namespace: "campusbot",
			Subsystem: "resolver",
			Name:      "answers_total",
			Help:      "Total resolved queries by answering stage.",
		},
		[]string{"stage"},
	)

	generationSeconds = promauto.NewHistogramVec( //nolint:gochecknoglobals // prometheus collector
		prometheus.HistogramOpts{
			Namespace: "campusbot",
			Subsystem: "resolver",
			Name:      "generation_seconds",
			Help:      "Latency of generative fallback calls in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15, 30},
		},
		[]string{"outcome"},
	)
)
