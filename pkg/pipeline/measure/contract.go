// Package measure collects timings and record counts for every step of a pipeline.
package measure

import "time"

// Measure holds the metrics of every step, by step name.
type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

// Metric holds the measures of a single step.
type Metric interface {
	AddDuration(elapsed time.Duration)
	AddTransportDuration(inputStepName string, elapsed time.Duration)
	AddOutcome(outcome Outcome, n int64)
	AVGDuration() time.Duration
	AVGTransportDuration() map[string]*TransportInfo
	SetTotalDuration(endDuration time.Duration)
	GetTotalDuration() time.Duration
	AllTransports() map[string]*TransportInfo
	Counts() map[Outcome]int64
}

// Outcome is what a step did with a record.
type Outcome string

const (
	Kept     Outcome = "kept"
	Dropped  Outcome = "dropped"
	Replaced Outcome = "replaced"
	Emitted  Outcome = "emitted"
	Reduced  Outcome = "reduced"
)
