package measure

import (
	"sort"
	"time"
)

// StepReport is a flat view of the metric of one step.
type StepReport struct {
	Name     string
	Average  time.Duration
	Total    time.Duration
	Outcomes map[Outcome]int64
}

// Report returns the metrics of every step that saw at least one record, sorted by name.
func Report(msr Measure) []StepReport {
	res := []StepReport{}

	for name, mt := range msr.AllMetrics() {
		counts := mt.Counts()
		if len(counts) == 0 && mt.GetTotalDuration() == 0 {
			continue
		}

		res = append(res, StepReport{
			Name:     name,
			Average:  mt.AVGDuration(),
			Total:    mt.GetTotalDuration(),
			Outcomes: counts,
		})
	}

	sort.Slice(res, func(i, j int) bool {
		return res[i].Name < res[j].Name
	})

	return res
}
