package models

import "time"

// ModelMetric is the week-over-week usage of one model for a report run.
type ModelMetric struct {
	Key            string
	URL            string
	Description    string
	ThisWeekRuns   int64
	LastWeekRuns   int64
	AbsoluteChange int64
	PercentChange  float64
	TotalRuns      int64
	FirstSeen      *time.Time
}

// PercentChange returns the relative change from last to this week.
// A zero baseline yields 100 when there is any current usage, 0 otherwise.
func PercentChange(thisWeek, lastWeek int64) float64 {
	if lastWeek > 0 {
		return float64(thisWeek-lastWeek) / float64(lastWeek) * 100
	}
	if thisWeek > 0 {
		return 100
	}
	return 0
}

// IsGrowing reports whether the model did not lose runs week over week.
func (m ModelMetric) IsGrowing() bool {
	return m.AbsoluteChange >= 0
}

// IsNewIn reports whether the model was first seen inside w.
func (m ModelMetric) IsNewIn(w Window) bool {
	return m.FirstSeen != nil && w.Contains(*m.FirstSeen)
}
