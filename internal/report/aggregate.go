// Package report computes week-over-week model metrics and the ranked lists
// that make up the weekly digest.
package report

import (
	"time"

	"github.com/j-veylop/weekly-report/internal/models"
)

// SumRuns returns the total daily runs of the entries that fall inside w.
func SumRuns(entries []models.DailyStatEntry, w models.Window) int64 {
	var total int64
	for _, e := range entries {
		if w.Contains(e.Date) {
			total += e.DailyRuns
		}
	}
	return total
}

// FirstSeen returns the earliest date in entries, or nil when there are none.
// Entries are not required to be date-ordered.
func FirstSeen(entries []models.DailyStatEntry) *time.Time {
	if len(entries) == 0 {
		return nil
	}
	first := entries[0].Date
	for _, e := range entries[1:] {
		if e.Date.Before(first) {
			first = e.Date
		}
	}
	return &first
}

// Aggregate builds one metric per distinct model key in the snapshot,
// preserving catalog order.
func Aggregate(snapshot *models.Snapshot, windows models.Windows) []models.ModelMetric {
	descriptors := snapshot.UniqueModels()
	metrics := make([]models.ModelMetric, 0, len(descriptors))

	for _, d := range descriptors {
		key := d.Key()
		entries := snapshot.StatsFor(key)

		thisWeek := SumRuns(entries, windows.Current)
		lastWeek := SumRuns(entries, windows.Previous)

		metrics = append(metrics, models.ModelMetric{
			Key:            key,
			URL:            d.URL,
			Description:    d.DisplayDescription(),
			ThisWeekRuns:   thisWeek,
			LastWeekRuns:   lastWeek,
			AbsoluteChange: thisWeek - lastWeek,
			PercentChange:  models.PercentChange(thisWeek, lastWeek),
			TotalRuns:      d.RunCount,
			FirstSeen:      FirstSeen(entries),
		})
	}

	return metrics
}

// DailyTotals returns the catalog-wide runs for each day from the start of the
// previous window through the end of the current one.
func DailyTotals(snapshot *models.Snapshot, windows models.Windows) []float64 {
	start := windows.Previous.Start
	days := windows.Previous.Days() + windows.Current.Days()
	totals := make([]float64, days)

	for _, entries := range snapshot.Stats {
		for _, e := range entries {
			if e.Date.Before(start) || e.Date.After(windows.Current.End) {
				continue
			}
			idx := dayIndex(start, e.Date)
			if idx >= 0 && idx < days {
				totals[idx] += float64(e.DailyRuns)
			}
		}
	}

	return totals
}

// dayIndex counts calendar days from start to t.
func dayIndex(start, t time.Time) int {
	idx := 0
	for d := start; d.AddDate(0, 0, 1).Compare(t) <= 0; d = d.AddDate(0, 0, 1) {
		idx++
	}
	return idx
}
