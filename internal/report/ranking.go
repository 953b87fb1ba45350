package report

import (
	"cmp"
	"slices"

	"github.com/j-veylop/weekly-report/internal/models"
)

const (
	// MaxEntries caps the length of every ranked list.
	MaxEntries = 10
	// PercentGainerMinRuns is the minimum previous-week runs for a model to
	// qualify as a percentage gainer; smaller baselines inflate percentages.
	PercentGainerMinRuns = 1000
)

// Rankings holds the four ranked lists of a weekly digest.
type Rankings struct {
	Windows         models.Windows
	TotalModels     int
	TopThisWeek     []models.ModelMetric
	GainersAbsolute []models.ModelMetric
	GainersPercent  []models.ModelMetric
	NewThisWeek     []models.ModelMetric
}

// Rank derives the ranked lists from the aggregated metrics.
func Rank(metrics []models.ModelMetric, windows models.Windows) Rankings {
	isNew := func(m models.ModelMetric) bool {
		return m.IsNewIn(windows.Current)
	}

	return Rankings{
		Windows:         windows,
		TotalModels:     len(metrics),
		TopThisWeek:     top(metrics, nil, compareTopThisWeek),
		GainersAbsolute: top(metrics, nil, compareGainersAbsolute),
		GainersPercent:  top(metrics, qualifiesForPercent, compareGainersPercent),
		NewThisWeek:     top(metrics, isNew, compareNewThisWeek),
	}
}

// top filters, stable-sorts and caps a copy of metrics.
func top(
	metrics []models.ModelMetric,
	keep func(models.ModelMetric) bool,
	compare func(a, b models.ModelMetric) int,
) []models.ModelMetric {
	out := make([]models.ModelMetric, 0, len(metrics))
	for _, m := range metrics {
		if keep == nil || keep(m) {
			out = append(out, m)
		}
	}

	slices.SortStableFunc(out, compare)

	if len(out) > MaxEntries {
		out = out[:MaxEntries]
	}
	return out
}

func qualifiesForPercent(m models.ModelMetric) bool {
	return m.LastWeekRuns >= PercentGainerMinRuns
}

// Comparators order descending: b is compared against a.

func compareTopThisWeek(a, b models.ModelMetric) int {
	return cmp.Or(
		cmp.Compare(b.ThisWeekRuns, a.ThisWeekRuns),
		cmp.Compare(b.TotalRuns, a.TotalRuns),
	)
}

func compareGainersAbsolute(a, b models.ModelMetric) int {
	return cmp.Or(
		cmp.Compare(b.AbsoluteChange, a.AbsoluteChange),
		cmp.Compare(b.ThisWeekRuns, a.ThisWeekRuns),
	)
}

func compareGainersPercent(a, b models.ModelMetric) int {
	return cmp.Or(
		cmp.Compare(b.PercentChange, a.PercentChange),
		cmp.Compare(b.ThisWeekRuns, a.ThisWeekRuns),
	)
}

func compareNewThisWeek(a, b models.ModelMetric) int {
	return cmp.Or(
		cmp.Compare(b.ThisWeekRuns, a.ThisWeekRuns),
		cmp.Compare(b.TotalRuns, a.TotalRuns),
	)
}
