package report

import (
	"fmt"
	"testing"
	"time"

	"github.com/j-veylop/weekly-report/internal/models"
)

func keys(list []models.ModelMetric) []string {
	out := make([]string, len(list))
	for i, m := range list {
		out[i] = m.Key
	}
	return out
}

func assertKeys(t *testing.T, name string, list []models.ModelMetric, want ...string) {
	t.Helper()
	got := keys(list)
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestRank_TopThisWeekTieBreak(t *testing.T) {
	metrics := []models.ModelMetric{
		{Key: "A", ThisWeekRuns: 500, TotalRuns: 10000},
		{Key: "B", ThisWeekRuns: 500, TotalRuns: 20000},
		{Key: "C", ThisWeekRuns: 300, TotalRuns: 99999},
	}

	r := Rank(metrics, models.ResolveWindows(testNow))
	assertKeys(t, "TopThisWeek", r.TopThisWeek, "B", "A", "C")
}

func TestRank_StableOnFullTie(t *testing.T) {
	metrics := []models.ModelMetric{
		{Key: "first", ThisWeekRuns: 1, TotalRuns: 1},
		{Key: "second", ThisWeekRuns: 1, TotalRuns: 1},
		{Key: "third", ThisWeekRuns: 1, TotalRuns: 1},
	}

	r := Rank(metrics, models.ResolveWindows(testNow))
	assertKeys(t, "TopThisWeek", r.TopThisWeek, "first", "second", "third")
	assertKeys(t, "GainersAbsolute", r.GainersAbsolute, "first", "second", "third")
}

func TestRank_GainersAbsolute(t *testing.T) {
	metrics := []models.ModelMetric{
		{Key: "loser", AbsoluteChange: -50, ThisWeekRuns: 10},
		{Key: "small", AbsoluteChange: 10, ThisWeekRuns: 10},
		{Key: "tieLow", AbsoluteChange: 100, ThisWeekRuns: 100},
		{Key: "tieHigh", AbsoluteChange: 100, ThisWeekRuns: 900},
	}

	r := Rank(metrics, models.ResolveWindows(testNow))
	assertKeys(t, "GainersAbsolute", r.GainersAbsolute, "tieHigh", "tieLow", "small", "loser")
}

func TestRank_GainersPercentFilter(t *testing.T) {
	metrics := []models.ModelMetric{
		{Key: "tinyBase", LastWeekRuns: 999, ThisWeekRuns: 99900, PercentChange: 9900},
		{Key: "threshold", LastWeekRuns: 1000, ThisWeekRuns: 1500, PercentChange: 50},
		{Key: "big", LastWeekRuns: 10000, ThisWeekRuns: 30000, PercentChange: 200},
		{Key: "tieLow", LastWeekRuns: 2000, ThisWeekRuns: 3000, PercentChange: 50},
	}

	r := Rank(metrics, models.ResolveWindows(testNow))
	assertKeys(t, "GainersPercent", r.GainersPercent, "big", "tieLow", "threshold")
	for _, m := range r.GainersPercent {
		if m.LastWeekRuns < PercentGainerMinRuns {
			t.Errorf("%s has LastWeekRuns %d below %d", m.Key, m.LastWeekRuns, PercentGainerMinRuns)
		}
	}
}

func TestRank_NewThisWeek(t *testing.T) {
	w := models.ResolveWindows(testNow)
	threeDaysBefore := w.Current.End.AddDate(0, 0, -3)
	tenDaysBefore := w.Current.End.AddDate(0, 0, -10)

	metrics := []models.ModelMetric{
		{Key: "old", ThisWeekRuns: 1_000_000, FirstSeen: &tenDaysBefore},
		{Key: "never", ThisWeekRuns: 500},
		{Key: "debut", ThisWeekRuns: 20, FirstSeen: &threeDaysBefore},
	}

	r := Rank(metrics, w)
	assertKeys(t, "NewThisWeek", r.NewThisWeek, "debut")
}

func TestRank_Caps(t *testing.T) {
	w := models.ResolveWindows(testNow)
	debut := w.Current.Start.Add(12 * time.Hour)

	tests := []struct {
		name  string
		count int
		want  int
	}{
		{"Empty", 0, 0},
		{"Few", 4, 4},
		{"Exactly", 10, 10},
		{"Many", 25, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := make([]models.ModelMetric, tt.count)
			for i := range metrics {
				metrics[i] = models.ModelMetric{
					Key:            fmt.Sprintf("m%02d", i),
					ThisWeekRuns:   int64(2000 + i),
					LastWeekRuns:   1000,
					AbsoluteChange: int64(1000 + i),
					PercentChange:  float64(100 + i),
					FirstSeen:      &debut,
				}
			}

			r := Rank(metrics, w)
			if r.TotalModels != tt.count {
				t.Errorf("TotalModels = %d, want %d", r.TotalModels, tt.count)
			}
			lists := map[string][]models.ModelMetric{
				"TopThisWeek":     r.TopThisWeek,
				"GainersAbsolute": r.GainersAbsolute,
				"GainersPercent":  r.GainersPercent,
				"NewThisWeek":     r.NewThisWeek,
			}
			for name, list := range lists {
				if len(list) != tt.want {
					t.Errorf("%s length = %d, want %d", name, len(list), tt.want)
				}
			}
			if tt.count > 0 && r.TopThisWeek[0].Key != fmt.Sprintf("m%02d", tt.count-1) {
				t.Errorf("TopThisWeek[0] = %s, want highest runs first", r.TopThisWeek[0].Key)
			}
		})
	}
}

func TestRank_DoesNotReorderInput(t *testing.T) {
	metrics := []models.ModelMetric{
		{Key: "low", ThisWeekRuns: 1},
		{Key: "high", ThisWeekRuns: 2},
	}

	_ = Rank(metrics, models.ResolveWindows(testNow))
	if metrics[0].Key != "low" {
		t.Error("Rank() must not sort the caller's slice")
	}
}
