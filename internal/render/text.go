package render

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/weekly-report/internal/models"
	"github.com/j-veylop/weekly-report/internal/report"
)

// Text renders the digest as plain text, used as the email's text alternative
// and for console previews.
func (r *Renderer) Text(rk report.Rankings) string {
	var b strings.Builder

	title := strings.ToUpper(SubjectPrefix)
	fmt.Fprintf(&b, "%s\n%s\n", title, strings.Repeat("═", len(title)))
	fmt.Fprintf(&b, "Period: %s\n", rk.Windows.Current)
	fmt.Fprintf(&b, "Total Models Analyzed: %s\n", r.format.Number(int64(rk.TotalModels)))

	for _, s := range Sections(rk) {
		b.WriteString(r.textSection(s, rk.Windows))
	}

	return b.String()
}

func (r *Renderer) textSection(s Section, w models.Windows) string {
	items := make([]string, 0, len(s.Entries))
	for i, m := range s.Entries {
		items = append(items, fmt.Sprintf("%d. %s", i+1, r.textEntry(s.Kind, m, w)))
	}

	body := strings.Join(items, "\n\n")
	if body == "" {
		body = NoItems
	}

	return fmt.Sprintf("\n%s\n%s\n%s\n", s.Title, strings.Repeat("═", len([]rune(s.Title))), body)
}

func (r *Renderer) textEntry(kind SectionKind, m models.ModelMetric, w models.Windows) string {
	f := r.format

	var stats string
	switch kind {
	case SectionTopThisWeek:
		stats = fmt.Sprintf("%s runs this week, change %s runs (%s)",
			f.Number(m.ThisWeekRuns), f.SignedNumber(m.AbsoluteChange), f.Percent(m.PercentChange))
	case SectionGainersAbsolute:
		stats = fmt.Sprintf("growth %s runs (%s), %s runs this week",
			f.SignedNumber(m.AbsoluteChange), f.Percent(m.PercentChange), f.Number(m.ThisWeekRuns))
	case SectionGainersPercent:
		stats = fmt.Sprintf("growth %s, %s runs this week",
			f.Percent(m.PercentChange), f.Number(m.ThisWeekRuns))
	default:
		stats = fmt.Sprintf("debut performance %s runs, first seen %s",
			f.Number(m.ThisWeekRuns), f.Debut(m.FirstSeen, w.Current.End))
	}

	return fmt.Sprintf("%s\n   %s\n   %s\n   %s", m.Key, m.Description, stats, m.URL)
}

// Chart plots catalog-wide daily runs over both windows.
func Chart(totals []float64, w models.Windows, width, height int) string {
	if len(totals) == 0 {
		return NoItems
	}

	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	caption := fmt.Sprintf("Daily runs, %s to %s",
		w.Previous.Start.Format("Jan 2"), w.Current.End.Format("Jan 2, 2006"))

	return asciigraph.Plot(totals,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
