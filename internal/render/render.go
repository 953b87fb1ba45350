package render

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"strings"
	"time"

	"github.com/j-veylop/weekly-report/internal/models"
	"github.com/j-veylop/weekly-report/internal/report"
)

// SubjectPrefix starts every digest subject line.
const SubjectPrefix = "Replicate Weekly Update"

// NoItems is shown in place of an empty section.
const NoItems = "No items found"

//go:embed templates/*.html
var templateFS embed.FS

// SectionKind selects how a section's entries are described.
type SectionKind int

const (
	SectionTopThisWeek SectionKind = iota
	SectionGainersAbsolute
	SectionGainersPercent
	SectionNewThisWeek
)

// Section is one ranked list of the digest.
type Section struct {
	Kind    SectionKind
	Title   string
	Icon    string
	Entries []models.ModelMetric
}

// Sections returns the digest sections in presentation order.
func Sections(r report.Rankings) []Section {
	return []Section{
		{SectionTopThisWeek, "Top Models This Week", "🏆", r.TopThisWeek},
		{SectionGainersAbsolute, "Biggest Gainers (Absolute)", "📈", r.GainersAbsolute},
		{SectionGainersPercent, "Biggest Gainers (Percentage)", "🚀", r.GainersPercent},
		{SectionNewThisWeek, "New Models This Week", "🆕", r.NewThisWeek},
	}
}

// Renderer produces the subject and bodies of the digest.
type Renderer struct {
	format *Formatter
	html   *template.Template
}

// New creates a renderer formatting numbers for locale.
func New(locale string) (*Renderer, error) {
	f := NewFormatter(locale)

	tmpl, err := template.New("digest.html").Funcs(template.FuncMap{
		"number": f.Number,
		// Marked as HTML so the leading "+" is not entity-encoded.
		"signed":  func(n int64) template.HTML { return template.HTML(html.EscapeString(f.SignedNumber(n))) },
		"percent": f.Percent,
		"debut":   f.Debut,
		"inc":     func(i int) int { return i + 1 },
		"upper":   strings.ToUpper,
	}).ParseFS(templateFS, "templates/digest.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email template: %w", err)
	}

	return &Renderer{format: f, html: tmpl}, nil
}

// Subject returns the email subject for the reporting period.
func (r *Renderer) Subject(w models.Windows) string {
	return fmt.Sprintf("%s: %s", SubjectPrefix, w.Current)
}

type htmlData struct {
	Title       string
	Period      string
	TotalModels string
	PeriodEnd   time.Time
	Sections    []Section
	NoItems     string
}

// HTML renders the complete email document.
func (r *Renderer) HTML(rk report.Rankings) (string, error) {
	data := htmlData{
		Title:       SubjectPrefix,
		Period:      rk.Windows.Current.String(),
		TotalModels: r.format.Number(int64(rk.TotalModels)),
		PeriodEnd:   rk.Windows.Current.End,
		Sections:    Sections(rk),
		NoItems:     NoItems,
	}

	var buf bytes.Buffer
	if err := r.html.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}

// Formatter exposes the renderer's numeric formatting.
func (r *Renderer) Formatter() *Formatter {
	return r.format
}
