// Package services wires the catalog, report and mail packages into runs.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/google/uuid"

	"github.com/j-veylop/weekly-report/internal/catalog"
	"github.com/j-veylop/weekly-report/internal/config"
	"github.com/j-veylop/weekly-report/internal/db"
	"github.com/j-veylop/weekly-report/internal/logger"
	"github.com/j-veylop/weekly-report/internal/mail"
	"github.com/j-veylop/weekly-report/internal/models"
	"github.com/j-veylop/weekly-report/internal/render"
	"github.com/j-veylop/weekly-report/internal/report"
	"github.com/j-veylop/weekly-report/internal/ui/styles"
)

// Preview chart dimensions.
const (
	ChartWidth  = 56
	ChartHeight = 10
)

// ErrNoDispatcher is returned by Run when the runner was built for previews.
var ErrNoDispatcher = errors.New("no mail dispatcher configured")

// Dispatcher delivers a rendered digest. *mail.Dispatcher implements it.
type Dispatcher interface {
	Send(ctx context.Context, msg mail.Message) error
	Confirm(w io.Writer, modelCount int, period string)
}

// Notifier shows a desktop notification.
type Notifier func(title, message string) error

// Digest is one fully computed and rendered report.
type Digest struct {
	Windows  models.Windows
	Rankings report.Rankings
	Totals   []float64
	Subject  string
	HTML     string
	Text     string
}

// Runner executes the report pipeline once per call.
type Runner struct {
	source     catalog.Source
	renderer   *render.Renderer
	dispatcher Dispatcher
	location   *time.Location
	now        func() time.Time
	notify     Notifier
	out        io.Writer
	runID      string
	log        *slog.Logger
}

// Option customizes a Runner.
type Option func(*Runner)

// WithDispatcher sets where Run delivers the digest.
func WithDispatcher(d Dispatcher) Option {
	return func(r *Runner) { r.dispatcher = d }
}

// WithClock replaces time.Now when resolving the reporting windows.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithNotifier replaces the desktop notifier. Nil disables notifications.
func WithNotifier(n Notifier) Option {
	return func(r *Runner) { r.notify = n }
}

// WithOutput sets where confirmations are printed. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// NewRunner creates a runner reading from source.
func NewRunner(cfg *config.Config, source catalog.Source, opts ...Option) (*Runner, error) {
	renderer, err := render.New(cfg.Report.Locale)
	if err != nil {
		return nil, err
	}

	location := cfg.Report.Location
	if location == nil {
		location = time.Local
	}

	r := &Runner{
		source:   source,
		renderer: renderer,
		location: location,
		now:      time.Now,
		out:      os.Stdout,
		runID:    uuid.NewString(),
	}
	r.log = logger.With("run_id", r.runID)
	if cfg.DesktopNotify {
		r.notify = desktopNotify
	}
	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

func desktopNotify(title, message string) error {
	return beeep.Notify(title, message, "")
}

// Build loads the catalog and computes and renders the digest.
func (r *Runner) Build(ctx context.Context) (*Digest, error) {
	started := time.Now()

	snapshot, err := r.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	windows := models.ResolveWindows(r.now().In(r.location))
	metrics := report.Aggregate(snapshot, windows)
	rankings := report.Rank(metrics, windows)

	html, err := r.renderer.HTML(rankings)
	if err != nil {
		return nil, err
	}

	r.log.Debug("digest built",
		"models", rankings.TotalModels,
		"period", windows.Current.String(),
		"elapsed", time.Since(started))

	return &Digest{
		Windows:  windows,
		Rankings: rankings,
		Totals:   report.DailyTotals(snapshot, windows),
		Subject:  r.renderer.Subject(windows),
		HTML:     html,
		Text:     r.renderer.Text(rankings),
	}, nil
}

// Run builds the digest, sends it and prints the confirmation.
func (r *Runner) Run(ctx context.Context) error {
	if r.dispatcher == nil {
		return ErrNoDispatcher
	}

	d, err := r.Build(ctx)
	if err != nil {
		r.notifyResult("Weekly report failed", err.Error())
		return err
	}

	r.log.Info("sending weekly report", "period", d.Windows.Current.String())
	if err := r.dispatcher.Send(ctx, mail.Message{Subject: d.Subject, HTML: d.HTML, Text: d.Text}); err != nil {
		r.log.Error("weekly report not sent", "error", err)
		r.notifyResult("Weekly report failed", err.Error())
		return err
	}

	r.dispatcher.Confirm(r.out, d.Rankings.TotalModels, d.Windows.Current.String())
	r.log.Info("weekly report sent", "models", d.Rankings.TotalModels)
	r.notifyResult("Weekly report sent", fmt.Sprintf("%s (%d models)", d.Windows.Current, d.Rankings.TotalModels))
	return nil
}

// Preview builds the digest and writes the console report and chart to w.
func (r *Runner) Preview(ctx context.Context, w io.Writer) (*Digest, error) {
	d, err := r.Build(ctx)
	if err != nil {
		return nil, err
	}

	lines := strings.SplitN(d.Text, "\n", 2)
	fmt.Fprintln(w, styles.TitleStyle.Render(lines[0]))
	if len(lines) > 1 {
		fmt.Fprint(w, lines[1])
	}

	this, last := weekTotals(d.Totals)
	change := this - last
	f := r.renderer.Formatter()
	fmt.Fprintf(w, "\n%s %s runs (%s vs previous week)\n",
		styles.SubTitleStyle.Render("Catalog:"),
		f.Number(this),
		styles.GetChangeStyle(change).Render(f.SignedNumber(change)))

	fmt.Fprintln(w, styles.CardStyle.Render(render.Chart(d.Totals, d.Windows, ChartWidth, ChartHeight)))
	fmt.Fprintln(w, styles.HelpStyle.Render("Subject: "+d.Subject))
	return d, nil
}

// WriteHTML builds the digest and writes the email document to path.
func (r *Runner) WriteHTML(ctx context.Context, path string) error {
	d, err := r.Build(ctx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(d.HTML), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	r.log.Info("wrote report HTML", "path", path)
	return nil
}

// weekTotals splits the chart series into the current and previous week sums.
func weekTotals(totals []float64) (this, last int64) {
	for i, v := range totals {
		if i < models.WindowDays {
			last += int64(v)
		} else {
			this += int64(v)
		}
	}
	return this, last
}

func (r *Runner) notifyResult(title, message string) {
	if r.notify == nil {
		return
	}
	if err := r.notify(title, message); err != nil {
		r.log.Warn("desktop notification failed", "error", err)
	}
}

// OpenSource returns the catalog source selected by cfg and a function that
// releases it.
func OpenSource(cfg *config.Config) (catalog.Source, func() error, error) {
	if !cfg.Catalog.UseDatabase() {
		return &catalog.FileSource{
			ModelsPath: cfg.Catalog.ModelsPath,
			StatsPath:  cfg.Catalog.StatsPath,
			Location:   cfg.Report.Location,
		}, func() error { return nil }, nil
	}

	database, err := db.New(cfg.Catalog.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	return database.Source(cfg.Report.Location), database.Close, nil
}
