// Package main is the entry point for the weekly-report CLI. It loads the
// model catalog, ranks week-over-week usage and emails the digest.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/j-veylop/weekly-report/internal/config"
	"github.com/j-veylop/weekly-report/internal/logger"
	"github.com/j-veylop/weekly-report/internal/mail"
	"github.com/j-veylop/weekly-report/internal/ui/styles"
	"github.com/j-veylop/weekly-report/internal/version"
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// cli carries the state shared by all commands of one invocation.
type cli struct {
	stdout io.Writer
	stderr io.Writer
	cfg    *config.Config
}

// loadConfig reads configuration once and configures logging from it.
func (c *cli) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Configure(c.stderr, cfg.LogLevel)
	c.cfg = cfg
	return cfg, nil
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "weekly-report",
		Short: "Email a weekly digest of model usage",
		Long: `weekly-report compares the last two complete weeks of daily run counts for
every model in the catalog and emails a digest with four lists: top models,
biggest absolute gainers, biggest percentage gainers and new models.

Running without a subcommand is the same as "weekly-report send".

Environment Variables:
  TO_EMAILS             Comma-separated recipients
  FROM_EMAIL            Sender address
  SMTP_HOST, SMTP_PORT  SMTP server (port 465 uses implicit TLS)
  SMTP_USER, SMTP_PASS  SMTP credentials
  CATALOG_MODELS_PATH   Model descriptors file (default: models.json)
  CATALOG_STATS_PATH    Daily stats file (default: stats.json)
  DATABASE_PATH         Read the catalog from this SQLite database instead
  REPORT_LOCALE         Number formatting locale (default: en-US)
  REPORT_TIMEZONE       Zone for week boundaries (default: Local)
  SEND_TIMEOUT          SMTP exchange timeout (default: 60s)
  DESKTOP_NOTIFY        Show a desktop notification after sending
  LOG_LEVEL             debug, info, warn or error

Configuration:
  Variables may also be set in a .env file in the current directory or in
  ~/.config/weekly-report/.env.`,
		Version:       version.GetVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	send := newSendCmd(c)
	root.RunE = send.RunE
	root.AddCommand(send, newPreviewCmd(c), newImportCmd(c), newVersionCmd(c))
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)
	return root
}

func newVersionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintln(c.stdout, version.Info())
		},
	}
}

// execute runs the CLI and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	c := &cli{stdout: stdout, stderr: stderr}
	root := newRootCmd(c)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var cfgErr *config.ConfigurationError
	var delivery *mail.DeliveryError
	switch {
	case errors.As(err, &cfgErr):
		fmt.Fprint(stderr, cfgErr.Usage())
	case errors.As(err, &delivery):
		fmt.Fprintln(stderr, styles.ErrorTextStyle.Render("Failed to send email: "+delivery.Err.Error()))
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return 1
}
