package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/j-veylop/weekly-report/internal/catalog"
	"github.com/j-veylop/weekly-report/internal/config"
	"github.com/j-veylop/weekly-report/internal/logger"
	"github.com/j-veylop/weekly-report/internal/services"
	"github.com/j-veylop/weekly-report/internal/ui/styles"
)

func newPreviewCmd(c *cli) *cobra.Command {
	var (
		htmlPath string
		watch    bool
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the digest to the terminal without sending it",
		Long: `Print the digest and a chart of catalog-wide daily runs to the terminal.
No email is sent and no mail settings are required.

Examples:
  weekly-report preview                     # Console report
  weekly-report preview --html digest.html  # Also write the email document
  weekly-report preview --watch             # Re-render when the catalog changes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			source, release, err := services.OpenSource(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := release(); closeErr != nil {
					logger.Warn("failed to close catalog", "error", closeErr)
				}
			}()

			runner, err := services.NewRunner(cfg, source, services.WithOutput(c.stdout))
			if err != nil {
				return err
			}

			var mu sync.Mutex
			render := func(ctx context.Context) error {
				mu.Lock()
				defer mu.Unlock()

				if _, err := runner.Preview(ctx, c.stdout); err != nil {
					return err
				}
				if htmlPath != "" {
					if err := runner.WriteHTML(ctx, htmlPath); err != nil {
						return err
					}
					fmt.Fprintln(c.stdout, styles.SuccessTextStyle.Render("Wrote "+htmlPath))
				}
				return nil
			}

			if err := render(cmd.Context()); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintln(c.stdout, styles.HelpStyle.Render("Watching catalog for changes, press Ctrl+C to stop"))
			return catalog.Watch(ctx, watchPaths(cfg, source), func() {
				fmt.Fprintln(c.stdout, styles.InfoTextStyle.Render("Catalog changed, rendering again"))
				if err := render(ctx); err != nil {
					// Keep watching; the next save may fix the file.
					fmt.Fprintln(c.stdout, styles.WarningTextStyle.Render("Preview failed: "+err.Error()))
				}
			})
		},
	}

	cmd.Flags().StringVar(&htmlPath, "html", "", "Write the HTML email document to this file")
	cmd.Flags().BoolVar(&watch, "watch", false, "Re-render whenever the catalog changes")
	return cmd
}

// watchPaths returns the files backing source.
func watchPaths(cfg *config.Config, source catalog.Source) []string {
	if files, ok := source.(*catalog.FileSource); ok {
		return files.Paths()
	}
	return []string{cfg.Catalog.DatabasePath}
}
