package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/j-veylop/weekly-report/internal/services"
	"github.com/j-veylop/weekly-report/internal/ui/styles"
)

func newImportCmd(c *cli) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load the catalog files into a SQLite catalog database",
		Long: `Replace the contents of a SQLite catalog database with the models and daily
stats read from CATALOG_MODELS_PATH and CATALOG_STATS_PATH. Later runs read
from the database when DATABASE_PATH points at it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if dbPath == "" {
				dbPath = cfg.Catalog.DatabasePath
			}
			if dbPath == "" {
				return errors.New("no database path: pass --db or set DATABASE_PATH")
			}

			result, err := services.Import(cmd.Context(), cfg, dbPath)
			if err != nil {
				return err
			}

			fmt.Fprintln(c.stdout, styles.SuccessTextStyle.Render(
				fmt.Sprintf("Imported %d models and %d daily stats into %s", result.Models, result.Stats, result.Path)))
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite catalog path (default: $DATABASE_PATH)")
	return cmd
}
