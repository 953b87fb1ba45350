package services

import (
	"context"
	"fmt"

	"github.com/j-veylop/weekly-report/internal/catalog"
	"github.com/j-veylop/weekly-report/internal/config"
	"github.com/j-veylop/weekly-report/internal/db"
	"github.com/j-veylop/weekly-report/internal/logger"
)

// ImportResult summarizes a catalog import.
type ImportResult struct {
	Path   string
	Models int
	Stats  int
}

// Import replaces the contents of the SQLite catalog at path with the
// configured catalog files.
func Import(ctx context.Context, cfg *config.Config, path string) (*ImportResult, error) {
	source := &catalog.FileSource{
		ModelsPath: cfg.Catalog.ModelsPath,
		StatsPath:  cfg.Catalog.StatsPath,
		Location:   cfg.Report.Location,
	}
	snapshot, err := source.Load(ctx)
	if err != nil {
		return nil, err
	}

	database, err := db.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	defer func() {
		if closeErr := database.Close(); closeErr != nil {
			logger.Error("failed to close catalog database", "path", path, "error", closeErr)
		}
	}()

	if err := database.ImportSnapshot(ctx, snapshot, cfg.Report.Location); err != nil {
		return nil, err
	}
	if err := database.Vacuum(ctx); err != nil {
		logger.Warn("vacuum after import failed", "path", path, "error", err)
	}

	modelCount, statCount, err := database.Counts(ctx)
	if err != nil {
		return nil, err
	}

	logger.Info("catalog imported", "path", database.Path(), "models", modelCount, "stats", statCount)
	return &ImportResult{Path: database.Path(), Models: modelCount, Stats: statCount}, nil
}
