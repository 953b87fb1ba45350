// Package catalog reads the model catalog and its daily run statistics from
// JSON or YAML files.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/j-veylop/weekly-report/internal/models"
)

// Source supplies the catalog snapshot for one report run.
type Source interface {
	Load(ctx context.Context) (*models.Snapshot, error)
}

// StatRecord is one element of a model's daily statistics as stored on disk.
type StatRecord struct {
	Date      string `json:"date" yaml:"date"`
	DailyRuns int64  `json:"dailyRuns" yaml:"dailyRuns"`
}

// FileSource reads descriptors and statistics from two files. The models file
// holds an array of descriptors; the stats file maps "owner/name" to an array
// of daily records.
type FileSource struct {
	ModelsPath string
	StatsPath  string
	// Location is used for dates without a zone. Nil means time.Local.
	Location *time.Location
}

// Load reads and decodes both files.
func (s *FileSource) Load(ctx context.Context) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var descriptors []models.ModelDescriptor
	if err := decodeFile(s.ModelsPath, &descriptors); err != nil {
		return nil, fmt.Errorf("failed to read models: %w", err)
	}

	var records map[string][]StatRecord
	if err := decodeFile(s.StatsPath, &records); err != nil {
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}

	stats, err := ConvertStats(records, s.location())
	if err != nil {
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}

	return &models.Snapshot{Models: descriptors, Stats: stats}, nil
}

// Paths returns the files backing the source.
func (s *FileSource) Paths() []string {
	return []string{s.ModelsPath, s.StatsPath}
}

func (s *FileSource) location() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}

// ConvertStats parses the dates of raw records into daily entries.
func ConvertStats(records map[string][]StatRecord, loc *time.Location) (map[string][]models.DailyStatEntry, error) {
	stats := make(map[string][]models.DailyStatEntry, len(records))
	for key, recs := range records {
		entries := make([]models.DailyStatEntry, 0, len(recs))
		for i, rec := range recs {
			date, err := ParseDate(rec.Date, loc)
			if err != nil {
				return nil, fmt.Errorf("%s entry %d: %w", key, i, err)
			}
			entries = append(entries, models.DailyStatEntry{Date: date, DailyRuns: rec.DailyRuns})
		}
		stats[key] = entries
	}
	return stats, nil
}

var dateFormats = []string{
	time.DateOnly,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateTime,
}

// ParseDate parses an ISO date or timestamp. Values without a zone are
// interpreted in loc, so a bare date is midnight of that day in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	for _, format := range dateFormats {
		if t, err := time.ParseInLocation(format, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// decodeFile decodes YAML for .yaml/.yml files and JSON for everything else.
func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	default:
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
