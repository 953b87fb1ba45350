// Package models defines data structures and domain types.
package models

import "time"

// DefaultDescription is used for models published without a description.
const DefaultDescription = "No description available"

// ModelDescriptor describes one published model in the catalog.
type ModelDescriptor struct {
	Owner       string `json:"owner" yaml:"owner"`
	Name        string `json:"name" yaml:"name"`
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	RunCount    int64  `json:"run_count" yaml:"run_count"`
}

// Key returns the unique "owner/name" identifier of the model.
func (m ModelDescriptor) Key() string {
	return m.Owner + "/" + m.Name
}

// DisplayDescription returns the description or the placeholder when empty.
func (m ModelDescriptor) DisplayDescription() string {
	if m.Description == "" {
		return DefaultDescription
	}
	return m.Description
}

// DailyStatEntry is the run count recorded for a model on one day.
type DailyStatEntry struct {
	Date      time.Time
	DailyRuns int64
}

// Snapshot is the catalog as supplied for a single report run.
type Snapshot struct {
	Models []ModelDescriptor
	// Stats maps a model key to its date-ordered daily entries.
	Stats map[string][]DailyStatEntry
}

// StatsFor returns the daily entries of a model, nil when it has none.
func (s *Snapshot) StatsFor(key string) []DailyStatEntry {
	if s == nil || s.Stats == nil {
		return nil
	}
	return s.Stats[key]
}

// UniqueModels returns one descriptor per key. A repeated key keeps the position
// of its first occurrence and the attributes of its last one.
func (s *Snapshot) UniqueModels() []ModelDescriptor {
	if s == nil {
		return nil
	}

	index := make(map[string]int, len(s.Models))
	unique := make([]ModelDescriptor, 0, len(s.Models))
	for _, m := range s.Models {
		key := m.Key()
		if i, ok := index[key]; ok {
			unique[i] = m
			continue
		}
		index[key] = len(unique)
		unique = append(unique, m)
	}
	return unique
}
