package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yukikurage/project-progress-api/internal/analytics"
	"gopkg.in/yaml.v3"
)

// snapshot is the on-disk input of every command.
type snapshot struct {
	Tasks      []analytics.Task       `json:"tasks" yaml:"tasks"`
	Updates    []analytics.TaskUpdate `json:"updates" yaml:"updates"`
	Milestones []analytics.Milestone  `json:"milestones" yaml:"milestones"`
}

func loadSnapshot(path string) (*snapshot, error) {
	if path == "" {
		return nil, fmt.Errorf("--file is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return parseSnapshot(data, filepath.Ext(path))
}

func parseSnapshot(data []byte, ext string) (*snapshot, error) {
	var snap snapshot
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("parse JSON snapshot: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("parse YAML snapshot: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported snapshot format %q", ext)
	}
	return &snap, nil
}

// referenceDate parses --now, defaulting to today.
func referenceDate(raw string) (analytics.Date, error) {
	if raw == "" {
		return analytics.DateOf(time.Now()), nil
	}
	d := analytics.ParseDate(raw)
	if d.IsZero() {
		return analytics.Date{}, fmt.Errorf("invalid --now %q, want YYYY-MM-DD", raw)
	}
	return d, nil
}
