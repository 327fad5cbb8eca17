// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docx-t2s/pkg/types"
)

// Report is the exported form of a run and its tasks.
type Report struct {
	Run   Run                    `json:"run" yaml:"run"`
	Tasks []types.ConversionTask `json:"tasks" yaml:"tasks"`
}

// WriteReport writes run and tasks to path as YAML or JSON, chosen by the
// file extension (.yaml, .yml, or .json).
func WriteReport(path string, run Run, tasks []types.ConversionTask) error {
	report := Report{Run: run, Tasks: tasks}
	if report.Tasks == nil {
		report.Tasks = []types.ConversionTask{}
	}

	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(&report)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
	case ".json":
		data, err = json.MarshalIndent(&report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		data = append(data, '\n')
	default:
		return fmt.Errorf("unsupported report format %q: use .yaml, .yml, or .json", ext)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadReport loads a report written by WriteReport.
func ReadReport(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("reading report: %w", err)
	}
	var report Report
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &report)
	} else {
		err = yaml.Unmarshal(data, &report)
	}
	if err != nil {
		return Report{}, fmt.Errorf("parsing report %s: %w", path, err)
	}
	return report, nil
}
