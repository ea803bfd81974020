package eval

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	evalerrors "github.com/envgauge/envgauge/internal/errors"
)

// SaveReport writes a report as indented JSON, creating parent
// directories as needed.
func SaveReport(report *Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return evalerrors.Wrap(evalerrors.ErrCodeDirectoryFailed,
				fmt.Sprintf("failed to create report directory %s", dir), err).
				WithSuggestion("Check write permissions on the reports directory")
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return evalerrors.Wrap(evalerrors.ErrCodeFileWriteFailed,
			fmt.Sprintf("failed to write report to %s", path), err).
			WithSuggestion("Check write permissions on the reports directory")
	}
	return nil
}

// LoadReport reads a report previously written by SaveReport.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report %s: %w", path, err)
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parsing report %s: %w", path, err)
	}
	return &report, nil
}
