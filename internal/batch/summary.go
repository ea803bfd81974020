package batch

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	evalerrors "github.com/envgauge/envgauge/internal/errors"
	"github.com/envgauge/envgauge/internal/eval"
	"github.com/envgauge/envgauge/internal/ux"
)

// SummaryReport compares every model's evaluation of one repository.
type SummaryReport struct {
	Repository           string             `json:"repository"`
	Timestamp            string             `json:"timestamp"`
	TotalModelsEvaluated int                `json:"total_models_evaluated"`
	BestPerformer        *ux.ComparisonRow  `json:"best_performer"`
	ModelComparison      []ux.ComparisonRow `json:"model_comparison"`
}

// WriteSummary collects every per-model report for the repo and writes
// both the JSON summary and the plain-text comparison table under the
// reports-by-repo directory.
func (r *Runner) WriteSummary(repo string) error {
	rows, err := collectRows(repo, r.cfg.Paths.ReportsByModelDir)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return evalerrors.New(evalerrors.ErrCodeFileNotFound,
			"no evaluation reports found for repository "+repo).
			WithSuggestion("Run the batch evaluation before requesting a summary")
	}

	// Best score first; equal scores keep collection (lexical path) order
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalScore > rows[j].TotalScore
	})

	summary := &SummaryReport{
		Repository:           repo,
		Timestamp:            time.Now().Format(time.RFC3339),
		TotalModelsEvaluated: len(rows),
		BestPerformer:        &rows[0],
		ModelComparison:      rows,
	}

	if err := os.MkdirAll(r.cfg.Paths.ReportsByRepoDir, 0o755); err != nil {
		return evalerrors.Wrap(evalerrors.ErrCodeDirectoryFailed,
			"failed to create summary directory "+r.cfg.Paths.ReportsByRepoDir, err)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return evalerrors.Wrap(evalerrors.ErrCodeFileMarshal, "failed to encode repo summary", err)
	}
	jsonPath := filepath.Join(r.cfg.Paths.ReportsByRepoDir, repo+"_summary.json")
	if err := os.WriteFile(jsonPath, append(data, '\n'), 0o644); err != nil {
		return evalerrors.Wrap(evalerrors.ErrCodeFileWriteFailed, "failed to write "+jsonPath, err)
	}

	var table bytes.Buffer
	if err := ux.RenderComparison(&table, repo, rows); err != nil {
		return err
	}
	tablePath := filepath.Join(r.cfg.Paths.ReportsByRepoDir, repo+"_comparison.txt")
	if err := os.WriteFile(tablePath, table.Bytes(), 0o644); err != nil {
		return evalerrors.Wrap(evalerrors.ErrCodeFileWriteFailed, "failed to write "+tablePath, err)
	}

	r.logger.Info("wrote repo summary", "repo", repo, "models", len(rows),
		"summary", jsonPath, "table", tablePath)
	return nil
}

// collectRows loads every report under <byModelDir>/**/<repo>/evaluation_report.json
// and reduces each to its comparison metrics. Unreadable reports are
// skipped, matching the tolerance of a long batch run where a single
// corrupt file must not sink the whole summary.
func collectRows(repo, byModelDir string) ([]ux.ComparisonRow, error) {
	var rows []ux.ComparisonRow

	err := filepath.WalkDir(byModelDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == byModelDir {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || d.Name() != ReportFilename {
			return nil
		}
		if filepath.Base(filepath.Dir(path)) != repo {
			return nil
		}

		report, loadErr := eval.LoadReport(path)
		if loadErr != nil {
			return nil
		}

		rel, relErr := filepath.Rel(byModelDir, path)
		if relErr != nil {
			return relErr
		}

		s := report.Summary
		rows = append(rows, ux.ComparisonRow{
			Model:       ExtractModelID(rel),
			TotalScore:  s.TotalScore,
			MaxScore:    s.MaxScore,
			SuccessRate: s.SuccessRate,
			TotalTime:   s.TotalExecutionTime,
			PassedTests: s.PassedTests,
			TotalTests:  s.TotalTests,
		})
		return nil
	})
	if err != nil {
		return nil, evalerrors.Wrap(evalerrors.ErrCodeFileReadFailed,
			"failed to scan reports directory "+byModelDir, err)
	}

	return rows, nil
}
