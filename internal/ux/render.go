package ux

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/envgauge/envgauge/internal/eval"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	headerStyle = lipgloss.NewStyle().Underline(true)
)

// RenderReport writes a styled human-readable evaluation summary: the
// build outcome, one line per test, and the aggregate score.
func RenderReport(w io.Writer, report *eval.Report, noColor bool) error {
	style := func(s lipgloss.Style, text string) string {
		if noColor {
			return text
		}
		return s.Render(text)
	}

	fmt.Fprintln(w, style(titleStyle, fmt.Sprintf("Evaluation: %s", report.Repo)))
	fmt.Fprintln(w, style(dimStyle, fmt.Sprintf("Dockerfile: %s", report.Dockerfile)))

	if bl := report.BuildLog; bl != nil {
		switch {
		case bl.BuildSuccess:
			fmt.Fprintf(w, "%s image built in %.1fs\n", style(passStyle, "BUILD OK"), bl.BuildSeconds)
		case bl.BuildTimeout:
			fmt.Fprintf(w, "%s build timed out\n", style(failStyle, "BUILD FAIL"))
		default:
			fmt.Fprintf(w, "%s %s\n", style(failStyle, "BUILD FAIL"), bl.ErrorMessage)
		}
	}

	for _, err := range report.Errors {
		fmt.Fprintf(w, "%s %s\n", style(failStyle, "ERROR"), err)
	}

	if len(report.TestResults) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, style(headerStyle, "Tests"))
		for _, res := range report.TestResults {
			mark := style(failStyle, "FAIL")
			if res.Passed {
				mark = style(passStyle, "PASS")
			}
			fmt.Fprintf(w, "  %s %-30s %s\n", mark, res.TestID, style(dimStyle, res.Message))
		}
	}

	s := report.Summary
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s  (%d/%d tests, %.1f%% success, %.1fs)\n",
		style(titleStyle, "Score:"),
		style(scoreStyle, fmt.Sprintf("%d/%d", s.TotalScore, s.MaxScore)),
		s.PassedTests, s.TotalTests, s.SuccessRate*100, s.TotalExecutionTime)

	return nil
}

// ComparisonRow is one model's aggregate metrics in a repo comparison.
type ComparisonRow struct {
	Model       string  `json:"model"`
	TotalScore  int     `json:"total_score"`
	MaxScore    int     `json:"max_score"`
	SuccessRate float64 `json:"success_rate"`
	TotalTime   float64 `json:"total_time"`
	PassedTests int     `json:"passed_tests"`
	TotalTests  int     `json:"total_tests"`
}

// RenderComparison writes the plain-text comparison table for a repo.
// Rows are expected to be pre-sorted by total score, best first.
func RenderComparison(w io.Writer, repo string, rows []ComparisonRow) error {
	fmt.Fprintf(w, "Repository: %s\n", repo)
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-25s %-12s %-10s %-10s %-10s\n", "Model", "Score", "Success %", "Time (s)", "Tests")
	fmt.Fprintln(w, strings.Repeat("-", 80))

	for _, row := range rows {
		fmt.Fprintf(w, "%-25s %-12s %-10s %-10s %-10s\n",
			row.Model,
			fmt.Sprintf("%d/%d", row.TotalScore, row.MaxScore),
			fmt.Sprintf("%.1f%%", row.SuccessRate*100),
			fmt.Sprintf("%.1f", row.TotalTime),
			fmt.Sprintf("%d/%d", row.PassedTests, row.TotalTests))
	}

	if len(rows) > 0 {
		best := rows[0]
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Best Performer: %s (Score: %d/%d, Success: %.1f%%)\n",
			best.Model, best.TotalScore, best.MaxScore, best.SuccessRate*100)
	}
	return nil
}
