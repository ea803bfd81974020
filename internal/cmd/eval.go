package cmd

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/envgauge/envgauge/internal/container"
	"github.com/envgauge/envgauge/internal/errors"
	"github.com/envgauge/envgauge/internal/eval"
	"github.com/envgauge/envgauge/internal/ux"
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate one Dockerfile against its repository rubric",
	Long: `Build a Docker image from the given Dockerfile, run every rubric test
inside the container in dependency order, and print the scored summary.

The rubric defaults to rubrics/manual/<repo>.json. With --output the full
JSON report is written to disk; on build or rubric errors a partial report
is still persisted so the failure leaves evidence.

Exit codes: 0 all tests passed, 1 failures or evaluation error, 130
interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dockerfile, _ := cmd.Flags().GetString("dockerfile")
		repo, _ := cmd.Flags().GetString("repo")
		rubricPath, _ := cmd.Flags().GetString("rubric")
		output, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")
		skipWarnings, _ := cmd.Flags().GetBool("skip-warnings")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if !skipWarnings {
			if availErr := container.ValidateAvailable(cmd.Context()); availErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", availErr)
			}
		}

		evaluator, err := eval.New(repo, dockerfile, rubricPath, cfg, nil)
		if err != nil {
			return err
		}

		report, evalErr := evaluator.Evaluate(cmd.Context())

		// Persist whatever was learned before surfacing the error
		if output != "" && report != nil {
			if saveErr := eval.SaveReport(report, output); saveErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not save report: %v\n", saveErr)
			} else {
				fmt.Fprintf(os.Stderr, "Report saved to: %s\n", output)
			}
		}

		if report != nil {
			formatter, fmtErr := ux.NewFormatter(format, &ux.FormatterOptions{NoColor: noColor})
			if fmtErr != nil {
				return fmtErr
			}
			if fmtErr := formatter.Format(report); fmtErr != nil {
				return fmtErr
			}
		}

		if evalErr != nil {
			var ee *errors.EvalError
			if stderrors.As(evalErr, &ee) {
				switch {
				case ee.IsConfiguration():
					fmt.Fprintln(os.Stderr, "Hint: validate the rubric with 'envgauge rubric check'")
				case ee.IsBuild():
					fmt.Fprintln(os.Stderr, "Hint: the build log in the report carries the docker output")
				}
			}
			return evalErr
		}
		if report.Summary.FailedTests > 0 {
			return fmt.Errorf("%d of %d tests failed",
				report.Summary.FailedTests, report.Summary.TotalTests)
		}
		return nil
	},
}

func init() {
	evalCmd.Flags().String("dockerfile", "", "path to the Dockerfile to evaluate")
	evalCmd.Flags().String("repo", "", "repository name")
	evalCmd.Flags().String("rubric", "", "rubric JSON file (default: <rubric-dir>/<repo>.json)")
	evalCmd.Flags().String("output", "", "path to save the evaluation report JSON")
	evalCmd.Flags().String("format", "text", "output format: text, json, yaml")
	evalCmd.Flags().Bool("skip-warnings", false, "suppress environment warnings before evaluating")
	_ = evalCmd.MarkFlagRequired("dockerfile")
	_ = evalCmd.MarkFlagRequired("repo")

	rootCmd.AddCommand(evalCmd)
}
