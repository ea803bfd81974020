package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/envgauge/envgauge/internal/batch"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Evaluate every model's Dockerfile for a repository",
	Long: `Find every Dockerfile for the repository under the baseline tree,
evaluate each one, and write two report structures:

  reports-by-model/  per-evaluation JSON reports mirroring the baseline layout
  reports-by-repo/   a JSON summary and plain-text table comparing all models

Directory locations follow the config file and can be overridden by flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, _ := cmd.Flags().GetString("repo")
		baselineDir, _ := cmd.Flags().GetString("baseline-dir")
		byModelDir, _ := cmd.Flags().GetString("reports-by-model-dir")
		byRepoDir, _ := cmd.Flags().GetString("reports-by-repo-dir")
		skipExisting, _ := cmd.Flags().GetBool("skip-existing")
		summaryOnly, _ := cmd.Flags().GetBool("summary-only")
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if baselineDir != "" {
			cfg.Paths.BaselineDir = baselineDir
		}
		if byModelDir != "" {
			cfg.Paths.ReportsByModelDir = byModelDir
		}
		if byRepoDir != "" {
			cfg.Paths.ReportsByRepoDir = byRepoDir
		}

		runner := batch.NewRunner(cfg, nil)
		outcomes, err := runner.Run(cmd.Context(), repo, batch.Options{
			SkipExisting: skipExisting,
			SummaryOnly:  summaryOnly,
			Concurrency:  concurrency,
		})
		if err != nil {
			return err
		}

		var evaluated, skipped, failed int
		for _, outcome := range outcomes {
			switch {
			case outcome.Skipped:
				skipped++
			case outcome.Err != nil:
				failed++
				fmt.Fprintf(os.Stderr, "FAIL: %s: %v\n", outcome.Target.DockerfilePath, outcome.Err)
			default:
				evaluated++
			}
		}
		if !summaryOnly {
			fmt.Fprintf(os.Stderr, "Batch complete: %d evaluated, %d skipped, %d failed\n",
				evaluated, skipped, failed)
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d evaluations failed", failed, len(outcomes))
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().String("repo", "", "repository name to evaluate")
	batchCmd.Flags().String("baseline-dir", "", "directory holding the per-model Dockerfiles")
	batchCmd.Flags().String("reports-by-model-dir", "", "directory for individual model reports")
	batchCmd.Flags().String("reports-by-repo-dir", "", "directory for repository summaries")
	batchCmd.Flags().Bool("skip-existing", false, "skip Dockerfiles whose report already exists")
	batchCmd.Flags().Bool("summary-only", false, "only rebuild the repo summary from existing reports")
	batchCmd.Flags().Int("concurrency", 1, "number of evaluations to run in parallel")
	_ = batchCmd.MarkFlagRequired("repo")

	rootCmd.AddCommand(batchCmd)
}
