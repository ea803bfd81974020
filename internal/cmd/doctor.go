package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/envgauge/envgauge/internal/container"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the environment can run evaluations",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		failed := false

		if err := container.ValidateAvailable(cmd.Context()); err != nil {
			fmt.Fprintf(out, "FAIL docker: %v\n", err)
			failed = true
		} else {
			fmt.Fprintln(out, "OK   docker is available")
		}

		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(out, "FAIL config: %v\n", err)
			return fmt.Errorf("environment checks failed")
		}
		fmt.Fprintln(out, "OK   configuration loads")

		for _, dir := range []struct{ name, path string }{
			{"data directory", cfg.Build.DataDir},
			{"rubric directory", cfg.Paths.RubricDir},
			{"baseline directory", cfg.Paths.BaselineDir},
		} {
			if info, statErr := os.Stat(dir.path); statErr != nil || !info.IsDir() {
				fmt.Fprintf(out, "WARN %s missing: %s\n", dir.name, dir.path)
			} else {
				fmt.Fprintf(out, "OK   %s: %s\n", dir.name, dir.path)
			}
		}

		if failed {
			return fmt.Errorf("environment checks failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
