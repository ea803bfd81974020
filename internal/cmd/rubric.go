package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/envgauge/envgauge/internal/rubric"
)

var rubricCmd = &cobra.Command{
	Use:   "rubric",
	Short: "Inspect rubric files",
}

var rubricCheckCmd = &cobra.Command{
	Use:   "check <rubric.json>",
	Short: "Validate a rubric and print its execution order",
	Long: `Parse and validate a rubric file without touching Docker: unknown test
types, duplicate ids, unknown or cyclic requires are all reported. On
success the resolved execution order and total score are printed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		r, err := rubric.Load(args[0], cfg.Tests.DefaultTimeoutSeconds)
		if err != nil {
			return err
		}

		order, err := rubric.Resolve(r)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Rubric: %s (%d tests, max score %d)\n", r.Repo, len(r.Tests), r.MaxScore())
		fmt.Fprintln(out, "Execution order:")
		for pos, idx := range order {
			t := r.Tests[idx]
			fmt.Fprintf(out, "  %2d. %s [%s]", pos+1, t.ID, t.Type)
			if len(t.Requires) > 0 {
				fmt.Fprintf(out, " requires %s", strings.Join(t.Requires, ", "))
				if closure := rubric.TransitiveRequires(r, idx); len(closure) > len(t.Requires) {
					fmt.Fprintf(out, " (%s transitively)", strings.Join(closureIDs(r, closure), ", "))
				}
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

// closureIDs lists the ids of a dependency closure in rubric order
func closureIDs(r *rubric.Rubric, closure map[int]bool) []string {
	ids := make([]string, 0, len(closure))
	for i := range r.Tests {
		if closure[i] {
			ids = append(ids, r.Tests[i].ID)
		}
	}
	return ids
}

func init() {
	rubricCmd.AddCommand(rubricCheckCmd)
	rootCmd.AddCommand(rubricCmd)
}
