package cmd

import (
	"github.com/spf13/cobra"

	"github.com/envgauge/envgauge/internal/ux"
	"github.com/envgauge/envgauge/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		formatter, err := ux.NewFormatter(format, &ux.FormatterOptions{Writer: cmd.OutOrStdout()})
		if err != nil {
			return err
		}
		return formatter.Format(version.GetInfo())
	},
}

func init() {
	versionCmd.Flags().String("format", "text", "output format: text, json, yaml")
	rootCmd.AddCommand(versionCmd)
}
