package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/envgauge/envgauge/internal/config"
	"github.com/envgauge/envgauge/internal/log"
	"github.com/envgauge/envgauge/internal/version"
)

var (
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "envgauge",
	Short: "Evaluate machine-generated Dockerfiles against JSON rubrics",
	Long: `envgauge builds Docker images from machine-generated Dockerfiles and runs
rubric-defined checks inside the resulting containers. Each rubric is a JSON
test suite per repository; evaluations produce scored JSON reports, and batch
runs compare every model's Dockerfile for a repository side by side.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logCfg := log.DefaultConfig()
		if verbose {
			logCfg = log.VerboseConfig()
		}
		log.SetDefaultLogger(log.New(logCfg))
	},
}

// ExecuteContext runs the root command with the given context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: "+config.DefaultConfigPath+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable styled terminal output")
}

// loadConfig resolves the effective configuration: the --config file if
// given, the default config file if present, built-in defaults otherwise.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadOrDefault(config.DefaultConfigPath)
}
