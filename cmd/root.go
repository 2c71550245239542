package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/secsweep/secsweep/cmd/run"
	"github.com/secsweep/secsweep/cmd/tokens"
	"github.com/secsweep/secsweep/cmd/version"
	"github.com/secsweep/secsweep/pkg/shared/config"
	"github.com/secsweep/secsweep/pkg/shared/logger"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "secsweep [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Secsweep continuously sweeps organizations for leaked credentials.",
		Long: `Secsweep drives an external secret-detection engine across a list of
	organizations, rotating access tokens around rate limits, persisting raw and
	verified findings, and alerting verified leaks to a notification channel.
	`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml)")
	rootCmd.AddCommand(run.RunCmd)
	rootCmd.AddCommand(tokens.TokensCmd)
	rootCmd.AddCommand(version.NewVersionCmd())
}

// Execute runs the root command and maps failures to a process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		return 1
	}
	return 0
}

func initConfig() {
	var err error

	if cfgFile == "" {
		cfgFile = "config.yml"
	}
	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Printf("failed to initialize config file %q: %v\n", cfgFile, err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	coreLogger := logger.NewLogger(AppConfig, "secsweep")
	run.Init(AppConfig, coreLogger)
	tokens.Init(AppConfig, coreLogger)
}
