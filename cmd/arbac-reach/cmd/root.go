// Package cmd provides the CLI commands for arbac-reach.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sentinel-Gate/arbac-reach/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "arbac-reach",
	Short: "arbac-reach - ARBAC role reachability analyser",
	Long: `arbac-reach decides whether some sequence of administrative rule
applications can bring any user to hold a given goal role, under an
Administrative RBAC (ARBAC) policy.

Quick start:
  arbac-reach check policy.yaml

Configuration:
  Config is loaded from arbac-reach.yaml in the current directory,
  $HOME/.arbac-reach/, or /etc/arbac-reach/.

  Environment variables can override config values with the
  ARBAC_REACH_ prefix. Example: ARBAC_REACH_LOG_LEVEL=debug

Commands:
  check       Decide whether the goal role in a policy is reachable
  version     Print version information`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. A subcommand error maps to the
// process exit code via ExitCode, preserving the fixed check exit
// codes (0 decision, 1 usage, 2 file-not-found, 3 parse error)
// instead of cobra's default "always 1 on error".
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitCode(err))
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./arbac-reach.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
