package exporter

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ps-net-stats/pkg/config"
	"github.com/ps-net-stats/pkg/version"
)

var defaultCfg = config.NewDefaultConfig()

// NewRootCmd builds the ps-net-stats command with every settings flag registered.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ps-net-stats",
		Short:         "Prometheus exporter for PowerScale per-interface network counters",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd)
		},
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the cluster inventory YAML (required)")
	rootCmd.PersistentFlags().String("settings", "", "Optional exporter settings YAML")
	initServerFlags(rootCmd)
	initCollectorFlags(rootCmd)
	initSSHFlags(rootCmd)
	initLogFlags(rootCmd)
	return rootCmd
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	// flag parsing and argument errors
	return ExitUsage
}

// Main is the process entry point.
func Main() {
	os.Exit(Execute(context.Background(), os.Args[1:]))
}
