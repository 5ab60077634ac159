// Package cli implements the callback-cli command line tool, used by
// operators to verify callback payloads and inspect trust anchors
// without running the HTTP service.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/issuer-networks/wallet-callback/internal/logger"
	"github.com/issuer-networks/wallet-callback/internal/version"
)

var appLogger *slog.Logger

var logLevel string

var rootCmd = &cobra.Command{
	Use:               "callback-cli",
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	Short:             "Wallet callback verification CLI",
	Long:              `Operator CLI for verifying signed wallet callback payloads and inspecting published trust anchors`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		appLogger = logger.InitLogger(logger.ParseLogLevel(logLevel), "dev")
		return nil
	},
}

func Execute() {
	v := version.Get()
	rootCmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}
