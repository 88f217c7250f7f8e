package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// noColorEnv disables colored output when set to "true"
const noColorEnv = "NO_COLOR"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var logFile *os.File

	// closeLogFile restores console-only logging and closes the log file
	closeLogFile := func(cmd *cobra.Command) {
		if logFile == nil {
			return
		}
		logrus.SetOutput(cmd.ErrOrStderr())
		if err := logFile.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "failed to close log file: %v\n", err)
		}
		logFile = nil
	}

	rootCmd := &cobra.Command{
		Use:   "aer",
		Short: "Resolve download links of packages from their web pages",
		Long: `Aer reads package definition files and locates the download links
of each package on its project web page.

Links are classified into 32-bit and 64-bit installers and other files
using the regular expressions of the package definition, and the version
embedded in each link is extracted when possible.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}

			noColor, _ := cmd.Flags().GetBool("no-color")
			if strings.EqualFold(os.Getenv(noColorEnv), "true") {
				noColor = true
			}
			logrus.SetFormatter(&logrus.TextFormatter{
				FullTimestamp: true,
				DisableColors: noColor,
			})

			path, _ := cmd.Flags().GetString("log-file")
			if path == "" {
				return nil
			}
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			logFile = f
			logrus.SetOutput(io.MultiWriter(cmd.ErrOrStderr(), f))
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable the usage of colors when outputting text to the console")
	rootCmd.PersistentFlags().String("log-file", "", "Also write log output to this file")

	// Add subcommands
	rootCmd.AddCommand(NewUpdateCmd())

	// Subcommands release the log file whether they succeed or fail
	for _, sub := range rootCmd.Commands() {
		run := sub.RunE
		sub.RunE = func(cmd *cobra.Command, args []string) error {
			defer closeLogFile(cmd)
			return run(cmd, args)
		}
	}

	return rootCmd
}
