package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/ralt/aer/internal/models"
	"github.com/ralt/aer/internal/parser"
	"github.com/ralt/aer/internal/resolver"
	"github.com/ralt/aer/internal/runner"
	"github.com/ralt/aer/internal/scanner"
	"github.com/ralt/aer/internal/web"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewUpdateCmd creates the update command
func NewUpdateCmd() *cobra.Command {
	var config models.UpdateConfig

	cmd := &cobra.Command{
		Use:   "update <package-file>...",
		Short: "Resolve the download links of packages",
		Long: `Loads each package definition (metadata and updater data), fetches the
configured web page and classifies the links found on it.

Arguments may be package definition files (.toml, optionally compressed
as .toml.gz, .toml.xz or .toml.zst) or directories containing them.
Files are processed in order and the run stops at the first failure.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config.PackageFiles = args

			// Validate configuration
			if err := validateConfig(&config); err != nil {
				return err
			}

			logrus.Debugf("Configuration: %+v", config)

			return runUpdate(cmd.Context(), &config)
		},
	}

	cmd.Flags().StringVar(&config.UserAgent, "user-agent", web.DefaultUserAgent, "User-Agent sent when fetching pages")
	cmd.Flags().IntVar(&config.MaxRetries, "max-retries", 3, "Retries for rate limited or failing pages")
	cmd.Flags().DurationVar(&config.Timeout, "timeout", time.Minute, "Timeout of a single page request")

	return cmd
}

func validateConfig(config *models.UpdateConfig) error {
	if len(config.PackageFiles) == 0 {
		return &models.AerError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("at least one package file is required"),
		}
	}

	if config.MaxRetries < 0 {
		return &models.AerError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("max-retries must not be negative"),
		}
	}

	if config.Timeout <= 0 {
		return &models.AerError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("timeout must be positive"),
		}
	}

	if config.UserAgent == "" {
		config.UserAgent = web.DefaultUserAgent
	}

	return nil
}

func runUpdate(ctx context.Context, config *models.UpdateConfig) error {
	logrus.Infof("Processing %d package paths", len(config.PackageFiles))

	// Step 1: Create the fetcher shared by every package
	fetcher := web.NewCircuitBreakerFetcher(web.NewFetcher(
		web.WithUserAgent(config.UserAgent),
		web.WithMaxRetries(config.MaxRetries),
		web.WithTimeout(config.Timeout),
	))

	// Step 2: Process paths one at a time, expanding each only when reached
	r := runner.New(runner.LoaderFunc(parser.ReadDefinition), resolver.New(fetcher))
	if err := r.RunPaths(ctx, scanner.NewFileSystemScanner(), config.PackageFiles); err != nil {
		return err
	}

	logrus.Info("Update completed successfully!")
	return nil
}
