package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/oshokin/tauri-release/internal/config"
	"github.com/oshokin/tauri-release/internal/logger"
	"github.com/oshokin/tauri-release/internal/service/manifest"
	"github.com/oshokin/tauri-release/internal/version"
)

var (
	// configPath to the settings YAML file, used for platform and URL defaults.
	configPath string
	// logLevel is one of debug, info, warn or error.
	logLevel string
	// urlTemplate overrides the configured download URL template.
	urlTemplate string
	// platformKey overrides the configured platform entry.
	platformKey string

	// rootCmd represents the update manifest generator.
	rootCmd = &cobra.Command{
		Use:   "tauri-manifest <target-dir> <version> [notes]",
		Short: "Write latest.json for the updater",
		Long: `Generates latest.json next to a signed update archive.

The target directory is searched for an .msi.zip archive with its .sig
signature; a target-dir ending in msi also falls back to the sibling nsis
directory and its .nsis.zip archive.`,
		Args: cobra.RangeArgs(2, 3),
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("unknown log level %q", logLevel)
			}

			logger.SetLevel(level)

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			ctx = logger.WithName(ctx, "tauri-manifest")
			ctx = logger.WithKV(ctx, "run_id", uuid.NewString())

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			options := &manifest.Options{
				TargetDir:   args[0],
				Version:     args[1],
				PlatformKey: cfg.PlatformKey,
				URLTemplate: cfg.DownloadURLTemplate,
			}

			if len(args) > 2 {
				options.Notes = args[2]
			}

			if urlTemplate != "" {
				options.URLTemplate = urlTemplate
			}

			if platformKey != "" {
				options.PlatformKey = platformKey
			}

			path, err := manifest.Run(ctx, options)
			if err != nil {
				logger.ErrorKV(ctx, "Manifest generation failed", "error", err)
				return err
			}

			cmd.Printf("Generated %s\n", path)

			return nil
		},
	}
)

// Execute runs the tauri-manifest CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")

	rootCmd.Flags().StringVar(&urlTemplate, "url-template", "", "download URL template with {version} and {file}")
	rootCmd.Flags().StringVar(&platformKey, "platform", "", "platform key of the manifest entry")
}
