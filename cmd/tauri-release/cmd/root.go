package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/oshokin/tauri-release/internal/config"
	"github.com/oshokin/tauri-release/internal/logger"
	"github.com/oshokin/tauri-release/internal/service/pipeline"
	"github.com/oshokin/tauri-release/internal/version"
)

var (
	// configPath to the settings YAML file.
	configPath string
	// logLevel is one of debug, info, warn or error.
	logLevel string
	// commitMessage skips the commit message prompt.
	commitMessage string
	// newVersion skips the version prompt.
	newVersion string
	// bump selects the default next version.
	bump string
	// assumeYes accepts every default without prompting.
	assumeYes bool
	// force lets init overwrite an existing settings file.
	force bool

	// rootCmd represents the interactive release.
	rootCmd = &cobra.Command{
		Use:   "tauri-release",
		Short: "Bump, build, sign, collect and publish a Tauri release",
		Long: `Interactive release of a Tauri desktop application.

Asks for a commit message and the new version, commits pending changes,
writes the version to package.json and tauri.conf.json, builds signed
installers, copies them into the release directory, pushes and tags vX.Y.Z.`,
		Args: cobra.NoArgs,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return applyLogLevel(logLevel)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			ctx = logger.WithName(ctx, "tauri-release")
			ctx = logger.WithKV(ctx, "run_id", uuid.NewString())

			options := &pipeline.Options{
				ConfigPath:     configPath,
				CommitMessage:  commitMessage,
				Version:        newVersion,
				Bump:           bump,
				AssumeDefaults: assumeYes,
				In:             cmd.InOrStdin(),
				Out:            cmd.OutOrStdout(),
			}

			result, err := pipeline.Run(ctx, options)
			if err != nil {
				logger.ErrorKV(ctx, "Release failed", "error", err)
				return err
			}

			cmd.Printf("Released %s in %s\n", result.Version, result.Duration.Round(100*time.Millisecond))

			return nil
		},
	}

	// initCmd writes the default settings file.
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with the default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", configPath)
			}

			if err := config.Save(configPath, config.Default()); err != nil {
				return err
			}

			cmd.Printf("Settings written to %s\n", configPath)

			return nil
		},
	}
)

// Execute runs the tauri-release CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func applyLogLevel(s string) error {
	level, ok := logger.ParseLogLevel(s)
	if !ok {
		return fmt.Errorf("unknown log level %q", s)
	}

	logger.SetLevel(level)

	return nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")

	rootCmd.Flags().StringVarP(&commitMessage, "message", "m", "", "commit message for pending changes")
	rootCmd.Flags().StringVar(&newVersion, "version", "", "version to release, e.g. 1.4.0")
	rootCmd.Flags().StringVar(&bump, "bump", "patch", "default version increment: patch, minor or major")
	rootCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "accept every default without prompting")

	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing settings file")

	rootCmd.AddCommand(initCmd)
}
