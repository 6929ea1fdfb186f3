package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/oshokin/voxel-launcher/internal/config"
	"github.com/oshokin/voxel-launcher/internal/logger"
	"github.com/oshokin/voxel-launcher/internal/notify"
	"github.com/oshokin/voxel-launcher/internal/service/manager"
	"github.com/oshokin/voxel-launcher/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// logLevel overrides the default logging level.
	logLevel string

	// rootCmd represents the base command listing available game versions.
	rootCmd = &cobra.Command{
		Use:   "voxel-launcher",
		Short: "Download, build and run VoxelEngine versions.",
		Long: `Launcher for the VoxelEngine voxel game.

Lists published releases from GitHub (falling back to locally installed
versions when offline), shows how each version can be obtained on this
platform and whether it is already installed. Use the play subcommand
to download, build and start a version.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := newSignalContext()
			defer stop()

			cfg, svc, _, err := newManager(ctx)
			if err != nil {
				return err
			}

			svc.Refresh(ctx)

			writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, v := range svc.Versions() {
				fmt.Fprintf(writer, "%s\t%s\n", v.Name, sourceLabel(v))
			}

			logger.DebugKV(ctx, "Listed versions", "repo", cfg.RepoOwner+"/"+cfg.RepoName)

			return writer.Flush()
		},
	}
)

// Execute runs the voxel-launcher CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c",
		config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l",
		"", "logging level (debug, info, warn, error)")
}

// newSignalContext returns a context cancelled on SIGTERM/SIGINT and applies
// the log level flag before any service starts.
func newSignalContext() (context.Context, context.CancelFunc) {
	if logLevel != "" {
		if level, ok := logger.ParseLogLevel(logLevel); ok {
			logger.SetLevel(level)
		}
	}

	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

// newManager loads the configuration and wires the version manager with a
// logger-backed notification sink and a fresh progress cell.
func newManager(ctx context.Context) (*config.Config, *manager.Service, *notify.Progress, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	sink := notify.NewLoggerSink(logger.FromContext(ctx))
	progress := notify.NewProgress()

	return cfg, manager.NewService(cfg, sink, progress), progress, nil
}

// sourceLabel renders how a version can be obtained on this platform.
func sourceLabel(v *manager.Version) string {
	switch v.Source {
	case manager.SourceLocal:
		return "installed"
	case manager.SourceBinary:
		return "prebuilt binary"
	case manager.SourceZipball:
		return "build from source"
	case manager.SourceGit:
		return "build from git"
	default:
		return "not available"
	}
}
