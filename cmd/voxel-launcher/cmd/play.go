package cmd

import (
	"context"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/oshokin/voxel-launcher/internal/logger"
	"github.com/oshokin/voxel-launcher/internal/notify"
)

var (
	// forceRefresh reinstalls the version from its original source.
	forceRefresh bool

	// progressPollInterval is how often the progress bar samples the cell.
	progressPollInterval = 100 * time.Millisecond

	// playCmd downloads, installs and starts a game version.
	playCmd = &cobra.Command{
		Use:   "play <version>",
		Short: "Download, install and start a game version.",
		Long: `Download, install and start the given game version.

Prebuilt releases are downloaded and installed under the versions directory;
versions without a prebuilt binary for this platform are built from source
when the build_unsupported setting allows it. The game starts detached:
closing the launcher does not close the game.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := newSignalContext()
			defer stop()

			ctx = logger.WithName(ctx, "play")

			_, svc, progress, err := newManager(ctx)
			if err != nil {
				return err
			}

			if running, probeErr := svc.Launcher().IsGameRunning(); probeErr == nil && running {
				logger.Warn(ctx, "The game appears to be running already")
			}

			svc.Refresh(ctx)

			done := make(chan struct{})

			go func() {
				defer close(done)

				svc.Play(ctx, args[0], forceRefresh)
			}()

			renderProgress(ctx, progress, done)

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	playCmd.Flags().BoolVarP(&forceRefresh, "refresh", "r", false,
		"reinstall the version from its original source")

	rootCmd.AddCommand(playCmd)
}

// renderProgress mirrors the shared progress cell onto a terminal bar until
// the play flow finishes. The cell is the only contract with the services;
// the bar is pure presentation.
func renderProgress(ctx context.Context, progress *notify.Progress, done <-chan struct{}) {
	bar := progressbar.NewOptions64(100,
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetDescription("Preparing the game"))

	ticker := time.NewTicker(progressPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			_ = bar.Clear()
			return
		case <-ctx.Done():
			// Abandoning the flow: services keep no cancellation hooks,
			// so just stop rendering.
			_ = bar.Clear()
			return
		case <-ticker.C:
			if fraction, ok := progress.Get(); ok {
				_ = bar.Set64(int64(fraction * 100))
			}
		}
	}
}
