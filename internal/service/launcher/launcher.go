package launcher

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/oshokin/voxel-launcher/internal/domain/release"
	"github.com/oshokin/voxel-launcher/internal/logger"
	"github.com/oshokin/voxel-launcher/internal/notify"
)

// Service starts installed game versions.
type Service struct {
	// sink receives the launch notifications.
	sink notify.Sink
	// platform supplies the executable naming convention.
	platform release.Platform
	// versionsRoot is the directory holding installed versions.
	versionsRoot string
}

// NewService returns a launcher for versions installed under versionsRoot.
func NewService(sink notify.Sink, platform release.Platform, versionsRoot string) *Service {
	return &Service{
		sink:         sink,
		platform:     platform,
		versionsRoot: versionsRoot,
	}
}

// Launch starts the version's downloaded game executable as an independent
// process. Nothing is returned: failures surface only through the sink.
func (s *Service) Launch(ctx context.Context, versionName string) {
	s.LaunchBinary(ctx, versionName, s.platform.DownloadedName())
}

// LaunchBinary starts a specific executable recorded for the version, given
// relative to its installation directory. The info message is emitted before
// any resolution so the user always sees the attempt.
func (s *Service) LaunchBinary(ctx context.Context, versionName, binary string) {
	s.sink.Info("Running the game")

	versionDir := release.VersionPath(s.versionsRoot, versionName)

	path, err := resolveExecutable(versionDir, binary)
	if err != nil {
		s.sink.Error(fmt.Sprintf("Failed to run game executable: %s", err))
		return
	}

	logger.InfoKV(ctx, "Starting game executable", "path", path, "dir", versionDir)

	cmd := exec.Command(path)
	cmd.Dir = versionDir

	if err = cmd.Start(); err != nil {
		s.sink.Error(fmt.Sprintf("Failed to run game executable: %s", err))
		return
	}

	// Detached launch: the child is neither monitored nor reaped here.
	_ = cmd.Process.Release()
}

// resolveExecutable canonicalizes the executable path and fails when the file
// does not exist or cannot be resolved.
func resolveExecutable(versionDir, binary string) (string, error) {
	absolute, err := filepath.Abs(filepath.Join(versionDir, binary))
	if err != nil {
		return "", err
	}

	return filepath.EvalSymlinks(absolute)
}
