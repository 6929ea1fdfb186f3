package installer

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/oshokin/voxel-launcher/internal/notify"
	"github.com/oshokin/voxel-launcher/internal/service/runner"
)

const (
	// buildDirName is the cmake build directory inside a version directory.
	buildDirName = "build"
	// percentDivisor converts cmake's integer percentage into a fraction.
	percentDivisor = 100
)

// Build compiles the game sources inside the version directory with cmake.
// A refresh discards the previous build directory first. Build output drives
// the shared progress cell through cmake's "[ NN%]" line prefixes.
func (s *Service) Build(ctx context.Context, versionDir string, progress *notify.Progress, refresh bool) bool {
	buildDir := filepath.Join(versionDir, buildDirName)

	if refresh {
		_ = os.RemoveAll(buildDir)
	}

	_ = os.Mkdir(buildDir, directoryMode)

	s.sink.Info("Building the game")

	configureArgs := []string{"-DCMAKE_BUILD_TYPE=Release", "-B" + buildDirName}
	if !runner.Run(ctx, s.sink, "cmake", configureArgs, versionDir, nil) {
		return false
	}

	return runner.Run(ctx, s.sink, "cmake", []string{"--build", buildDirName}, versionDir,
		func(line string) {
			if fraction, ok := parseBuildPercent(line); ok {
				progress.Set(fraction)
			}
		})
}

// parseBuildPercent extracts the completion fraction from a cmake build line
// of the form "[ 42%] Building CXX object ...".
func parseBuildPercent(line string) (float64, bool) {
	rest, ok := strings.CutPrefix(line, "[")
	if !ok {
		return 0, false
	}

	percent, _, ok := strings.Cut(rest, "]")
	if !ok {
		return 0, false
	}

	percent, ok = strings.CutSuffix(strings.TrimSpace(percent), "%")
	if !ok {
		return 0, false
	}

	value, err := strconv.Atoi(strings.TrimSpace(percent))
	if err != nil {
		return 0, false
	}

	return float64(value) / percentDivisor, true
}
