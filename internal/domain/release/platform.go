package release

import (
	"path/filepath"
	"runtime"
	"strings"
)

// Family identifies the platform family the launcher runs on. Releases ship
// prebuilt binaries for exactly two families; anything else builds from source.
type Family int

const (
	// FamilyUnknown is any platform without prebuilt release assets.
	FamilyUnknown Family = iota
	// FamilyWindows covers the Windows builds (zipped win64 archives).
	FamilyWindows
	// FamilyLinux covers the Unix-like builds (AppImage binaries).
	FamilyLinux
)

const (
	// windowsAssetMarker is the substring identifying Windows release assets.
	windowsAssetMarker = "win64"
	// linuxAssetMarker is the substring identifying Unix-like release assets.
	linuxAssetMarker = "AppImage"

	// windowsExecutable is the game executable name on the Windows family.
	windowsExecutable = "VoxelEngine.exe"
	// linuxExecutable is the downloaded game executable name on the Unix-like family.
	linuxExecutable = "VoxelEngine.AppImage"
	// builtExecutable is the name of a binary built from source on non-Windows platforms.
	builtExecutable = "VoxelEngine"

	// DefaultVersionsRoot is the directory holding one subdirectory per installed version.
	DefaultVersionsRoot = "versions"
)

// Platform captures the platform-conditional conventions. Resolve it once at
// startup and inject it, so both variants stay testable on one machine.
type Platform struct {
	family Family
}

// CurrentPlatform resolves the platform strategy for the running OS.
func CurrentPlatform() Platform {
	return PlatformFor(runtime.GOOS)
}

// PlatformFor maps a GOOS value to a platform strategy.
func PlatformFor(goos string) Platform {
	switch strings.ToLower(strings.TrimSpace(goos)) {
	case "windows":
		return Platform{family: FamilyWindows}
	case "linux", "darwin", "freebsd", "openbsd", "netbsd":
		return Platform{family: FamilyLinux}
	default:
		return Platform{family: FamilyUnknown}
	}
}

// Family returns the resolved platform family.
func (p Platform) Family() Family {
	return p.family
}

// MatchesAsset reports whether a release asset with the given name is built
// for this platform. Unknown families match nothing.
func (p Platform) MatchesAsset(name string) bool {
	switch p.family {
	case FamilyWindows:
		return strings.Contains(name, windowsAssetMarker)
	case FamilyLinux:
		return strings.Contains(name, linuxAssetMarker)
	default:
		return false
	}
}

// DownloadedName returns the executable filename a prebuilt asset installs as.
func (p Platform) DownloadedName() string {
	if p.family == FamilyWindows {
		return windowsExecutable
	}

	return linuxExecutable
}

// BinaryName returns the executable filename a from-source build produces.
func (p Platform) BinaryName() string {
	if p.family == FamilyWindows {
		return windowsExecutable
	}

	return builtExecutable
}

// InstallsFromArchive reports whether prebuilt assets for this platform are
// zip archives rather than standalone binaries.
func (p Platform) InstallsFromArchive() bool {
	return p.family == FamilyWindows
}

// VersionPath maps a version name to its installation directory under root.
// An empty root falls back to DefaultVersionsRoot.
func VersionPath(root, name string) string {
	if root == "" {
		root = DefaultVersionsRoot
	}

	return filepath.Join(root, name)
}
