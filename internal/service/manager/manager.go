package manager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oshokin/voxel-launcher/internal/config"
	"github.com/oshokin/voxel-launcher/internal/domain/release"
	"github.com/oshokin/voxel-launcher/internal/logger"
	"github.com/oshokin/voxel-launcher/internal/notify"
	"github.com/oshokin/voxel-launcher/internal/service/downloader"
	"github.com/oshokin/voxel-launcher/internal/service/installer"
	"github.com/oshokin/voxel-launcher/internal/service/launcher"
	"github.com/oshokin/voxel-launcher/internal/service/runner"
)

// GitLatestName is the pseudo-version tracking the upstream default branch.
const GitLatestName = "Latest (Git)"

// errEmptyRecord is returned when an install record misses its binary path.
var errEmptyRecord = errors.New("record has no binary path")

// Source describes how a version can be obtained on this platform.
type Source int

const (
	// SourceNotFound means neither binaries nor sources exist for this platform.
	SourceNotFound Source = iota
	// SourceLocal means the version is already installed.
	SourceLocal
	// SourceBinary means a prebuilt asset can be downloaded.
	SourceBinary
	// SourceZipball means only a source archive is available.
	SourceZipball
	// SourceGit means the version builds from a cloned repository.
	SourceGit
)

// Version pairs a release name with the way it can be installed right now.
type Version struct {
	// Name is the version identity and directory name.
	Name string
	// Source is the classified install path.
	Source Source
	// AssetURL is the prebuilt asset location, set for SourceBinary.
	AssetURL string
	// ZipballURL is the source archive location, set for SourceZipball.
	ZipballURL string
	// Record is the install record, set for SourceLocal.
	Record *Record

	// rel is the underlying release, kept so a refresh can reclassify.
	rel *release.Release
}

// Service is the version manager. All failure reporting goes through the
// notification sink; the progress cell is cleared at the edges of each flow.
type Service struct {
	cfg      *config.Config
	sink     notify.Sink
	progress *notify.Progress
	platform release.Platform

	downloads *downloader.Service
	installs  *installer.Service
	launches  *launcher.Service

	// apiBase is the GitHub API root, overridable in tests.
	apiBase string

	// mu protects the cached version list.
	mu       sync.Mutex
	versions []*Version
}

// NewService wires a version manager from the shared sink and progress cell.
func NewService(cfg *config.Config, sink notify.Sink, progress *notify.Progress) *Service {
	platform := release.CurrentPlatform()

	return &Service{
		cfg:       cfg,
		sink:      sink,
		progress:  progress,
		platform:  platform,
		downloads: downloader.NewService(sink, progress),
		installs:  installer.NewService(sink, platform),
		launches:  launcher.NewService(sink, platform, cfg.VersionsDir),
		apiBase:   defaultAPIBase,
	}
}

// Launcher exposes the underlying launcher, for callers that only need to
// probe or start an installed version.
func (s *Service) Launcher() *launcher.Service {
	return s.launches
}

// Refresh rebuilds the version list from the GitHub release listing. When the
// listing is unreachable it reports through the sink and falls back to
// scanning the local versions directory.
func (s *Service) Refresh(ctx context.Context) {
	var versions []*Version

	releases, err := fetchReleases(ctx, s.apiBase, s.cfg.RepoOwner, s.cfg.RepoName)
	if err != nil {
		s.sink.Info(fmt.Sprintf("Failed to fetch versions from github: %s", err))

		versions = s.scanLocal()
	} else {
		versions = make([]*Version, 0, len(releases)+1)
		for i := range releases {
			versions = append(versions, s.classify(&releases[i], false))
		}
	}

	// The pseudo-version building the upstream default branch goes first.
	versions = append([]*Version{{Name: GitLatestName, Source: SourceGit}}, versions...)

	s.mu.Lock()
	s.versions = versions
	s.mu.Unlock()

	logger.DebugKV(ctx, "Version list refreshed", "count", len(versions))
}

// Versions returns a snapshot of the current version list.
func (s *Service) Versions() []*Version {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]*Version, len(s.versions))
	copy(snapshot, s.versions)

	return snapshot
}

// Find returns the version with the given name, if listed.
func (s *Service) Find(name string) (*Version, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, version := range s.versions {
		if version.Name == name {
			return version, true
		}
	}

	return nil, false
}

// classify decides how a release can be obtained on this platform right now.
// With ignoreLocal set an existing install record is disregarded, so a
// refresh reinstalls from the original source.
func (s *Service) classify(rel *release.Release, ignoreLocal bool) *Version {
	version := &Version{Name: rel.Name, rel: rel}
	versionDir := release.VersionPath(s.cfg.VersionsDir, rel.Name)

	if !ignoreLocal {
		if record, err := loadRecord(versionDir); err == nil {
			version.Source = SourceLocal
			version.Record = record

			return version
		}
	}

	if asset, ok := rel.PickAsset(s.platform); ok && s.cfg.UsePrebuilt {
		version.Source = SourceBinary
		version.AssetURL = asset.URL

		return version
	}

	if rel.ZipballURL != "" {
		version.Source = SourceZipball
		version.ZipballURL = rel.ZipballURL

		return version
	}

	version.Source = SourceNotFound

	return version
}

// reclassify maps an installed version back to its original source so a
// refresh can reinstall it. The release listing wins when available; without
// it the install record supplies the origin.
func (s *Service) reclassify(version *Version) *Version {
	if version.rel != nil {
		return s.classify(version.rel, true)
	}

	record := version.Record
	if record == nil {
		return version
	}

	switch {
	case record.Origin == OriginBinary && record.URL != "":
		return &Version{Name: version.Name, Source: SourceBinary, AssetURL: record.URL}
	case record.Origin == OriginSource && record.URL != "":
		return &Version{Name: version.Name, Source: SourceZipball, ZipballURL: record.URL}
	case record.Origin == OriginGit:
		return &Version{Name: version.Name, Source: SourceGit}
	default:
		s.sink.Info("Reinstall source is unknown. Running the installed version instead")

		return version
	}
}

// scanLocal lists locally installed versions by their install records.
func (s *Service) scanLocal() []*Version {
	root := s.cfg.VersionsDir
	if root == "" {
		root = release.DefaultVersionsRoot
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	var versions []*Version

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		name := entry.Name()

		record, err := loadRecord(release.VersionPath(s.cfg.VersionsDir, name))
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				s.sink.Info(fmt.Sprintf("Corrupted version %q: %s", name, err))
			}

			continue
		}

		versions = append(versions, &Version{
			Name:   name,
			Source: SourceLocal,
			Record: record,
		})
	}

	return versions
}

// Play obtains the named version (downloading, unpacking or building as its
// classification demands) and starts it. A forceRefresh discards the local
// install record and reinstalls from the original source. All outcomes are
// reported through the sink; the method blocks until the game is spawned or
// the flow fails.
func (s *Service) Play(ctx context.Context, name string, forceRefresh bool) {
	ctx = logger.WithKV(ctx, "version", name)

	version, ok := s.Find(name)
	if !ok {
		s.sink.Error("Version files not found or it's not supported on your platform")
		return
	}

	if forceRefresh && version.Source == SourceLocal {
		version = s.reclassify(version)
	}

	versionDir := release.VersionPath(s.cfg.VersionsDir, version.Name)
	_ = os.MkdirAll(versionDir, 0o755)

	switch version.Source {
	case SourceLocal:
		s.launches.LaunchBinary(ctx, version.Name, version.Record.Binary)
	case SourceBinary:
		s.playBinary(ctx, version, versionDir)
	case SourceZipball:
		s.playZipball(ctx, version, versionDir, forceRefresh)
	case SourceGit:
		s.playGit(ctx, version, versionDir, forceRefresh)
	case SourceNotFound:
		s.sink.Error("Version files not found or it's not supported on your platform")
	}
}

// playBinary downloads and installs a prebuilt asset, then starts the game.
func (s *Service) playBinary(ctx context.Context, version *Version, versionDir string) {
	s.progress.Set(0)
	defer s.progress.Clear()

	s.sink.Info("Downloading version binary")

	data, ok := s.downloads.Fetch(ctx, version.AssetURL, "binary")
	if !ok {
		return
	}

	if !s.installs.InstallAsset(data, versionDir) {
		return
	}

	s.finish(ctx, version.Name, versionDir, &Record{
		Binary: s.platform.DownloadedName(),
		Origin: OriginBinary,
		URL:    version.AssetURL,
	})
}

// playZipball downloads the source archive, builds it and starts the game.
func (s *Service) playZipball(ctx context.Context, version *Version, versionDir string, refresh bool) {
	if !s.cfg.BuildUnsupported {
		s.sink.Error("This version doesn't have prebuilt binaries for your platform")
		return
	}

	s.progress.Set(0)
	defer s.progress.Clear()

	s.sink.Info("Downloading version source")

	data, ok := s.downloads.Fetch(ctx, version.ZipballURL, "zipball")
	if !ok {
		return
	}

	s.sink.Info("Unpacking version sources")

	if !s.installs.Unpack(data, versionDir) {
		return
	}

	if !s.installs.Build(ctx, versionDir, s.progress, refresh) {
		return
	}

	s.finish(ctx, version.Name, versionDir, &Record{
		Binary: filepath.Join("build", s.platform.BinaryName()),
		Origin: OriginSource,
		URL:    version.ZipballURL,
	})
}

// playGit clones or updates the upstream repository, builds it and starts the game.
func (s *Service) playGit(ctx context.Context, version *Version, versionDir string, refresh bool) {
	if !s.cfg.BuildUnsupported {
		s.sink.Error("This version has to be built from source")
		return
	}

	s.progress.Set(0)
	defer s.progress.Clear()

	repoURL := fmt.Sprintf("https://github.com/%s/%s", s.cfg.RepoOwner, s.cfg.RepoName)

	if _, err := os.Stat(filepath.Join(versionDir, ".git")); err != nil {
		s.sink.Info("Cloning the repo")

		if !runner.Run(ctx, s.sink, "git", []string{"clone", repoURL, versionDir}, "", nil) {
			return
		}
	} else {
		s.sink.Info("Pulling changes from github")

		if !runner.Run(ctx, s.sink, "git", []string{"pull"}, versionDir, nil) {
			s.sink.Info("Failed to pull the repo. Running the latest local commit instead")
		}
	}

	if !s.installs.Build(ctx, versionDir, s.progress, refresh) {
		return
	}

	s.finish(ctx, version.Name, versionDir, &Record{
		Binary: filepath.Join("build", s.platform.BinaryName()),
		Origin: OriginGit,
	})
}

// finish persists the install record and starts the freshly installed game.
func (s *Service) finish(ctx context.Context, name, versionDir string, record *Record) {
	if err := saveRecord(versionDir, record); err != nil {
		logger.ErrorKV(ctx, "Failed to save install record", "error", err)
	}

	s.launches.LaunchBinary(ctx, name, record.Binary)
}
