package manager

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/voxel-launcher/internal/config"
	"github.com/oshokin/voxel-launcher/internal/domain/release"
	"github.com/oshokin/voxel-launcher/internal/notify"
	"github.com/oshokin/voxel-launcher/internal/service/installer"
	"github.com/oshokin/voxel-launcher/internal/service/launcher"
)

// newTestService builds a manager with a deterministic Linux-family platform
// and an isolated versions directory.
func newTestService(t *testing.T, cfg *config.Config, sink notify.Sink) *Service {
	t.Helper()

	if cfg.VersionsDir == "" {
		cfg.VersionsDir = t.TempDir()
	}

	svc := NewService(cfg, sink, notify.NewProgress())

	// Pin the Linux-family strategy so classification is deterministic
	// wherever the tests run.
	svc.platform = release.PlatformFor("linux")
	svc.installs = installer.NewService(sink, svc.platform)
	svc.launches = launcher.NewService(sink, svc.platform, cfg.VersionsDir)

	return svc
}

// testConfig returns a config pointing at a fake repository.
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.RepoOwner = "someone"
	cfg.RepoName = "some-game"

	return cfg
}

// TestRefreshFromListing verifies that the GitHub listing is decoded,
// classified and prefixed with the git pseudo-version.
func TestRefreshFromListing(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/repos/someone/some-game/releases", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{
				"name": "v25",
				"zipball_url": "https://example.com/v25.zip",
				"assets": [
					{"name": "voxelengine_win64.zip", "browser_download_url": "https://example.com/win.zip"},
					{"name": "VoxelEngine.AppImage", "browser_download_url": "https://example.com/appimage"}
				]
			},
			{
				"name": "v24",
				"zipball_url": "https://example.com/v24.zip",
				"assets": []
			},
			{
				"name": "",
				"zipball_url": "https://example.com/unnamed.zip",
				"assets": []
			}
		]`))
	}))
	defer server.Close()

	sink := notify.NewQueue()
	svc := newTestService(t, testConfig(), sink)
	svc.apiBase = server.URL

	svc.Refresh(context.Background())
	require.Zero(t, sink.Len())

	versions := svc.Versions()
	require.Len(t, versions, 3)

	require.Equal(t, GitLatestName, versions[0].Name)
	require.Equal(t, SourceGit, versions[0].Source)

	require.Equal(t, "v25", versions[1].Name)
	require.Equal(t, SourceBinary, versions[1].Source)
	require.Equal(t, "https://example.com/appimage", versions[1].AssetURL)

	// No platform asset leaves only the source archive.
	require.Equal(t, "v24", versions[2].Name)
	require.Equal(t, SourceZipball, versions[2].Source)
	require.Equal(t, "https://example.com/v24.zip", versions[2].ZipballURL)
}

// TestRefreshPrefersLocalInstall verifies that an install record wins over remote assets.
func TestRefreshPrefersLocalInstall(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{
				"name": "v25",
				"zipball_url": "https://example.com/v25.zip",
				"assets": [{"name": "VoxelEngine.AppImage", "browser_download_url": "https://example.com/appimage"}]
			}
		]`))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.VersionsDir = t.TempDir()

	versionDir := filepath.Join(cfg.VersionsDir, "v25")
	require.NoError(t, os.MkdirAll(versionDir, 0o755))
	require.NoError(t, saveRecord(versionDir, &Record{Binary: "VoxelEngine.AppImage", Origin: OriginBinary}))

	sink := notify.NewQueue()
	svc := newTestService(t, cfg, sink)
	svc.apiBase = server.URL

	svc.Refresh(context.Background())

	version, ok := svc.Find("v25")
	require.True(t, ok)
	require.Equal(t, SourceLocal, version.Source)
	require.NotNil(t, version.Record)
	require.Equal(t, "VoxelEngine.AppImage", version.Record.Binary)
}

// TestRefreshFallsBackToLocalScan verifies the offline path: a sink warning
// plus whatever the versions directory holds.
func TestRefreshFallsBackToLocalScan(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.VersionsDir = t.TempDir()

	// One installed version, one corrupted record, one unrelated directory.
	installedDir := filepath.Join(cfg.VersionsDir, "v20")
	require.NoError(t, os.MkdirAll(installedDir, 0o755))
	require.NoError(t, saveRecord(installedDir, &Record{Binary: "VoxelEngine.AppImage", Origin: OriginBinary}))

	corruptedDir := filepath.Join(cfg.VersionsDir, "v21")
	require.NoError(t, os.MkdirAll(corruptedDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(corruptedDir, RecordFilename), []byte("binary: ["), 0o600))

	require.NoError(t, os.MkdirAll(filepath.Join(cfg.VersionsDir, "not-a-version"), 0o755))

	sink := notify.NewQueue()
	svc := newTestService(t, cfg, sink)
	svc.apiBase = server.URL

	svc.Refresh(context.Background())

	messages := sink.Drain()
	require.Len(t, messages, 2)
	require.Contains(t, messages[0].Text, "Failed to fetch versions from github")
	require.Contains(t, messages[1].Text, `Corrupted version "v21"`)

	versions := svc.Versions()
	require.Len(t, versions, 2)
	require.Equal(t, GitLatestName, versions[0].Name)
	require.Equal(t, "v20", versions[1].Name)
	require.Equal(t, SourceLocal, versions[1].Source)
}

// TestPlayUnknownVersion verifies the not-found report.
func TestPlayUnknownVersion(t *testing.T) {
	t.Parallel()

	sink := notify.NewQueue()
	svc := newTestService(t, testConfig(), sink)

	svc.Play(context.Background(), "v99", false)

	messages := sink.Drain()
	require.Len(t, messages, 1)
	require.Equal(t, notify.LevelError, messages[0].Level)
	require.Contains(t, messages[0].Text, "Version files not found")
}

// TestPlayZipballPolicyGate verifies that building from source is refused
// unless the policy allows it.
func TestPlayZipballPolicyGate(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.BuildUnsupported = false

	sink := notify.NewQueue()
	svc := newTestService(t, cfg, sink)

	svc.mu.Lock()
	svc.versions = []*Version{{Name: "v24", Source: SourceZipball, ZipballURL: "https://example.com/v24.zip"}}
	svc.mu.Unlock()

	svc.Play(context.Background(), "v24", false)

	messages := sink.Drain()
	require.Len(t, messages, 1)
	require.Contains(t, messages[0].Text, "doesn't have prebuilt binaries")
}

// TestPlayGitPolicyGate verifies the same gate for the git pseudo-version.
func TestPlayGitPolicyGate(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.BuildUnsupported = false

	sink := notify.NewQueue()
	svc := newTestService(t, cfg, sink)

	svc.mu.Lock()
	svc.versions = []*Version{{Name: GitLatestName, Source: SourceGit}}
	svc.mu.Unlock()

	svc.Play(context.Background(), GitLatestName, false)

	messages := sink.Drain()
	require.Len(t, messages, 1)
	require.Contains(t, messages[0].Text, "has to be built from source")
}

// TestPlayBinaryFlow verifies the download-install-record-launch chain with a
// stubbed asset server, up to the launch attempt of the installed binary.
func TestPlayBinaryFlow(t *testing.T) {
	t.Parallel()

	asset := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("appimage-bytes"))
	}))
	defer asset.Close()

	cfg := testConfig()
	cfg.VersionsDir = t.TempDir()

	sink := notify.NewQueue()
	svc := newTestService(t, cfg, sink)

	svc.mu.Lock()
	svc.versions = []*Version{{Name: "v25", Source: SourceBinary, AssetURL: asset.URL}}
	svc.mu.Unlock()

	svc.Play(context.Background(), "v25", false)

	// The asset was installed and recorded even though the fake binary
	// cannot actually be executed.
	versionDir := filepath.Join(cfg.VersionsDir, "v25")

	contents, err := os.ReadFile(filepath.Join(versionDir, "VoxelEngine.AppImage"))
	require.NoError(t, err)
	require.Equal(t, "appimage-bytes", string(contents))

	record, err := loadRecord(versionDir)
	require.NoError(t, err)
	require.Equal(t, &Record{Binary: "VoxelEngine.AppImage", Origin: OriginBinary}, record)

	messages := sink.Drain()
	require.NotEmpty(t, messages)
	require.Equal(t, "Downloading version binary", messages[0].Text)
	require.Equal(t, "Running the game", messages[1].Text)

	// The flow clears the progress cell when it finishes.
	_, set := svc.progress.Get()
	require.False(t, set)
}

// TestPlayBinaryDownloadFailure verifies that a failed download aborts the flow.
func TestPlayBinaryDownloadFailure(t *testing.T) {
	t.Parallel()

	asset := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer asset.Close()

	cfg := testConfig()
	cfg.VersionsDir = t.TempDir()

	sink := notify.NewQueue()
	svc := newTestService(t, cfg, sink)

	svc.mu.Lock()
	svc.versions = []*Version{{Name: "v25", Source: SourceBinary, AssetURL: asset.URL}}
	svc.mu.Unlock()

	svc.Play(context.Background(), "v25", false)

	messages := sink.Drain()
	require.Len(t, messages, 2)
	require.Equal(t, "Downloading version binary", messages[0].Text)
	require.Contains(t, messages[1].Text, "Failed to download binary")

	// Nothing was installed.
	_, err := os.Stat(filepath.Join(cfg.VersionsDir, "v25", "VoxelEngine.AppImage"))
	require.True(t, os.IsNotExist(err))
}

// TestPlayRefreshReinstallsBinary verifies that a refresh of an installed
// version backed by the release listing discards the local install and
// re-downloads the release asset.
func TestPlayRefreshReinstallsBinary(t *testing.T) {
	t.Parallel()

	asset := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("fresh-bytes"))
	}))
	defer asset.Close()

	cfg := testConfig()
	cfg.VersionsDir = t.TempDir()

	versionDir := filepath.Join(cfg.VersionsDir, "v25")
	require.NoError(t, os.MkdirAll(versionDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(versionDir, "VoxelEngine.AppImage"), []byte("stale-bytes"), 0o755))
	require.NoError(t, saveRecord(versionDir, &Record{
		Binary: "VoxelEngine.AppImage",
		Origin: OriginBinary,
		URL:    asset.URL,
	}))

	sink := notify.NewQueue()
	svc := newTestService(t, cfg, sink)

	rel := &release.Release{
		Name:   "v25",
		Assets: []release.Asset{{Name: "VoxelEngine.AppImage", URL: asset.URL}},
	}

	svc.mu.Lock()
	svc.versions = []*Version{svc.classify(rel, false)}
	svc.mu.Unlock()

	version, ok := svc.Find("v25")
	require.True(t, ok)
	require.Equal(t, SourceLocal, version.Source)

	svc.Play(context.Background(), "v25", true)

	contents, err := os.ReadFile(filepath.Join(versionDir, "VoxelEngine.AppImage"))
	require.NoError(t, err)
	require.Equal(t, "fresh-bytes", string(contents))

	record, err := loadRecord(versionDir)
	require.NoError(t, err)
	require.Equal(t, OriginBinary, record.Origin)
	require.Equal(t, asset.URL, record.URL)

	messages := sink.Drain()
	require.NotEmpty(t, messages)
	require.Equal(t, "Downloading version binary", messages[0].Text)
}

// TestPlayRefreshOfflineUsesRecordOrigin verifies that a refresh of a version
// discovered without the release listing reinstalls from the origin stored in
// its install record.
func TestPlayRefreshOfflineUsesRecordOrigin(t *testing.T) {
	t.Parallel()

	asset := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("fresh-bytes"))
	}))
	defer asset.Close()

	cfg := testConfig()
	cfg.VersionsDir = t.TempDir()

	versionDir := filepath.Join(cfg.VersionsDir, "v25")
	require.NoError(t, os.MkdirAll(versionDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(versionDir, "VoxelEngine.AppImage"), []byte("stale-bytes"), 0o755))

	record := &Record{Binary: "VoxelEngine.AppImage", Origin: OriginBinary, URL: asset.URL}
	require.NoError(t, saveRecord(versionDir, record))

	sink := notify.NewQueue()
	svc := newTestService(t, cfg, sink)

	// The shape the local scan fallback produces: no underlying release.
	svc.mu.Lock()
	svc.versions = []*Version{{Name: "v25", Source: SourceLocal, Record: record}}
	svc.mu.Unlock()

	svc.Play(context.Background(), "v25", true)

	contents, err := os.ReadFile(filepath.Join(versionDir, "VoxelEngine.AppImage"))
	require.NoError(t, err)
	require.Equal(t, "fresh-bytes", string(contents))

	messages := sink.Drain()
	require.NotEmpty(t, messages)
	require.Equal(t, "Downloading version binary", messages[0].Text)
}

// TestPlayRefreshUnknownOrigin verifies the fallback when the install record
// does not say where the install came from: the user is told and the local
// version runs as-is.
func TestPlayRefreshUnknownOrigin(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.VersionsDir = t.TempDir()

	sink := notify.NewQueue()
	svc := newTestService(t, cfg, sink)

	// An older record without a download location.
	record := &Record{Binary: "VoxelEngine.AppImage", Origin: OriginBinary}

	svc.mu.Lock()
	svc.versions = []*Version{{Name: "v25", Source: SourceLocal, Record: record}}
	svc.mu.Unlock()

	svc.Play(context.Background(), "v25", true)

	messages := sink.Drain()
	require.GreaterOrEqual(t, len(messages), 2)
	require.Equal(t, "Reinstall source is unknown. Running the installed version instead", messages[0].Text)
	require.Equal(t, "Running the game", messages[1].Text)
}

// TestRecordRoundTrip verifies the install record persistence.
func TestRecordRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	saved := &Record{Binary: filepath.Join("build", "VoxelEngine"), Origin: OriginSource}

	require.NoError(t, saveRecord(dir, saved))

	loaded, err := loadRecord(dir)
	require.NoError(t, err)
	require.Equal(t, saved, loaded)
}

// TestLoadRecordMissing verifies that a missing record maps to os.ErrNotExist.
func TestLoadRecordMissing(t *testing.T) {
	t.Parallel()

	_, err := loadRecord(t.TempDir())
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestLoadRecordEmptyBinary verifies that a record without a binary path is rejected.
func TestLoadRecordEmptyBinary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, RecordFilename), []byte("origin: binary\n"), 0o600))

	_, err := loadRecord(dir)
	require.ErrorIs(t, err, errEmptyRecord)
}
