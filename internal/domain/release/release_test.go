package release

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestPickAsset verifies that the first platform-applicable asset wins.
func TestPickAsset(t *testing.T) {
	t.Parallel()

	rel := &Release{
		Name: "v25",
		Assets: []Asset{
			{Name: "sources.tar.gz", URL: "https://example.com/sources.tar.gz"},
			{Name: "voxelengine_win64.zip", URL: "https://example.com/win64.zip"},
			{Name: "VoxelEngine.AppImage", URL: "https://example.com/appimage"},
		},
	}

	asset, ok := rel.PickAsset(PlatformFor("windows"))
	require.True(t, ok)
	require.Equal(t, "https://example.com/win64.zip", asset.URL)

	asset, ok = rel.PickAsset(PlatformFor("linux"))
	require.True(t, ok)
	require.Equal(t, "https://example.com/appimage", asset.URL)

	_, ok = rel.PickAsset(PlatformFor("plan9"))
	require.False(t, ok)

	empty := &Release{Name: "v1"}
	_, ok = empty.PickAsset(PlatformFor("linux"))
	require.False(t, ok)
}
