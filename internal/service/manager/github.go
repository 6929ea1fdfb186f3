package manager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/oshokin/voxel-launcher/internal/domain/release"
)

const (
	// defaultAPIBase is the GitHub REST API root.
	defaultAPIBase = "https://api.github.com"

	// acceptHeader is the GitHub REST API media type.
	acceptHeader = "application/vnd.github+json"

	// listUserAgent identifies the launcher to the GitHub API.
	listUserAgent = "VoxelLauncherWGET/1.0"
)

// errBadHTTPStatus is returned when the releases endpoint answers non-200.
var errBadHTTPStatus = errors.New("unexpected http status")

// githubRelease mirrors the fields of the GitHub release payload the launcher uses.
type githubRelease struct {
	Name       string        `json:"name"`
	ZipballURL string        `json:"zipball_url"`
	Assets     []githubAsset `json:"assets"`
}

// githubAsset mirrors the fields of the GitHub release asset payload.
type githubAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// fetchReleases lists the published releases of owner/repo through the REST API.
func fetchReleases(ctx context.Context, apiBase, owner, repo string) ([]release.Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases", apiBase, owner, repo)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}

	request.Header.Set("Accept", acceptHeader)
	request.Header.Set("User-Agent", listUserAgent)

	response, err := http.DefaultClient.Do(request)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s, %s: %w", url, response.Status, errBadHTTPStatus)
	}

	var payload []githubRelease
	if err = json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode releases: %w", err)
	}

	releases := make([]release.Release, 0, len(payload))

	for _, item := range payload {
		// Releases without a name cannot map to a version directory.
		if item.Name == "" {
			continue
		}

		rel := release.Release{
			Name:       item.Name,
			ZipballURL: item.ZipballURL,
			Assets:     make([]release.Asset, 0, len(item.Assets)),
		}

		for _, asset := range item.Assets {
			rel.Assets = append(rel.Assets, release.Asset{
				Name: asset.Name,
				URL:  asset.BrowserDownloadURL,
			})
		}

		releases = append(releases, rel)
	}

	return releases, nil
}
