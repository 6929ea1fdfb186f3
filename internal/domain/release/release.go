package release

// Asset is a downloadable artifact attached to a release,
// identified by filename and URL.
type Asset struct {
	// Name is the asset filename as published.
	Name string
	// URL is the direct download location.
	URL string
}

// Release is a published game release.
type Release struct {
	// Name is the release name, which doubles as the version identity.
	Name string
	// Assets are the downloadable artifacts attached to the release.
	Assets []Asset
	// ZipballURL points at the source archive of the release, if any.
	ZipballURL string
}

// PickAsset returns the first asset applicable to the platform.
func (r *Release) PickAsset(p Platform) (Asset, bool) {
	for _, asset := range r.Assets {
		if p.MatchesAsset(asset.Name) {
			return asset, true
		}
	}

	return Asset{}, false
}
