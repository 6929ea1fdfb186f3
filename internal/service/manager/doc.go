// Package manager ties the launcher together: it lists game releases from
// GitHub (falling back to locally installed versions when offline), decides
// how each version can be obtained on this platform, and orchestrates the
// download, install or build, and launch of a chosen version.
//
// The orchestration reports everything through the shared notification sink
// and drives the shared progress cell; callers get no errors back.
package manager
