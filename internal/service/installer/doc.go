// Package installer materializes downloaded release assets inside a version
// directory and drives from-source builds.
//
// Windows-family assets arrive as zip archives and are unpacked with the
// common top-level directory stripped; Unix-like assets are single AppImage
// binaries written in place with the executable bit set. Building from
// source shells out to cmake through the process supervisor and feeds its
// "[ NN%]" progress prefixes into the shared progress cell.
package installer
