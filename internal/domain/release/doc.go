// Package release contains core domain types for game releases.
//
// It defines Release and Asset models, the platform strategy resolved once at
// startup (asset applicability, executable names, install variant) and the
// naming convention mapping a version name to its installation directory.
package release
