// Package launcher starts an installed game version as a detached process.
//
// Launching is fire-and-forget: the executable path is canonicalized, the
// child is spawned with its working directory set to the version directory
// and never waited on. Failures are only observable through the notification
// sink. A go-ps based probe lets callers warn about an already-running game.
package launcher
