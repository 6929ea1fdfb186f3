// Package notify holds the shared state every long-running operation reports
// into: the user-facing notification sink and the download progress cell.
//
// Both are guarded by plain mutexes and every access is a short critical
// section; no lock is ever held across blocking work. Sink implementations
// include a drainable in-memory queue (for UI layers and tests) and an
// adapter that forwards messages to the zap logger (for the CLI).
package notify
