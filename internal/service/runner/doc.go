// Package runner supervises external command invocations.
//
// The child's stdout and stderr are demultiplexed line by line into a single
// ordered event stream consumed by one loop: stdout lines go to the caller's
// callback, stderr lines accumulate into one buffer that is surfaced through
// the notification sink when the process finishes, whatever its exit status.
// Callers only learn success or failure as a boolean.
package runner
