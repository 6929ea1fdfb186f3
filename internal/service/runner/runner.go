package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/oshokin/voxel-launcher/internal/logger"
	"github.com/oshokin/voxel-launcher/internal/notify"
)

const (
	// initialScanBuffer is the starting line buffer size for output scanning.
	initialScanBuffer = 64 * 1024
	// maxScanBuffer caps a single output line; longer lines fail the scan.
	maxScanBuffer = 1024 * 1024
)

// LineFunc consumes one stdout line from the supervised process, in arrival order.
type LineFunc func(line string)

// eventKind tags one unit of child-process output.
type eventKind int

const (
	eventStdout eventKind = iota
	eventStderr
	eventDone
)

// event is one classified unit of child-process output: a stdout line,
// a stderr line, or the terminal wait result.
type event struct {
	kind eventKind
	line string
	err  error
}

// Run executes the command with the given working directory and supervises it
// to completion. Stdout lines are forwarded synchronously to onLine; stderr
// lines accumulate and are reported to the sink as a single error message
// when the process finishes, regardless of exit status. Returns true iff the
// process was spawned, reaped and exited successfully.
//
// The context scopes logging only: there is no timeout and no kill on
// cancellation, so a hung child hangs the supervisor.
func Run(
	ctx context.Context,
	sink notify.Sink,
	name string,
	args []string,
	dir string,
	onLine LineFunc,
) bool {
	logger.DebugKV(ctx, "Running command", "name", name, "args", args, "dir", dir)

	cmd := exec.Command(name, args...)
	if dir != "" {
		cmd.Dir = dir
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		sink.Error(fmt.Sprintf("Failed to run command: %s", err))
		return false
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		sink.Error(fmt.Sprintf("Failed to run command: %s", err))
		return false
	}

	if err = cmd.Start(); err != nil {
		sink.Error(fmt.Sprintf("Failed to run command: %s", err))
		return false
	}

	events := make(chan event)

	var readers sync.WaitGroup

	readers.Add(2)

	go scanLines(stdout, eventStdout, events, &readers)
	go scanLines(stderr, eventStderr, events, &readers)

	// The wait result must come strictly after the last output line,
	// so the terminal event is emitted once both readers are drained.
	go func() {
		readers.Wait()

		events <- event{kind: eventDone, err: cmd.Wait()}

		close(events)
	}()

	return consume(sink, events, onLine)
}

// consume is the single-consumer loop over the ordered event stream.
func consume(sink notify.Sink, events <-chan event, onLine LineFunc) bool {
	var errorLines strings.Builder

	succeeded := true

	for ev := range events {
		switch ev.kind {
		case eventStdout:
			if onLine != nil {
				onLine(ev.line)
			}
		case eventStderr:
			if errorLines.Len() > 0 {
				errorLines.WriteByte('\n')
			}

			errorLines.WriteString(ev.line)
		case eventDone:
			// Stderr output alone does not imply failure, but it is always surfaced.
			if errorLines.Len() > 0 {
				sink.Error(errorLines.String())
			}

			if ev.err != nil {
				var exitErr *exec.ExitError
				if errors.As(ev.err, &exitErr) {
					sink.Error("Failed to run command!")
				} else {
					sink.Error(fmt.Sprintf("Failed to run command: %s", ev.err))
				}

				succeeded = false
			}
		}
	}

	return succeeded
}

// scanLines feeds one output stream into the shared event channel line by line.
func scanLines(r io.Reader, kind eventKind, events chan<- event, readers *sync.WaitGroup) {
	defer readers.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initialScanBuffer), maxScanBuffer)

	for scanner.Scan() {
		events <- event{kind: kind, line: scanner.Text()}
	}

	if err := scanner.Err(); err != nil {
		events <- event{kind: eventStderr, line: fmt.Sprintf("output stream error: %s", err)}

		// Keep draining so the child never blocks on a full pipe
		// and the wait can reap it.
		_, _ = io.Copy(io.Discard, r)
	}
}
