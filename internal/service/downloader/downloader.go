package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/oshokin/voxel-launcher/internal/logger"
	"github.com/oshokin/voxel-launcher/internal/notify"
)

const (
	// userAgent identifies the launcher to the download servers.
	userAgent = "VoxelLauncherWGET/1.0"

	// chunkSize is the read buffer size for streaming response bodies.
	chunkSize = 32 * 1024
)

// errBadHTTPStatus is returned when the server responds with a non-2xx status.
var errBadHTTPStatus = errors.New("unexpected http status")

// Service downloads resources in full, reporting progress and failures
// through the shared cells. It is safe for use from multiple goroutines as
// long as the caller keeps the single-writer discipline on the progress cell.
type Service struct {
	// sink receives failure reports.
	sink notify.Sink
	// progress is the shared completion fraction cell.
	progress *notify.Progress
}

// NewService returns a downloader reporting into the provided sink and progress cell.
func NewService(sink notify.Sink, progress *notify.Progress) *Service {
	return &Service{
		sink:     sink,
		progress: progress,
	}
}

// Fetch downloads the resource at url in full and returns its bytes.
// On any failure it reports to the sink using the human-readable resource
// name and returns no bytes; partial data is discarded. There is no retry
// and no timeout beyond what the transport applies.
func (s *Service) Fetch(ctx context.Context, url, name string) ([]byte, bool) {
	data, err := s.fetch(ctx, url)
	if err != nil {
		s.sink.Error(fmt.Sprintf("Failed to download %s: %s", name, err))
		return nil, false
	}

	return data, true
}

// fetch performs one GET request and accumulates the body chunk by chunk.
func (s *Service) fetch(ctx context.Context, url string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}

	request.Header.Set("User-Agent", userAgent)

	// One client per call; the default transport already follows simple redirects.
	client := &http.Client{}

	response, err := client.Do(request)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%s: %w", response.Status, errBadHTTPStatus)
	}

	// -1 when the server does not advertise a total length.
	total := response.ContentLength

	logger.DebugKV(ctx, "Downloading resource", "url", url, "content_length", total)

	var (
		data     []byte
		received int64
		buffer   [chunkSize]byte
	)

	for {
		n, readErr := response.Body.Read(buffer[:])
		if n > 0 {
			data = append(data, buffer[:n]...)
			received += int64(n)

			if total > 0 {
				s.progress.Set(float64(received) / float64(total))
			}
		}

		if errors.Is(readErr, io.EOF) {
			break
		}

		if readErr != nil {
			return nil, readErr
		}
	}

	return data, nil
}
