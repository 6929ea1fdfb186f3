package launcher

import (
	"github.com/mitchellh/go-ps"
)

// IsGameRunning reports whether a process with one of the game executable
// names is already running. Best effort only: it is used to warn the user,
// never to block a launch.
func (s *Service) IsGameRunning() (bool, error) {
	processes, err := ps.Processes()
	if err != nil {
		return false, err
	}

	names := map[string]struct{}{
		s.platform.DownloadedName(): {},
		s.platform.BinaryName():     {},
	}

	for _, process := range processes {
		if _, found := names[process.Executable()]; found {
			return true, nil
		}
	}

	return false, nil
}
