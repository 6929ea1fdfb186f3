package installer

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/voxel-launcher/internal/domain/release"
	"github.com/oshokin/voxel-launcher/internal/notify"
)

const (
	// executableFileMode is applied to installed game binaries.
	executableFileMode os.FileMode = 0o755
	// directoryMode is applied to directories created during unpacking.
	directoryMode os.FileMode = 0o755
)

// errUnsafeArchivePath is returned when an archive entry escapes the target directory.
var errUnsafeArchivePath = errors.New("archive entry escapes target directory")

// Service installs release assets for one platform, reporting failures
// through the notification sink.
type Service struct {
	// sink receives failure reports.
	sink notify.Sink
	// platform decides the install variant and executable names.
	platform release.Platform
}

// NewService returns an installer for the provided platform.
func NewService(sink notify.Sink, platform release.Platform) *Service {
	return &Service{
		sink:     sink,
		platform: platform,
	}
}

// InstallAsset materializes a downloaded prebuilt asset inside the version
// directory: zip archives are unpacked, standalone binaries are written with
// the executable bit set. Returns false after reporting to the sink.
func (s *Service) InstallAsset(data []byte, versionDir string) bool {
	if s.platform.InstallsFromArchive() {
		return s.Unpack(data, versionDir)
	}

	return s.writeBinary(data, filepath.Join(versionDir, s.platform.DownloadedName()))
}

// Unpack extracts a downloaded zip archive into the version directory.
func (s *Service) Unpack(data []byte, versionDir string) bool {
	if err := extractZip(data, versionDir); err != nil {
		s.sink.Error(fmt.Sprintf("Failed to unpack version sources: %s", err))
		return false
	}

	return true
}

// writeBinary installs a standalone game binary, replacing any previous one.
func (s *Service) writeBinary(data []byte, path string) bool {
	if err := applyBinary(data, path); err != nil {
		s.sink.Error(fmt.Sprintf("Failed to install version binary: %s", err))
		return false
	}

	return true
}

// applyBinary writes the binary through go-update so a previous install is
// swapped out safely even if the old file is busy.
func applyBinary(data []byte, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), directoryMode); err != nil {
		return err
	}

	// go-update needs an existing target to replace.
	if _, err := os.Stat(path); err != nil && os.IsNotExist(err) {
		if _, err = os.Create(filepath.Clean(path)); err != nil {
			return err
		}
	}

	options := goupdate.Options{
		TargetPath: path,
		TargetMode: executableFileMode,
	}

	if err := goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return err
	}

	// go-update leaves the previous binary behind on some platforms.
	oldPath := path + ".old"
	if _, err := os.Stat(oldPath); err == nil {
		_ = os.Remove(oldPath)
	}

	return nil
}

// extractZip unpacks the archive into dir, stripping the common top-level
// directory when the whole archive lives under one.
func extractZip(data []byte, dir string) error {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return err
	}

	prefix := commonTopLevel(reader.File)

	for _, file := range reader.File {
		name := strings.TrimPrefix(strings.TrimLeft(file.Name, "/"), prefix)
		if name == "" {
			continue
		}

		target := filepath.Join(dir, filepath.FromSlash(name))
		if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
			return fmt.Errorf("%s: %w", file.Name, errUnsafeArchivePath)
		}

		if file.FileInfo().IsDir() {
			if err = os.MkdirAll(target, directoryMode); err != nil {
				return err
			}

			continue
		}

		if err = extractZipFile(file, target); err != nil {
			return err
		}
	}

	return nil
}

// extractZipFile writes one archive entry to disk preserving its mode.
func extractZipFile(file *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), directoryMode); err != nil {
		return err
	}

	in, err := file.Open()
	if err != nil {
		return err
	}

	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(filepath.Clean(target), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, file.Mode())
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()

		return err
	}

	return out.Close()
}

// commonTopLevel returns the single top-level directory shared by every
// archive entry, or an empty string when there is none.
func commonTopLevel(files []*zip.File) string {
	var prefix string

	for _, file := range files {
		name := strings.TrimLeft(file.Name, "/")

		i := strings.IndexByte(name, '/')
		if i < 0 {
			// A file at the archive root leaves nothing to strip.
			return ""
		}

		top := name[:i+1]

		switch prefix {
		case "":
			prefix = top
		case top:
		default:
			return ""
		}
	}

	return prefix
}
