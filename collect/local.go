package collect

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/jyothri/ipodphotos/constants"
)

var ErrPhotoDbNotFound = errors.New("no Photo Database found")

type LocalPhotoDbScan struct {
	// Path is the container itself or a directory such as a device mount point.
	Path      string
	ClientKey string
}

func LocalPhotoDb(localScan LocalPhotoDbScan) (int, error) {
	return startPhotoDbScan(photoDbSource{
		scanType:  "local",
		clientKey: localScan.ClientKey,
		path:      localScan.Path,
		load: func(ctx context.Context) ([]byte, error) {
			file, err := findPhotoDb(localScan.Path)
			if err != nil {
				return nil, err
			}
			slog.Info("Reading local photo database", "path", file)
			return readPhotoDbFile(file, constants.MaxUploadBytes)
		},
	})
}

// findPhotoDb returns path when it is a file, otherwise the first Photo Database under it.
func findPhotoDb(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return path, nil
	}

	found := ""
	err = filepath.Walk(path, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			slog.Warn("Failed to access path during walk, skipping",
				"path", p,
				"error", err)
			return nil
		}
		if p == path {
			return nil
		}

		// unix/linux file or directory that starts with . is hidden
		if runtime.GOOS != "windows" && info.Name()[0:1] == "." {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.IsDir() && info.Name() == PhotoDbFileName {
			found = p
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to walk directory %s: %w", path, err)
	}
	if found == "" {
		return "", fmt.Errorf("%w under %s", ErrPhotoDbNotFound, path)
	}
	return found, nil
}

func readPhotoDbFile(path string, limit int64) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()
	return readLimited(file, limit)
}
