package extractor

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"trackmerge/internal/logging"
)

// ClutterPaths are the browser "save page" artifacts removed after a run,
// relative to the directory holding the page.
var ClutterPaths = []string{
	"Sort Your Music_files",
	filepath.Join("html_files", "Sort Your Music_files"),
	"Sort Your Music.htm",
	"Sort Your Music.html",
}

// Cleanup removes every ClutterPaths entry under dir and returns the paths
// it removed. Missing entries are ignored; the first removal error stops the
// sweep.
func Cleanup(dir string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "cleanup")

	var removed []string
	for _, rel := range ClutterPaths {
		target := filepath.Join(dir, rel)
		info, err := os.Stat(target)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return removed, err
		}
		if info.IsDir() {
			err = os.RemoveAll(target)
		} else {
			err = os.Remove(target)
		}
		if err != nil {
			return removed, err
		}
		logger.Info("cleaned up", logging.String("path", target), logging.Bool("directory", info.IsDir()))
		removed = append(removed, target)
	}
	return removed, nil
}
