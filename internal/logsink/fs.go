package logsink

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// RunDir creates base/<dd.mm.yyyy>/<module>_<hh-mm-ss> for the files of one
// run and returns its path.
func RunDir(base, module string, now time.Time) (string, error) {
	date := now.Format("02.01.2006")
	name := module + "_" + now.Format("15-04-05")

	dir := filepath.Join(base, date, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}
	return dir, nil
}

// OpenAppend opens path for appending, creating it and its parent directory.
// New files are readable by the owner only.
func OpenAppend(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %q: %w", dir, err)
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}
