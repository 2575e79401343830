package secure

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"runtime"
)

// WipeMethod names the tool that removed a file.
type WipeMethod string

const (
	MethodNone      WipeMethod = "none"
	MethodRmP       WipeMethod = "rm -P"
	MethodShred     WipeMethod = "shred"
	MethodWipe      WipeMethod = "wipe"
	MethodSrm       WipeMethod = "srm"
	MethodSdelete   WipeMethod = "sdelete"
	MethodOverwrite WipeMethod = "overwrite"
)

type wipeTool struct {
	method WipeMethod
	name   string
	args   []string
}

func platformTools(goos, path string) []wipeTool {
	switch goos {
	case "darwin":
		return []wipeTool{{MethodRmP, "rm", []string{"-P", path}}}
	case "linux":
		return []wipeTool{
			{MethodShred, "shred", []string{"-fz", "-u", "-n", "3", path}},
			{MethodWipe, "wipe", []string{"-rf", path}},
			{MethodSrm, "srm", []string{path}},
		}
	case "windows":
		return []wipeTool{{MethodSdelete, "sdelete", []string{"-p", "3", "-s", "-z", path}}}
	}
	return nil
}

// WipeFile deletes path, preferring a platform shredder. When none is
// installed the file is overwritten with zeros, synced and removed; that
// fallback gives no guarantee on journaling or copy-on-write filesystems.
// A missing file is not an error and reports MethodNone.
func WipeFile(ctx context.Context, path string) (WipeMethod, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return MethodNone, nil
	} else if err != nil {
		return MethodNone, fmt.Errorf("stat %q: %w", path, err)
	}

	for _, tool := range platformTools(runtime.GOOS, path) {
		if _, err := exec.LookPath(tool.name); err != nil {
			continue
		}
		if err := exec.CommandContext(ctx, tool.name, tool.args...).Run(); err != nil {
			continue
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return tool.method, nil
		}
	}

	if err := overwriteAndRemove(path); err != nil {
		return MethodNone, err
	}
	return MethodOverwrite, nil
}

func overwriteAndRemove(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open %q: %w", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat %q: %w", path, err)
	}

	zeros := make([]byte, 32*1024)
	for left := st.Size(); left > 0; {
		n := int64(len(zeros))
		if left < n {
			n = left
		}
		if _, err := f.Write(zeros[:n]); err != nil {
			_ = f.Close()
			return fmt.Errorf("overwrite %q: %w", path, err)
		}
		left -= n
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %q: %w", path, err)
	}
	return os.Remove(path)
}
