package fileutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// DefaultMode is used for files that do not exist yet.
const DefaultMode os.FileMode = 0o644

// EnsureFile creates path as an empty file when it does not exist. An
// existing file is never truncated.
func EnsureFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, DefaultMode)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil
		}
		return err
	}
	return f.Close()
}

// FileMode returns the permission bits of path, or DefaultMode when it does
// not exist.
func FileMode(path string) (os.FileMode, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultMode, nil
		}
		return 0, err
	}
	return info.Mode().Perm(), nil
}

// WriteFileAtomic replaces path with data. The content is staged in a temp
// file in the same directory, synced and closed before the rename, so
// readers see either the old file or the complete new one.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	closed := false
	defer func() {
		if !closed {
			_ = tmp.Close()
		}
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	closed = true
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// CopyFileMode streams src to dst, setting the given file mode on dst.
func CopyFileMode(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// BackupFile copies path next to itself as "<path>.<unix-nanos>.bak" with
// the same permissions and returns the backup path.
func BackupFile(path string) (string, error) {
	mode, err := FileMode(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	backup := fmt.Sprintf("%s.%d.bak", path, time.Now().UnixNano())
	if err := CopyFileMode(path, backup, mode); err != nil {
		_ = os.Remove(backup)
		return "", fmt.Errorf("backup %s: %w", path, err)
	}
	return backup, nil
}
