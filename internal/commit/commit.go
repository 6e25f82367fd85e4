package commit

import (
	"fmt"
	"log/slog"
	"os"

	"sysctlr/internal/fileutil"
	"sysctlr/internal/logging"
	"sysctlr/internal/sysctl"
)

// Committer replaces a sysctl file with merged content.
type Committer struct {
	logger *slog.Logger
}

// New constructs a Committer. A nil logger discards output.
func New(logger *slog.Logger) *Committer {
	return &Committer{logger: logging.NewComponentLogger(logger, "commit")}
}

// Prepare creates path as an empty file when it does not exist so the
// merge always starts from a readable file.
func (c *Committer) Prepare(path string) error {
	if err := fileutil.EnsureFile(path); err != nil {
		return sysctl.NewError(sysctl.KindIO, "", fmt.Errorf("create %s: %w", path, err))
	}
	return nil
}

// ReadLines loads path as raw lines, each keeping its terminator.
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, sysctl.NewError(sysctl.KindIO, "", fmt.Errorf("read %s: %w", path, err))
	}
	return sysctl.SplitLines(string(data)), nil
}

// Commit writes lines to path through a same-directory temp file and a
// rename. The original permission bits are preserved. On failure the
// target is left as it was.
func (c *Committer) Commit(lines []string, path string) error {
	mode, err := fileutil.FileMode(path)
	if err != nil {
		return sysctl.NewError(sysctl.KindIO, "", fmt.Errorf("stat %s: %w", path, err))
	}

	content := sysctl.JoinLines(lines)
	if err := fileutil.WriteFileAtomic(path, []byte(content), mode); err != nil {
		return sysctl.NewError(sysctl.KindIO, "", fmt.Errorf("replace %s: %w", path, err))
	}

	c.logger.Debug("sysctl file replaced",
		logging.String("file", path),
		logging.Int("lines", len(lines)),
	)
	return nil
}

// Backup copies path next to itself before it is replaced and returns the
// backup location.
func (c *Committer) Backup(path string) (string, error) {
	backup, err := fileutil.BackupFile(path)
	if err != nil {
		return "", sysctl.NewError(sysctl.KindIO, "", err)
	}
	c.logger.Info("sysctl file backed up",
		logging.String("file", path),
		logging.String("backup", backup),
	)
	return backup, nil
}
