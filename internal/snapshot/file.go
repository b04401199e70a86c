package snapshot

import (
	"context"
	"os"
	"path/filepath"

	"github.com/agentstation/locsync/pkg/constants"
	"github.com/agentstation/locsync/pkg/errors"
)

// FileSink writes snapshots into a local directory.
type FileSink struct {
	Dir string
}

// NewFileSink creates a FileSink rooted at dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

// Save writes s atomically and returns the file path.
func (f *FileSink) Save(_ context.Context, s Snapshot) (string, error) {
	if err := os.MkdirAll(f.Dir, constants.DirPermissions); err != nil {
		return "", errors.WrapIO("create", f.Dir, err)
	}

	data, err := Encode(s)
	if err != nil {
		return "", err
	}

	path := filepath.Join(f.Dir, Name(s))
	tmp, err := os.CreateTemp(f.Dir, ".snapshot-*.yaml")
	if err != nil {
		return "", errors.WrapIO("create", f.Dir, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", errors.WrapIO("write", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", errors.WrapIO("write", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, constants.SecureFilePermissions); err != nil {
		_ = os.Remove(tmpPath)
		return "", errors.WrapIO("chmod", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", errors.WrapIO("move", path, err)
	}
	return path, nil
}
