package dumputil

import (
	devenv "attendance-backend/dev/env"
	"log/slog"
	"os"
	"path/filepath"
)

// Output receives raw payloads worth keeping for debugging, ex. the html
// of a page that failed to parse.
type Output interface {
	Write(id string, contents string)
}

type FilesystemOutput struct {
	directory string
}

// NewFilesystemOutput writes every payload to its own file under dir.
// a "<dev_state>/..." dir is emptied first, any other dir is only created
// and keeps what it already holds.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	devState := devenv.IsStatePath(dir)
	dir, err := devenv.ResolvePath(dir)
	if err != nil {
		return FilesystemOutput{}, err
	}
	if devState {
		err = os.RemoveAll(dir)
		if err != nil {
			return FilesystemOutput{}, err
		}
	}
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, filepath.Base(id)), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write dump file", "id", id, "err", err)
	}
}
