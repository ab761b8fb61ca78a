package lock

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/mensylisir/xmetl/common"
	"github.com/mensylisir/xmetl/file"
)

// ErrLocked is returned by Acquire when another run holds the marker.
var ErrLocked = errors.New("run lock already held")

// File is a marker-file lock guarding a project against concurrent runs.
type File struct {
	path string
}

// New returns a lock backed by path. Nothing is created until Acquire.
func New(path string) *File {
	return &File{path: path}
}

// Path returns the marker path.
func (l *File) Path() string { return l.path }

// Acquire creates the marker exclusively and writes the pid and run id into it.
func (l *File) Acquire(runID string) error {
	if err := file.CreateFileDir(l.path); err != nil {
		return errors.Wrapf(err, "prepare lock directory for %s", l.path)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, common.FileMode0644)
	if err != nil {
		if os.IsExist(err) {
			return errors.Wrapf(ErrLocked, "marker %s exists", l.path)
		}
		return errors.Wrapf(err, "create lock %s", l.path)
	}
	_, werr := fmt.Fprintf(f, "%d %s\n", os.Getpid(), runID)
	cerr := f.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = os.Remove(l.path)
		return errors.Wrapf(werr, "write lock %s", l.path)
	}
	return nil
}

// Release removes the marker. A missing marker is not an error.
func (l *File) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove lock %s", l.path)
	}
	return nil
}

// Owner reads the pid and run id of the current holder.
func (l *File) Owner() (pid int, runID string, err error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return 0, "", err
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return 0, "", errors.Errorf("lock %s is empty", l.path)
	}
	pid, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, "", errors.Wrapf(err, "parse pid in %s", l.path)
	}
	if len(fields) > 1 {
		runID = fields[1]
	}
	return pid, runID, nil
}

// Held reports whether the marker exists.
func (l *File) Held() (bool, error) {
	return file.PathExists(l.path)
}
