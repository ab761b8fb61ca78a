package checkpoint

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/mensylisir/xmetl/file"
)

var (
	// ErrNotFound means no checkpoint was ever written.
	ErrNotFound = errors.New("checkpoint not found")
	// ErrEmpty means the checkpoint exists but holds no application state.
	ErrEmpty = errors.New("checkpoint is empty")
)

// Store persists snapshots.
type Store interface {
	Save(s *Snapshot) error
	Load() (*Snapshot, error)
}

// FileStore keeps the snapshot as pretty printed JSON in one file.
// Writes are a plain overwrite.
type FileStore struct {
	Path string
}

// NewFileStore returns a FileStore at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Save implements Store.
func (f *FileStore) Save(s *Snapshot) error {
	if s == nil {
		return errors.New("snapshot cannot be nil")
	}
	data, err := json.MarshalIndent(s.document(), "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode checkpoint")
	}
	data = append(data, '\n')
	if err := file.WriteFile(f.Path, data); err != nil {
		return errors.Wrapf(err, "save checkpoint %s", f.Path)
	}
	return nil
}

// Load implements Store. Numbers in params decode as json.Number.
func (f *FileStore) Load() (*Snapshot, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "%s", f.Path)
		}
		return nil, errors.Wrapf(err, "read checkpoint %s", f.Path)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.Wrapf(ErrEmpty, "%s", f.Path)
	}

	doc := &document{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(doc); err != nil {
		return nil, errors.Wrapf(err, "decode checkpoint %s", f.Path)
	}
	if doc.Application == nil {
		return nil, errors.Wrapf(ErrEmpty, "%s has no application section", f.Path)
	}
	return doc.snapshot(), nil
}
