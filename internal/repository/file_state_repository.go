package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/iliyamo/cinema-booking/internal/catalog"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// FileStateRepo stores the aggregate state as a single JSON document.
// Writes go to a temporary file in the same directory which is synced and
// then renamed over the target, so a crash leaves either the old or the new
// snapshot on disk, never a torn one.
type FileStateRepo struct {
	path string
}

// NewFileStateRepo returns a FileStateRepo bound to the given path.  The
// file does not need to exist.
func NewFileStateRepo(path string) *FileStateRepo { return &FileStateRepo{path: path} }

// Path returns the location of the state file.
func (r *FileStateRepo) Path() string { return r.path }

// Load reads and decodes the state file.  A missing file yields the seed
// state.
func (r *FileStateRepo) Load(ctx context.Context) (model.AggregateState, error) {
	if err := ctx.Err(); err != nil {
		return model.AggregateState{}, err
	}
	b, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return catalog.SeedState(), nil
		}
		return model.AggregateState{}, fmt.Errorf("read state file: %w", err)
	}
	var st model.AggregateState
	if err := json.Unmarshal(b, &st); err != nil {
		return model.AggregateState{}, fmt.Errorf("%w: %s: %v", ErrCorruptState, r.path, err)
	}
	st.Normalize()
	return st, nil
}

// Save writes the snapshot atomically and fsyncs it before returning.
func (r *FileStateRepo) Save(ctx context.Context, st model.AggregateState) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	// remove the temp file on any failure path; after a successful rename
	// the name no longer exists and Remove is a no-op
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp state file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err = os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	syncDir(dir)
	return nil
}

// syncDir flushes the directory entry of a rename.  Not every platform
// supports syncing a directory, so failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
